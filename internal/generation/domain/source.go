package domain

// Source identifies which inputs a generation request carried. The values
// match the public API's type form field.
type Source string

const (
	SourceImage Source = "image_only"
	SourceText  Source = "text_only"
	SourceBoth  Source = "both"
)

// ParseSource maps a wire value to a Source.
func ParseSource(value string) (Source, bool) {
	switch Source(value) {
	case SourceImage, SourceText, SourceBoth:
		return Source(value), true
	default:
		return "", false
	}
}

func (s Source) String() string {
	return string(s)
}
