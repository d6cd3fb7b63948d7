package domain

// Image is an encoded product photo ready for transmission upstream. The
// pipeline never decodes pixels; bytes pass through as received.
type Image struct {
	Data     []byte
	MIMEType string
}
