package normalize

import "strings"

// defaultRefusalMarkers is the built-in refusal vocabulary, matched as
// case-insensitive substrings. Russian and English forms are both present
// since the upstream answers in the prompt's language.
var defaultRefusalMarkers = []string{
	"sorry",
	"извините",
	"error",
	"ошибка",
	"не могу",
	"cannot",
	"unable",
	"не удается",
	"не понимаю",
	"don't understand",
	"i cannot",
	"я не могу",
	"не удалось",
	"failed",
}

// refusalMarker returns the first marker found in the text. The scan runs
// only on free text; JSON-shaped responses never reach it.
func (n *Normalizer) refusalMarker(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, marker := range n.markers {
		if strings.Contains(lowered, marker) {
			return marker, true
		}
	}
	return "", false
}
