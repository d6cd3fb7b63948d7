package normalize

import (
	"encoding/json"
	"strings"
	"unicode"

	"cardgen_backend/internal/generation/domain"
)

// candidateWire mirrors the JSON shape the model is asked to produce. The
// full description is also accepted under the public API's
// detailed_description name, and the audience may arrive as a single string
// instead of a list.
type candidateWire struct {
	Title               *string      `json:"title"`
	ShortDescription    *string      `json:"short_description"`
	FullDescription     *string      `json:"full_description"`
	DetailedDescription *string      `json:"detailed_description"`
	Features            []string     `json:"features"`
	SEOKeywords         []string     `json:"seo_keywords"`
	TargetAudience      stringOrList `json:"target_audience"`
}

// stringOrList accepts either a JSON array of strings or a bare string.
type stringOrList []string

func (s *stringOrList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = []string{single}
	return nil
}

// extractStructured tries the JSON strategies in priority order: the whole
// text, then fenced code blocks, then brace-matched spans scanned from the
// text. The first strategy producing a valid object wins; later strategies
// run only after earlier ones fail.
func extractStructured(trimmed string) (domain.CandidateRecord, bool) {
	if candidate, ok := parseJSONObject(trimmed); ok {
		return candidate, true
	}

	for _, block := range fencedBlocks(trimmed) {
		if candidate, ok := parseJSONObject(block); ok {
			return candidate, true
		}
	}

	for _, object := range braceMatchedObjects(trimmed) {
		if candidate, ok := parseJSONObject(object); ok {
			return candidate, true
		}
	}

	return domain.CandidateRecord{}, false
}

func parseJSONObject(text string) (domain.CandidateRecord, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return domain.CandidateRecord{}, false
	}

	var wire candidateWire
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return domain.CandidateRecord{}, false
	}

	return wire.toCandidate(), true
}

func (w candidateWire) toCandidate() domain.CandidateRecord {
	full := w.FullDescription
	if full == nil {
		full = w.DetailedDescription
	}

	return domain.CandidateRecord{
		Title:            trimPtr(w.Title),
		ShortDescription: trimPtr(w.ShortDescription),
		FullDescription:  trimPtr(full),
		Features:         trimList(w.Features),
		SEOKeywords:      trimList(w.SEOKeywords),
		TargetAudience:   trimList(w.TargetAudience),
	}
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

// trimList trims every item and drops the empty ones. A nil input stays nil
// so an absent list remains distinguishable from a present empty one.
func trimList(items []string) []string {
	if items == nil {
		return nil
	}
	result := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// fencedBlocks returns the contents of every triple-backtick code block in
// order of appearance. A language tag on the opening fence line is dropped.
func fencedBlocks(text string) []string {
	var blocks []string
	rest := text

	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			return blocks
		}
		rest = rest[start+3:]

		end := strings.Index(rest, "```")
		if end < 0 {
			return blocks
		}
		block := rest[:end]
		rest = rest[end+3:]

		if newline := strings.IndexByte(block, '\n'); newline >= 0 {
			if isLanguageTag(strings.TrimSpace(block[:newline])) {
				block = block[newline+1:]
			}
		}
		blocks = append(blocks, block)
	}
}

func isLanguageTag(tag string) bool {
	if tag == "" {
		return true
	}
	if len(tag) > 16 {
		return false
	}
	for _, r := range tag {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// braceMatchedObjects returns every balanced {...} span in the text, scanned
// left to right. Braces inside string literals and escaped quotes do not
// count toward nesting.
func braceMatchedObjects(text string) []string {
	var objects []string

	for offset := 0; offset < len(text); {
		start := strings.IndexByte(text[offset:], '{')
		if start < 0 {
			return objects
		}
		start += offset

		object, ok := balancedObject(text[start:])
		if !ok {
			offset = start + 1
			continue
		}
		objects = append(objects, object)
		offset = start + len(object)
	}

	return objects
}

// balancedObject returns the prefix of text forming a balanced brace span.
// text must start with '{'.
func balancedObject(text string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[:i+1], true
			}
		}
	}

	return "", false
}
