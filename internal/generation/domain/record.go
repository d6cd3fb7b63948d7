// Package domain defines the content records produced by the generation
// pipeline and the field minimums used to judge them.
package domain

import "unicode/utf8"

// Field minimums. Text lengths are in runes so Cyrillic output is measured
// the same as Latin. Text fields must exceed their minimum, lists must reach
// theirs.
const (
	MinTitleRunes = 5
	MinShortRunes = 10
	MinFullRunes  = 20
	MinListItems  = 2
)

// Defaults substituted by the field completer when a candidate field does not
// reach its minimum. The full description has no fixed default of its own; it
// takes the completed short description instead.
var (
	DefaultTitle            = "Товар - Качественное решение"
	DefaultShortDescription = "Стильный и функциональный товар"
	DefaultFeatures         = []string{"Высокое качество", "Стильный дизайн"}
	DefaultSEOKeywords      = []string{"качественный", "стильный"}
	DefaultTargetAudience   = []string{"Потребители", "Покупатели"}
)

// ContentRecord is a complete marketplace listing. After completion every
// text field exceeds its minimum and every list holds at least two entries.
type ContentRecord struct {
	Title            string
	ShortDescription string
	FullDescription  string
	Features         []string
	SEOKeywords      []string
	TargetAudience   []string
}

// CandidateRecord holds the fields recovered from one model response before
// completion. A nil text pointer means the field never appeared; a pointer to
// an empty string means it appeared without content. List order follows the
// order of appearance in the response.
type CandidateRecord struct {
	Title            *string
	ShortDescription *string
	FullDescription  *string
	Features         []string
	SEOKeywords      []string
	TargetAudience   []string
}

// FallbackRecord returns the placeholder listing served when generation
// failed entirely. Lists are empty but non-nil so they serialize as [].
func FallbackRecord() ContentRecord {
	return ContentRecord{
		Title:            "Ошибка",
		ShortDescription: "ошибка запрос к джипити",
		FullDescription:  "Не удалось получить ответ от нейросети. Проверьте логи API для получения детальной информации.",
		Features:         []string{},
		SEOKeywords:      []string{},
		TargetAudience:   []string{},
	}
}

// AcceptableTitle reports whether a title is long enough to keep.
func AcceptableTitle(s string) bool {
	return utf8.RuneCountInString(s) > MinTitleRunes
}

// AcceptableShortDescription reports whether a short description is long
// enough to keep.
func AcceptableShortDescription(s string) bool {
	return utf8.RuneCountInString(s) > MinShortRunes
}

// AcceptableFullDescription reports whether a full description is long
// enough to keep.
func AcceptableFullDescription(s string) bool {
	return utf8.RuneCountInString(s) > MinFullRunes
}

// AcceptableList reports whether a list holds enough entries to keep.
func AcceptableList(items []string) bool {
	return len(items) >= MinListItems
}
