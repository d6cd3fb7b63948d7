package normalize

import (
	"strings"
	"unicode/utf8"

	"cardgen_backend/internal/generation/domain"
)

type section int

const (
	sectionNone section = iota
	sectionFull
	sectionFeatures
	sectionKeywords
	sectionAudience
)

// parseLines recovers a candidate from sectioned free text. Lines are
// classified top to bottom: marker lines set or re-set their field and move
// the section cursor, bullet lines feed the features and audience lists, and
// plain lines extend the full description once it has started. Classification
// order matters; a bullet line that also contains a marker counts as that
// marker's line, matching how the upstream sections are written.
func parseLines(text string) domain.CandidateRecord {
	var (
		title    string
		short    string
		full     string
		features []string
		keywords []string
		audience []string
	)

	current := sectionNone

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "название") || strings.Contains(lower, "title"):
			title = afterColon(line)
		case strings.Contains(lower, "краткое описание") || strings.Contains(lower, "short description"):
			short = afterColon(line)
		case strings.Contains(lower, "полное описание") || strings.Contains(lower, "full description"):
			current = sectionFull
			full = afterColon(line)
		case strings.Contains(lower, "характеристики") || strings.Contains(lower, "features"):
			current = sectionFeatures
		case strings.Contains(lower, "seo") || strings.Contains(lower, "ключевые слова"):
			current = sectionKeywords
			keywords = splitKeywords(afterColon(line))
		case strings.Contains(lower, "аудитория") || strings.Contains(lower, "target audience"):
			current = sectionAudience
		case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•"):
			item := trimBullet(line)
			if item == "" {
				continue
			}
			switch current {
			case sectionFeatures:
				features = append(features, item)
			case sectionAudience:
				audience = append(audience, item)
			}
		case current == sectionFull && full != "":
			full += " " + line
		}
	}

	return domain.CandidateRecord{
		Title:            &title,
		ShortDescription: &short,
		FullDescription:  &full,
		Features:         features,
		SEOKeywords:      keywords,
		TargetAudience:   audience,
	}
}

// afterColon returns the trimmed text after the first colon, or the whole
// line when it has no colon.
func afterColon(line string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return line
}

func trimBullet(line string) string {
	_, size := utf8.DecodeRuneInString(line)
	return strings.TrimSpace(line[size:])
}

// splitKeywords splits a comma-separated keyword list, dropping the list
// punctuation the model sometimes wraps keywords in.
func splitKeywords(raw string) []string {
	cleaner := strings.NewReplacer("[", "", "]", "", `"`, "", "'", "")
	raw = cleaner.Replace(raw)

	var keywords []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}
