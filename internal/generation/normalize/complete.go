package normalize

import "cardgen_backend/internal/generation/domain"

// Complete turns a candidate into a total record. A field below its minimum
// is replaced wholesale by its default, never padded: a one-item feature
// list becomes the two-item default list, not a mixed one. The full
// description falls back to the completed short description instead of a
// fixed default. Completion runs on every extracted candidate regardless of
// its score.
func Complete(candidate domain.CandidateRecord) domain.ContentRecord {
	record := domain.ContentRecord{
		Title:            domain.DefaultTitle,
		ShortDescription: domain.DefaultShortDescription,
		Features:         append([]string(nil), domain.DefaultFeatures...),
		SEOKeywords:      append([]string(nil), domain.DefaultSEOKeywords...),
		TargetAudience:   append([]string(nil), domain.DefaultTargetAudience...),
	}

	if candidate.Title != nil && domain.AcceptableTitle(*candidate.Title) {
		record.Title = *candidate.Title
	}
	if candidate.ShortDescription != nil && domain.AcceptableShortDescription(*candidate.ShortDescription) {
		record.ShortDescription = *candidate.ShortDescription
	}
	if candidate.FullDescription != nil && domain.AcceptableFullDescription(*candidate.FullDescription) {
		record.FullDescription = *candidate.FullDescription
	} else {
		record.FullDescription = record.ShortDescription
	}
	if domain.AcceptableList(candidate.Features) {
		record.Features = append([]string(nil), candidate.Features...)
	}
	if domain.AcceptableList(candidate.SEOKeywords) {
		record.SEOKeywords = append([]string(nil), candidate.SEOKeywords...)
	}
	if domain.AcceptableList(candidate.TargetAudience) {
		record.TargetAudience = append([]string(nil), candidate.TargetAudience...)
	}

	return record
}
