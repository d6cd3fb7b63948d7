package normalize

import "cardgen_backend/internal/generation/domain"

// Score rates a candidate between 0 and 1: one point for each of the six
// fields that reaches its minimum. Pure function of the candidate; scoring
// the same candidate repeatedly always yields the same value.
func Score(candidate domain.CandidateRecord) float64 {
	checks := [...]bool{
		candidate.Title != nil && domain.AcceptableTitle(*candidate.Title),
		candidate.ShortDescription != nil && domain.AcceptableShortDescription(*candidate.ShortDescription),
		candidate.FullDescription != nil && domain.AcceptableFullDescription(*candidate.FullDescription),
		domain.AcceptableList(candidate.Features),
		domain.AcceptableList(candidate.SEOKeywords),
		domain.AcceptableList(candidate.TargetAudience),
	}

	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return float64(passed) / float64(len(checks))
}
