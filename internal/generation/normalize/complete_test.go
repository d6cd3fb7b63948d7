package normalize

import (
	"testing"

	"cardgen_backend/internal/generation/domain"
)

func strPtr(s string) *string { return &s }

func TestCompleteEmptyCandidateYieldsDefaults(t *testing.T) {
	record := Complete(domain.CandidateRecord{})

	if record.Title != domain.DefaultTitle {
		t.Fatalf("expected default title, got %q", record.Title)
	}
	if record.ShortDescription != domain.DefaultShortDescription {
		t.Fatalf("expected default short description, got %q", record.ShortDescription)
	}
	if record.FullDescription != domain.DefaultShortDescription {
		t.Fatalf("expected full description to reuse the short default, got %q", record.FullDescription)
	}
	if !sameStrings(record.Features, domain.DefaultFeatures) {
		t.Fatalf("expected default features, got %v", record.Features)
	}
	if !sameStrings(record.SEOKeywords, domain.DefaultSEOKeywords) {
		t.Fatalf("expected default seo keywords, got %v", record.SEOKeywords)
	}
	if !sameStrings(record.TargetAudience, domain.DefaultTargetAudience) {
		t.Fatalf("expected default target audience, got %v", record.TargetAudience)
	}
}

func TestCompleteReplacesShortListWholesale(t *testing.T) {
	record := Complete(domain.CandidateRecord{
		Features: []string{"Единственный пункт"},
	})

	if !sameStrings(record.Features, domain.DefaultFeatures) {
		t.Fatalf("expected a one-item list to be replaced by the default, got %v", record.Features)
	}
}

func TestCompleteFullFallsBackToKeptShortDescription(t *testing.T) {
	record := Complete(domain.CandidateRecord{
		ShortDescription: strPtr("Тёплый вязаный плед для дома"),
	})

	if record.ShortDescription != "Тёплый вязаный плед для дома" {
		t.Fatalf("unexpected short description: %q", record.ShortDescription)
	}
	if record.FullDescription != "Тёплый вязаный плед для дома" {
		t.Fatalf("expected full description to reuse the kept short description, got %q", record.FullDescription)
	}
}

func TestCompleteKeepsAcceptableFieldsUntouched(t *testing.T) {
	record := Complete(domain.CandidateRecord{
		Title:           strPtr("Ок"),
		FullDescription: strPtr("Достаточно длинное полное описание товара."),
		SEOKeywords:     []string{"плед", "шерсть", "подарок"},
	})

	if record.Title != domain.DefaultTitle {
		t.Fatalf("expected a too-short title to be replaced, got %q", record.Title)
	}
	if record.FullDescription != "Достаточно длинное полное описание товара." {
		t.Fatalf("unexpected full description: %q", record.FullDescription)
	}
	if !sameStrings(record.SEOKeywords, []string{"плед", "шерсть", "подарок"}) {
		t.Fatalf("unexpected seo keywords: %v", record.SEOKeywords)
	}
}

func TestCompleteDoesNotAliasDefaultsOrCandidate(t *testing.T) {
	candidate := domain.CandidateRecord{
		Features: []string{"Каркас из стали", "Вес 2 кг"},
	}

	first := Complete(candidate)
	first.Features[0] = "испорчено"

	second := Complete(candidate)
	if second.Features[0] != "Каркас из стали" {
		t.Fatalf("expected completion to copy lists, got %q", second.Features[0])
	}
	if domain.DefaultFeatures[0] != "Высокое качество" {
		t.Fatalf("default feature list mutated: %v", domain.DefaultFeatures)
	}
}

func TestScoreCountsPassingFields(t *testing.T) {
	if got := Score(domain.CandidateRecord{}); got != 0 {
		t.Fatalf("expected empty candidate to score 0, got %v", got)
	}

	full := domain.CandidateRecord{
		Title:            strPtr("Складной столик"),
		ShortDescription: strPtr("Компактный столик для пикника"),
		FullDescription:  strPtr("Подробное описание складного столика."),
		Features:         []string{"Каркас", "Вес"},
		SEOKeywords:      []string{"столик", "пикник"},
		TargetAudience:   []string{"Туристы", "Дачники"},
	}
	if got := Score(full); got != 1 {
		t.Fatalf("expected full candidate to score 1, got %v", got)
	}

	half := domain.CandidateRecord{
		Title:            strPtr("Складной столик"),
		ShortDescription: strPtr("Компактный столик для пикника"),
		FullDescription:  strPtr("Подробное описание складного столика."),
	}
	if got := Score(half); got != 0.5 {
		t.Fatalf("expected half candidate to score 0.5, got %v", got)
	}
}

func TestScoreTextMinimumsAreExclusive(t *testing.T) {
	atMinimum := domain.CandidateRecord{
		Title: strPtr("12345"),
	}
	if got := Score(atMinimum); got != 0 {
		t.Fatalf("expected a five-rune title to fail, got %v", got)
	}

	aboveMinimum := domain.CandidateRecord{
		Title: strPtr("123456"),
	}
	if got := Score(aboveMinimum); got == 0 {
		t.Fatal("expected a six-rune title to pass")
	}
}

func TestScoreListMinimumIsInclusive(t *testing.T) {
	one := domain.CandidateRecord{Features: []string{"Один"}}
	if got := Score(one); got != 0 {
		t.Fatalf("expected a one-item list to fail, got %v", got)
	}

	two := domain.CandidateRecord{Features: []string{"Один", "Два"}}
	if got := Score(two); got == 0 {
		t.Fatal("expected a two-item list to pass")
	}
}
