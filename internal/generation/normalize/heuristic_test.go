package normalize

import "testing"

func TestParseLinesRecoversSectionedDocument(t *testing.T) {
	raw := "Название: Складной столик\n" +
		"Краткое описание: Компактный столик для пикника\n" +
		"Полное описание: Этот столик подходит для дачи.\n" +
		"Он складывается и мало весит.\n" +
		"\n" +
		"Характеристики:\n" +
		"- Прочный каркас\n" +
		"• Малый вес\n" +
		"SEO-ключевые слова: [столик], \"пикник\", 'дача'\n" +
		"Целевая аудитория:\n" +
		"- Дачники\n" +
		"- Туристы\n"

	candidate := parseLines(raw)

	if candidate.Title == nil || *candidate.Title != "Складной столик" {
		t.Fatalf("unexpected title: %v", candidate.Title)
	}
	if candidate.ShortDescription == nil || *candidate.ShortDescription != "Компактный столик для пикника" {
		t.Fatalf("unexpected short description: %v", candidate.ShortDescription)
	}
	wantFull := "Этот столик подходит для дачи. Он складывается и мало весит."
	if candidate.FullDescription == nil || *candidate.FullDescription != wantFull {
		t.Fatalf("unexpected full description:\nwant: %q\ngot:  %v", wantFull, candidate.FullDescription)
	}
	if !sameStrings(candidate.Features, []string{"Прочный каркас", "Малый вес"}) {
		t.Fatalf("unexpected features: %v", candidate.Features)
	}
	if !sameStrings(candidate.SEOKeywords, []string{"столик", "пикник", "дача"}) {
		t.Fatalf("unexpected seo keywords: %v", candidate.SEOKeywords)
	}
	if !sameStrings(candidate.TargetAudience, []string{"Дачники", "Туристы"}) {
		t.Fatalf("unexpected target audience: %v", candidate.TargetAudience)
	}
}

func TestParseLinesMarkerWinsOverBulletPrefix(t *testing.T) {
	raw := "Характеристики:\n" +
		"- Прочный каркас\n" +
		"- Название: Ночник детский\n" +
		"- Малый вес\n"

	candidate := parseLines(raw)

	if candidate.Title == nil || *candidate.Title != "Ночник детский" {
		t.Fatalf("expected the marker line to set the title, got %v", candidate.Title)
	}
	if !sameStrings(candidate.Features, []string{"Прочный каркас", "Малый вес"}) {
		t.Fatalf("expected the marker line to stay out of the features, got %v", candidate.Features)
	}
}

func TestParseLinesLaterMarkerOverwritesEarlier(t *testing.T) {
	raw := "Название: Черновой вариант\n" +
		"Название: Итоговый вариант\n"

	candidate := parseLines(raw)
	if candidate.Title == nil || *candidate.Title != "Итоговый вариант" {
		t.Fatalf("expected the later marker to win, got %v", candidate.Title)
	}
}

func TestParseLinesContinuationNeedsStartedFullDescription(t *testing.T) {
	raw := "Просто вводный текст до всех секций.\n" +
		"Название: Плед шерстяной\n" +
		"Ещё одна строка без секции.\n"

	candidate := parseLines(raw)

	if candidate.FullDescription == nil || *candidate.FullDescription != "" {
		t.Fatalf("expected no full description, got %v", candidate.FullDescription)
	}
	if *candidate.Title != "Плед шерстяной" {
		t.Fatalf("unexpected title: %q", *candidate.Title)
	}
}

func TestParseLinesBulletsOutsideListSectionsAreDropped(t *testing.T) {
	raw := "- Висячий пункт без секции\n" +
		"Полное описание: Начало рассказа о товаре.\n" +
		"- Ещё один пункт\n"

	candidate := parseLines(raw)

	if len(candidate.Features) != 0 || len(candidate.TargetAudience) != 0 {
		t.Fatalf("expected no list items, got features %v audience %v", candidate.Features, candidate.TargetAudience)
	}
	if *candidate.FullDescription != "Начало рассказа о товаре." {
		t.Fatalf("unexpected full description: %q", *candidate.FullDescription)
	}
}

func TestParseLinesBulletStripsSingleLeadingRune(t *testing.T) {
	raw := "Характеристики:\n" +
		"-- Двойная черта\n" +
		"-   Пробелы после черты\n"

	candidate := parseLines(raw)

	if !sameStrings(candidate.Features, []string{"- Двойная черта", "Пробелы после черты"}) {
		t.Fatalf("unexpected features: %v", candidate.Features)
	}
}

func TestSplitKeywordsStripsListPunctuation(t *testing.T) {
	got := splitKeywords(`["раковина", 'смеситель',  , чёрная]`)
	if !sameStrings(got, []string{"раковина", "смеситель", "чёрная"}) {
		t.Fatalf("unexpected keywords: %v", got)
	}
}
