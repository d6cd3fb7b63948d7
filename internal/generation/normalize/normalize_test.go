package normalize

import (
	"errors"
	"testing"

	"cardgen_backend/internal/generation/domain"
)

func sameStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func assertTotal(t *testing.T, record domain.ContentRecord) {
	t.Helper()
	if !domain.AcceptableTitle(record.Title) {
		t.Fatalf("record title %q below minimum", record.Title)
	}
	if !domain.AcceptableShortDescription(record.ShortDescription) {
		t.Fatalf("record short description %q below minimum", record.ShortDescription)
	}
	if !domain.AcceptableFullDescription(record.FullDescription) {
		t.Fatalf("record full description %q below minimum", record.FullDescription)
	}
	if !domain.AcceptableList(record.Features) {
		t.Fatalf("record features %v below minimum", record.Features)
	}
	if !domain.AcceptableList(record.SEOKeywords) {
		t.Fatalf("record seo keywords %v below minimum", record.SEOKeywords)
	}
	if !domain.AcceptableList(record.TargetAudience) {
		t.Fatalf("record target audience %v below minimum", record.TargetAudience)
	}
}

func TestNormalizeDirectJSONProducesCompleteRecord(t *testing.T) {
	raw := `{
		"title": "Складной столик для пикника",
		"short_description": "Лёгкий столик для отдыха на природе",
		"full_description": "Компактный складной столик из алюминия, подходит для пикника, дачи и кемпинга.",
		"features": ["Алюминиевый каркас", "Вес 2 кг"],
		"seo_keywords": ["столик складной", "мебель для пикника"],
		"target_audience": ["Туристы", "Дачники"]
	}`

	record, err := New(StrictProfile()).Normalize(raw)
	if err != nil {
		t.Fatalf("expected direct JSON to normalize, got error: %v", err)
	}
	if record.Title != "Складной столик для пикника" {
		t.Fatalf("unexpected title: %q", record.Title)
	}
	if record.ShortDescription != "Лёгкий столик для отдыха на природе" {
		t.Fatalf("unexpected short description: %q", record.ShortDescription)
	}
	if !sameStrings(record.Features, []string{"Алюминиевый каркас", "Вес 2 кг"}) {
		t.Fatalf("unexpected features: %v", record.Features)
	}
	if !sameStrings(record.TargetAudience, []string{"Туристы", "Дачники"}) {
		t.Fatalf("unexpected target audience: %v", record.TargetAudience)
	}
	assertTotal(t, record)
}

func TestNormalizeFencedJSONWinsOverRefusalWording(t *testing.T) {
	raw := "Извините за ожидание, вот структура:\n" +
		"```json\n" +
		`{"title": "Настольная лампа из дуба", "short_description": "Лампа ручной работы из массива дуба"}` + "\n" +
		"```"

	record, err := New(LenientProfile()).Normalize(raw)
	if err != nil {
		t.Fatalf("expected fenced JSON to win over refusal wording, got error: %v", err)
	}
	if record.Title != "Настольная лампа из дуба" {
		t.Fatalf("unexpected title: %q", record.Title)
	}
	assertTotal(t, record)
}

func TestNormalizeJSONSkipsScoreGate(t *testing.T) {
	// Only the title clears its minimum, so the score would fail the strict
	// gate. A JSON-shaped response is exempt from that gate.
	raw := `{"title": "Отличный складной столик для пикника и дачи"}`

	record, err := New(StrictProfile()).Normalize(raw)
	if err != nil {
		t.Fatalf("expected JSON response to skip the score gate, got error: %v", err)
	}
	if record.Title != "Отличный складной столик для пикника и дачи" {
		t.Fatalf("unexpected title: %q", record.Title)
	}
	if record.ShortDescription != domain.DefaultShortDescription {
		t.Fatalf("expected default short description, got %q", record.ShortDescription)
	}
	assertTotal(t, record)
}

func TestNormalizeRefusalMarkerInsideJSONStringIsKept(t *testing.T) {
	raw := `{"title": "Извините, но это лучший плед на рынке", "short_description": "Мягкий плед из натуральной шерсти мериноса"}`

	record, err := New(LenientProfile()).Normalize(raw)
	if err != nil {
		t.Fatalf("expected refusal scan to skip JSON responses, got error: %v", err)
	}
	if record.Title != "Извините, но это лучший плед на рынке" {
		t.Fatalf("unexpected title: %q", record.Title)
	}
}

func TestNormalizeRejectsRefusalText(t *testing.T) {
	_, err := New(LenientProfile()).Normalize("I'm sorry, I cannot analyze this image.")
	if err == nil {
		t.Fatal("expected refusal text to fail")
	}
	if !errors.Is(err, ErrNormalizationFailed) {
		t.Fatalf("expected ErrNormalizationFailed, got %v", err)
	}
	if !errors.Is(err, ErrModelRefused) {
		t.Fatalf("expected ErrModelRefused, got %v", err)
	}
}

func TestNormalizeRejectsTooShortResponse(t *testing.T) {
	_, err := New(LenientProfile()).Normalize("   ок   ")
	if err == nil {
		t.Fatal("expected short response to fail")
	}
	if !errors.Is(err, ErrResponseTooShort) {
		t.Fatalf("expected ErrResponseTooShort, got %v", err)
	}
	if errors.Is(err, ErrModelRefused) {
		t.Fatalf("short response misreported as refusal: %v", err)
	}
}

func TestNormalizeProfileGatesSectionedText(t *testing.T) {
	// Title alone scores 1 of 6. The lenient gate lets it through with the
	// missing fields completed; the strict gate rejects it.
	raw := "Название: Отличный товар для дома\n" +
		"Простой текст большой длины про сам предмет и его свойства."

	record, err := New(LenientProfile()).Normalize(raw)
	if err != nil {
		t.Fatalf("expected lenient profile to accept title-only text, got error: %v", err)
	}
	if record.Title != "Отличный товар для дома" {
		t.Fatalf("unexpected title: %q", record.Title)
	}
	if record.ShortDescription != domain.DefaultShortDescription {
		t.Fatalf("expected default short description, got %q", record.ShortDescription)
	}
	assertTotal(t, record)

	_, err = New(StrictProfile()).Normalize(raw)
	if !errors.Is(err, ErrQualityTooLow) {
		t.Fatalf("expected strict profile to reject title-only text, got %v", err)
	}
}

func TestNormalizeEmptyJSONObjectCompletesToDefaults(t *testing.T) {
	record, err := New(Profile{MinLength: 1, MinScore: 0.9}).Normalize("{}")
	if err != nil {
		t.Fatalf("expected empty object to complete, got error: %v", err)
	}
	if record.Title != domain.DefaultTitle {
		t.Fatalf("expected default title, got %q", record.Title)
	}
	if record.FullDescription != domain.DefaultShortDescription {
		t.Fatalf("expected full description to fall back to the short default, got %q", record.FullDescription)
	}
	if !sameStrings(record.Features, domain.DefaultFeatures) {
		t.Fatalf("expected default features, got %v", record.Features)
	}
	assertTotal(t, record)
}

func TestNormalizeCustomMarkersReplaceBuiltIns(t *testing.T) {
	n := New(Profile{MinLength: 10, MinScore: 0, Markers: []string{"запрещено"}})

	_, err := n.Normalize("Это действие запрещено правилами площадки.")
	if !errors.Is(err, ErrModelRefused) {
		t.Fatalf("expected custom marker to trigger refusal, got %v", err)
	}

	// The built-in vocabulary no longer applies once overridden.
	record, err := n.Normalize("Название: Извините-стайл плед для дома и дачи")
	if err != nil {
		t.Fatalf("expected built-in markers to be replaced, got error: %v", err)
	}
	assertTotal(t, record)
}

func TestNormalizeNeverReturnsPartialRecord(t *testing.T) {
	inputs := []string{
		`{"title": "Чайник керамический на два литра"}`,
		`{"features": ["Одна характеристика"]}`,
		"Название: Плед из шерсти мериноса\nПростой текст большой длины про сам предмет и его свойства.",
		"```\n" + `{"short_description": "Очень мягкий и тёплый плед"}` + "\n```",
		"Просто длинный рассказ о товаре без всяких секций и пометок в тексте.",
	}

	n := New(LenientProfile())
	for _, raw := range inputs {
		record, err := n.Normalize(raw)
		if err != nil {
			continue
		}
		assertTotal(t, record)
	}
}
