package prompt

import (
	"strings"
	"testing"
)

func TestTextEnrichmentEmbedsSanitizedUserText(t *testing.T) {
	rendered := TextEnrichment("Плед из\x00 шерсти\x07 мериноса")

	if !strings.Contains(rendered, "Исходный текст: Плед из шерсти мериноса") {
		t.Fatalf("expected sanitized user text to be embedded, got:\n%s", rendered)
	}
	if strings.ContainsRune(rendered, '\x00') {
		t.Fatal("expected control characters to be stripped")
	}
}

func TestTextEnrichmentKeepsNewlinesAndTabs(t *testing.T) {
	rendered := TextEnrichment("строка один\nстрока два\tконец")

	if !strings.Contains(rendered, "строка один\nстрока два\tконец") {
		t.Fatalf("expected newlines and tabs to survive, got:\n%s", rendered)
	}
}

func TestSanitizeUserTextTruncatesByRunes(t *testing.T) {
	long := strings.Repeat("д", 6000)
	got := sanitizeUserText(long, 5000)

	if !strings.HasSuffix(got, truncationSuffix) {
		t.Fatalf("expected truncation suffix, got tail %q", got[len(got)-40:])
	}
	if strings.Count(got, "д") != 5000 {
		t.Fatalf("expected 5000 runes kept, got %d", strings.Count(got, "д"))
	}
}

func TestAllModesRequestTheSameSections(t *testing.T) {
	sections := []string{
		"Название:",
		"Краткое описание:",
		"Полное описание:",
		"Характеристики:",
		"SEO-ключевые слова:",
		"Целевая аудитория:",
	}

	for _, rendered := range []string{ImageAnalysis(), TextEnrichment("описание"), Combined("описание")} {
		for _, section := range sections {
			if !strings.Contains(rendered, section) {
				t.Fatalf("expected prompt to request section %q, got:\n%s", section, rendered)
			}
		}
	}
}
