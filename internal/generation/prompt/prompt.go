// Package prompt renders the Russian marketplace prompts sent to the model.
// One template per generation mode; user text is sanitized and wrapped
// before it is embedded.
package prompt

import (
	"fmt"
	"strings"
	"unicode"
)

// maxUserTextRunes caps embedded user text so a single oversized description
// cannot blow the token budget of the request.
const maxUserTextRunes = 5000

const truncationSuffix = "... [обрезано]"

const imageAnalysisTemplate = `Ты — эксперт по маркетплейсам Wildberries и Ozon. На изображении показан товар.
Проанализируй изображение и сгенерируй структурированный ответ в следующем формате:

Название: [Краткое и привлекательное название товара]

Краткое описание: [1-2 предложения о товаре]

Полное описание: [5-7 предложений с подробным описанием характеристик, преимуществ и использования]

Характеристики:
- [Характеристика 1]
- [Характеристика 2]
- [Характеристика 3]
- [Характеристика 4]

SEO-ключевые слова: [ключ1, ключ2, ключ3, ключ4, ключ5]

Целевая аудитория:
- [Аудитория 1]
- [Аудитория 2]
- [Аудитория 3]

Важно: SEO-ключевые слова должны быть конкретными поисковыми запросами, которые люди используют для поиска товара. Например: "раковина накладная черная", "санкерамика раковина", "раковина для ванной 46 см".

Фокус на: назначение товара, материалы, цвет, размер, особенности использования, преимущества.`

const textEnrichmentTemplate = `Ты — эксперт по маркетплейсам Wildberries и Ozon. Дополни и улучши описание товара.

Исходный текст: %s

Создай структурированный ответ в следующем формате:

Название: [Улучшенное название товара]

Краткое описание: [1-2 предложения о товаре]

Полное описание: [5-7 предложений с подробным описанием характеристик, преимуществ и использования]

Характеристики:
- [Характеристика 1]
- [Характеристика 2]
- [Характеристика 3]
- [Характеристика 4]

SEO-ключевые слова: [ключ1, ключ2, ключ3, ключ4, ключ5]

Целевая аудитория:
- [Аудитория 1]
- [Аудитория 2]
- [Аудитория 3]

Важно: SEO-ключевые слова должны быть конкретными поисковыми запросами, которые люди используют для поиска товара. Например: "раковина накладная черная", "санкерамика раковина", "раковина для ванной 46 см".`

const combinedTemplate = `Ты — эксперт по маркетплейсам Wildberries и Ozon. Проанализируй изображение товара и объедини с текстовым описанием.

Текстовое описание: %s

Создай структурированный ответ в следующем формате:

Название: [Название товара на основе изображения и текста]

Краткое описание: [1-2 предложения о товаре]

Полное описание: [5-7 предложений, объединяющих визуальную и текстовую информацию]

Характеристики:
- [Характеристика 1]
- [Характеристика 2]
- [Характеристика 3]
- [Характеристика 4]

SEO-ключевые слова: [ключ1, ключ2, ключ3, ключ4, ключ5]

Целевая аудитория:
- [Аудитория 1]
- [Аудитория 2]
- [Аудитория 3]

Важно: SEO-ключевые слова должны быть конкретными поисковыми запросами, которые люди используют для поиска товара. Например: "раковина накладная черная", "санкерамика раковина", "раковина для ванной 46 см".

Фокус на: объединение визуальной информации с текстовым описанием, создание полной картины товара.`

// ImageAnalysis renders the prompt for an image-only request.
func ImageAnalysis() string {
	return imageAnalysisTemplate
}

// TextEnrichment renders the prompt for a text-only request.
func TextEnrichment(text string) string {
	return fmt.Sprintf(textEnrichmentTemplate, sanitizeUserText(text, maxUserTextRunes))
}

// Combined renders the prompt for a request carrying both an image and text.
func Combined(text string) string {
	return fmt.Sprintf(combinedTemplate, sanitizeUserText(text, maxUserTextRunes))
}

// sanitizeUserText strips control characters except newlines and tabs, then
// truncates to maxRunes. Truncation counts runes so Cyrillic input is never
// cut mid-character.
func sanitizeUserText(s string, maxRunes int) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sb.WriteRune(r)
	}
	result := sb.String()

	runes := []rune(result)
	if len(runes) > maxRunes {
		result = string(runes[:maxRunes]) + truncationSuffix
	}
	return strings.TrimSpace(result)
}
