package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"cardgen_backend/internal/generation/domain"
	"cardgen_backend/internal/generation/normalize"
	"cardgen_backend/platform/logger"
)

type testServiceConfig struct{}

func (testServiceConfig) GetOpenAITimeout() time.Duration { return time.Second }

type fakeUpstream struct {
	raw      string
	attempts int
	err      error

	gotPrompt string
	gotImage  *domain.Image
}

func (f *fakeUpstream) Call(_ context.Context, promptText string, image *domain.Image) (string, int, error) {
	f.gotPrompt = promptText
	f.gotImage = image
	return f.raw, f.attempts, f.err
}

func newTestService(upstream Upstream) *Service {
	return New(upstream, normalize.New(normalize.LenientProfile()), testServiceConfig{}, logger.New("development"))
}

func TestFromTextReturnsNormalizedRecord(t *testing.T) {
	upstream := &fakeUpstream{
		raw:      `{"title": "Плед из шерсти мериноса", "short_description": "Мягкий тёплый плед ручной работы"}`,
		attempts: 2,
	}
	svc := newTestService(upstream)

	record, outcome := svc.FromText(context.Background(), "тёплый плед")
	if outcome.UsedFallback {
		t.Fatalf("expected a normalized record, got fallback with reason %q", outcome.FallbackReason)
	}
	if record.Title != "Плед из шерсти мериноса" {
		t.Fatalf("unexpected title: %q", record.Title)
	}
	if outcome.Source != domain.SourceText {
		t.Fatalf("unexpected source: %q", outcome.Source)
	}
	if outcome.Attempts != 2 {
		t.Fatalf("expected attempts to be carried through, got %d", outcome.Attempts)
	}
	if !strings.Contains(upstream.gotPrompt, "Исходный текст: тёплый плед") {
		t.Fatalf("expected the text prompt to embed the input, got:\n%s", upstream.gotPrompt)
	}
	if upstream.gotImage != nil {
		t.Fatal("expected no image for a text request")
	}
}

func TestFromTextSubstitutesFallbackOnExhaustion(t *testing.T) {
	upstream := &fakeUpstream{
		attempts: 3,
		err:      fmt.Errorf("%w: %w", ErrUpstreamExhausted, errors.New("connection reset")),
	}
	svc := newTestService(upstream)

	record, outcome := svc.FromText(context.Background(), "тёплый плед")
	if !outcome.UsedFallback {
		t.Fatal("expected fallback substitution")
	}
	if outcome.FallbackReason != ReasonUpstreamExhausted {
		t.Fatalf("unexpected fallback reason: %q", outcome.FallbackReason)
	}
	if outcome.Attempts != 3 {
		t.Fatalf("expected attempts to be carried through, got %d", outcome.Attempts)
	}
	want := domain.FallbackRecord()
	if record.Title != want.Title || record.FullDescription != want.FullDescription {
		t.Fatalf("expected the fallback record, got %+v", record)
	}
}

func TestFromTextSubstitutesFallbackOnRefusal(t *testing.T) {
	upstream := &fakeUpstream{
		raw:      "I'm sorry, I cannot analyze this image.",
		attempts: 1,
	}
	svc := newTestService(upstream)

	record, outcome := svc.FromText(context.Background(), "тёплый плед")
	if !outcome.UsedFallback {
		t.Fatal("expected fallback substitution")
	}
	if outcome.FallbackReason != ReasonModelRefused {
		t.Fatalf("unexpected fallback reason: %q", outcome.FallbackReason)
	}
	if record.Title != domain.FallbackRecord().Title {
		t.Fatalf("expected the fallback record, got %+v", record)
	}
}

func TestDegradedModeWithoutUpstreamServesFallback(t *testing.T) {
	svc := newTestService(nil)

	record, outcome := svc.FromText(context.Background(), "тёплый плед")
	if !outcome.UsedFallback {
		t.Fatal("expected fallback substitution without an upstream")
	}
	if outcome.FallbackReason != ReasonUpstreamDisabled {
		t.Fatalf("unexpected fallback reason: %q", outcome.FallbackReason)
	}
	if outcome.Attempts != 0 {
		t.Fatalf("expected no attempts, got %d", outcome.Attempts)
	}
	if record.Title != domain.FallbackRecord().Title {
		t.Fatalf("expected the fallback record, got %+v", record)
	}
}

func TestFromImageSendsImageWithImagePrompt(t *testing.T) {
	upstream := &fakeUpstream{
		raw:      `{"title": "Складной столик для пикника"}`,
		attempts: 1,
	}
	svc := newTestService(upstream)

	_, outcome := svc.FromImage(context.Background(), domain.Image{Data: []byte{0xFF, 0xD8}, MIMEType: "image/jpeg"})
	if outcome.Source != domain.SourceImage {
		t.Fatalf("unexpected source: %q", outcome.Source)
	}
	if upstream.gotImage == nil || upstream.gotImage.MIMEType != "image/jpeg" {
		t.Fatalf("expected the image to reach the upstream, got %+v", upstream.gotImage)
	}
	if !strings.Contains(upstream.gotPrompt, "На изображении показан товар") {
		t.Fatalf("expected the image analysis prompt, got:\n%s", upstream.gotPrompt)
	}
}

func TestFromBothCombinesImageAndText(t *testing.T) {
	upstream := &fakeUpstream{
		raw:      `{"title": "Складной столик для пикника"}`,
		attempts: 1,
	}
	svc := newTestService(upstream)

	_, outcome := svc.FromBoth(context.Background(), domain.Image{Data: []byte{0xFF, 0xD8}, MIMEType: "image/jpeg"}, "столик для дачи")
	if outcome.Source != domain.SourceBoth {
		t.Fatalf("unexpected source: %q", outcome.Source)
	}
	if upstream.gotImage == nil {
		t.Fatal("expected the image to reach the upstream")
	}
	if !strings.Contains(upstream.gotPrompt, "Текстовое описание: столик для дачи") {
		t.Fatalf("expected the combined prompt to embed the text, got:\n%s", upstream.gotPrompt)
	}
}
