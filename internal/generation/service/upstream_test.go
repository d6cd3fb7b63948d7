package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/genai"

	"cardgen_backend/internal/generation/domain"
	"cardgen_backend/platform/logger"
)

type testGenerationConfig struct{}

func (testGenerationConfig) GetGenerationMaxAttempts() int          { return 3 }
func (testGenerationConfig) GetGenerationRetryDelay() time.Duration { return time.Second }

type completionResult struct {
	text string
	err  error
}

type scriptedCompleter struct {
	calls    int
	contents []*genai.Content
	results  []completionResult
}

func (s *scriptedCompleter) Complete(_ context.Context, contents []*genai.Content) (string, error) {
	s.contents = contents
	if s.calls >= len(s.results) {
		return "", errors.New("unexpected extra call")
	}
	result := s.results[s.calls]
	s.calls++
	return result.text, result.err
}

func newTestCaller(completer Completer) (*Caller, *int) {
	caller := NewCaller(completer, testGenerationConfig{}, logger.New("development"))
	sleeps := 0
	caller.sleep = func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}
	return caller, &sleeps
}

func TestCallReturnsThirdAttemptTextAfterTwoDelays(t *testing.T) {
	completer := &scriptedCompleter{results: []completionResult{
		{err: errors.New("connection reset")},
		{err: errors.New("connection reset")},
		{text: "Название: Складной столик для пикника"},
	}}
	caller, sleeps := newTestCaller(completer)

	raw, attempts, err := caller.Call(context.Background(), "опиши товар", nil)
	if err != nil {
		t.Fatalf("expected third attempt to succeed, got error: %v", err)
	}
	if raw != "Название: Складной столик для пикника" {
		t.Fatalf("unexpected raw text: %q", raw)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if *sleeps != 2 {
		t.Fatalf("expected exactly 2 delays, got %d", *sleeps)
	}
}

func TestCallExhaustsAfterThreeFailuresWithTwoDelays(t *testing.T) {
	lastCause := errors.New("rate limited upstream")
	completer := &scriptedCompleter{results: []completionResult{
		{err: errors.New("connection reset")},
		{err: errors.New("connection reset")},
		{err: lastCause},
	}}
	caller, sleeps := newTestCaller(completer)

	_, attempts, err := caller.Call(context.Background(), "опиши товар", nil)
	if !errors.Is(err, ErrUpstreamExhausted) {
		t.Fatalf("expected ErrUpstreamExhausted, got %v", err)
	}
	if !errors.Is(err, lastCause) {
		t.Fatalf("expected the last cause to be wrapped, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if *sleeps != 2 {
		t.Fatalf("expected exactly 2 delays and none after the final failure, got %d", *sleeps)
	}
}

func TestCallTreatsWhitespaceTextAsFailure(t *testing.T) {
	completer := &scriptedCompleter{results: []completionResult{
		{text: "   \n\t  "},
		{text: "Краткое описание: Компактный столик для пикника"},
	}}
	caller, sleeps := newTestCaller(completer)

	raw, attempts, err := caller.Call(context.Background(), "опиши товар", nil)
	if err != nil {
		t.Fatalf("expected second attempt to succeed, got error: %v", err)
	}
	if raw != "Краткое описание: Компактный столик для пикника" {
		t.Fatalf("unexpected raw text: %q", raw)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if *sleeps != 1 {
		t.Fatalf("expected 1 delay, got %d", *sleeps)
	}
}

func TestCallStopsWhenBudgetExpiresMidBackoff(t *testing.T) {
	transportErr := errors.New("connection reset")
	completer := &scriptedCompleter{results: []completionResult{
		{err: transportErr},
		{text: "никогда не должен быть запрошен"},
	}}
	caller := NewCaller(completer, testGenerationConfig{}, logger.New("development"))
	caller.sleep = func(context.Context, time.Duration) error {
		return context.DeadlineExceeded
	}

	_, attempts, err := caller.Call(context.Background(), "опиши товар", nil)
	if !errors.Is(err, ErrUpstreamExhausted) {
		t.Fatalf("expected ErrUpstreamExhausted, got %v", err)
	}
	if !errors.Is(err, transportErr) {
		t.Fatalf("expected the transport cause to be wrapped, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt before the budget ran out, got %d", attempts)
	}
	if completer.calls != 1 {
		t.Fatalf("expected no further upstream calls, got %d", completer.calls)
	}
}

func TestUserTurnPutsImageBeforeText(t *testing.T) {
	image := &domain.Image{Data: []byte{0xFF, 0xD8}, MIMEType: "image/jpeg"}

	contents := userTurn("опиши товар на фото", image)
	if len(contents) != 1 {
		t.Fatalf("expected a single user turn, got %d", len(contents))
	}
	if contents[0].Role != "user" {
		t.Fatalf("unexpected role: %q", contents[0].Role)
	}
	parts := contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected image and text parts, got %d", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.MIMEType != "image/jpeg" {
		t.Fatalf("expected the image part first, got %+v", parts[0])
	}
	if parts[1].Text != "опиши товар на фото" {
		t.Fatalf("expected the text part second, got %+v", parts[1])
	}
}

func TestUserTurnWithoutImageIsTextOnly(t *testing.T) {
	contents := userTurn("улучши описание", nil)
	parts := contents[0].Parts
	if len(parts) != 1 {
		t.Fatalf("expected a single text part, got %d", len(parts))
	}
	if parts[0].InlineData != nil {
		t.Fatal("expected no image part")
	}
}
