package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"cardgen_backend/internal/generation/domain"
	"cardgen_backend/platform/config"
	"cardgen_backend/platform/logger"
)

// ErrUpstreamExhausted reports that every transport attempt failed or came
// back empty. It wraps the last underlying cause.
var ErrUpstreamExhausted = errors.New("upstream attempts exhausted")

var errEmptyResponse = errors.New("upstream returned empty text")

// Completer is the single-attempt completion capability of the upstream
// model API.
type Completer interface {
	Complete(ctx context.Context, contents []*genai.Content) (string, error)
}

// Upstream issues one prompt with bounded retries and returns raw model text.
type Upstream interface {
	Call(ctx context.Context, promptText string, image *domain.Image) (raw string, attempts int, err error)
}

// Caller retries a Completer with a fixed delay between attempts. An attempt
// fails when the call errors or the returned text is empty after trimming.
// No state survives a call; concurrent calls are independent.
type Caller struct {
	completer   Completer
	maxAttempts int
	delay       time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
	log         *logger.Logger
}

// NewCaller creates a Caller using the configured attempt count and delay.
func NewCaller(completer Completer, cfg config.GenerationConfig, log *logger.Logger) *Caller {
	maxAttempts := cfg.GetGenerationMaxAttempts()
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	delay := cfg.GetGenerationRetryDelay()
	if delay <= 0 {
		delay = time.Second
	}

	return &Caller{
		completer:   completer,
		maxAttempts: maxAttempts,
		delay:       delay,
		sleep:       sleepContext,
		log:         log,
	}
}

var _ Upstream = (*Caller)(nil)

// Call sends the prompt as a single user turn and returns the first
// non-empty response. The image part, when present, precedes the text part
// in the turn. The context bounds all attempts together; a deadline is not
// reset between them. No delay follows the final failed attempt.
func (c *Caller) Call(ctx context.Context, promptText string, image *domain.Image) (string, int, error) {
	contents := userTurn(promptText, image)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		text, err := c.completer.Complete(ctx, contents)
		if err == nil && strings.TrimSpace(text) != "" {
			return text, attempt, nil
		}
		if err == nil {
			err = errEmptyResponse
		}
		lastErr = err

		if attempt == c.maxAttempts {
			return "", attempt, fmt.Errorf("%w: %w", ErrUpstreamExhausted, lastErr)
		}

		c.log.UpstreamRetry(attempt, c.maxAttempts, err)
		if sleepErr := c.sleep(ctx, c.delay); sleepErr != nil {
			// Budget spent mid-backoff; further attempts would fail instantly.
			return "", attempt, fmt.Errorf("%w: %w", ErrUpstreamExhausted, lastErr)
		}
	}

	return "", c.maxAttempts, fmt.Errorf("%w: %w", ErrUpstreamExhausted, lastErr)
}

// userTurn assembles the single user turn sent upstream. Image bytes go in
// first as inline data, then the prompt text.
func userTurn(promptText string, image *domain.Image) []*genai.Content {
	parts := make([]*genai.Part, 0, 2)
	if image != nil {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: image.MIMEType,
				Data:     image.Data,
			},
		})
	}
	parts = append(parts, genai.NewPartFromText(promptText))

	return []*genai.Content{{
		Role:  "user",
		Parts: parts,
	}}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
