// Package service implements the content generation facade: mode selection,
// prompt rendering, the upstream retry loop, and fallback substitution. Its
// operations never fail; callers always receive a usable record plus an
// outcome describing how it was produced.
package service

import (
	"context"
	"errors"
	"time"

	"cardgen_backend/internal/generation/domain"
	"cardgen_backend/internal/generation/normalize"
	"cardgen_backend/internal/generation/prompt"
	"cardgen_backend/platform/logger"
)

// Fallback reasons recorded on outcomes, log lines, and history rows.
const (
	ReasonUpstreamDisabled  = "upstream_disabled"
	ReasonUpstreamExhausted = "upstream_exhausted"
	ReasonResponseTooShort  = "response_too_short"
	ReasonModelRefused      = "model_refused"
	ReasonQualityTooLow     = "quality_too_low"
	ReasonNormalization     = "normalization_failed"
)

// Config provides the facade's timing settings.
type Config interface {
	GetOpenAITimeout() time.Duration
}

// Outcome describes how one generation request was served.
type Outcome struct {
	Source         domain.Source
	Attempts       int
	UsedFallback   bool
	FallbackReason string
	Duration       time.Duration
}

// Service is the content generation facade.
type Service struct {
	upstream Upstream // nil means no upstream is configured
	norm     *normalize.Normalizer
	timeout  time.Duration
	log      *logger.Logger
	now      func() time.Time
}

// New creates the facade. A nil upstream puts the service in degraded mode:
// every request is answered with the fallback record.
func New(upstream Upstream, norm *normalize.Normalizer, cfg Config, log *logger.Logger) *Service {
	timeout := cfg.GetOpenAITimeout()
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Service{
		upstream: upstream,
		norm:     norm,
		timeout:  timeout,
		log:      log,
		now:      time.Now,
	}
}

// FromImage generates a listing from a product photo.
func (s *Service) FromImage(ctx context.Context, image domain.Image) (domain.ContentRecord, Outcome) {
	return s.generate(ctx, domain.SourceImage, prompt.ImageAnalysis(), &image)
}

// FromText generates a listing from a free-text product description.
func (s *Service) FromText(ctx context.Context, text string) (domain.ContentRecord, Outcome) {
	return s.generate(ctx, domain.SourceText, prompt.TextEnrichment(text), nil)
}

// FromBoth generates a listing from a photo and a description together.
func (s *Service) FromBoth(ctx context.Context, image domain.Image, text string) (domain.ContentRecord, Outcome) {
	return s.generate(ctx, domain.SourceBoth, prompt.Combined(text), &image)
}

func (s *Service) generate(ctx context.Context, source domain.Source, promptText string, image *domain.Image) (domain.ContentRecord, Outcome) {
	started := s.now()
	outcome := Outcome{Source: source}

	if s.upstream == nil {
		return s.fallback(&outcome, started, ReasonUpstreamDisabled)
	}

	// One deadline spans every retry attempt.
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, attempts, err := s.upstream.Call(ctx, promptText, image)
	outcome.Attempts = attempts
	if err != nil {
		return s.fallback(&outcome, started, reasonFor(err))
	}

	record, err := s.norm.Normalize(raw)
	if err != nil {
		return s.fallback(&outcome, started, reasonFor(err))
	}

	outcome.Duration = s.now().Sub(started)
	return record, outcome
}

func (s *Service) fallback(outcome *Outcome, started time.Time, reason string) (domain.ContentRecord, Outcome) {
	outcome.UsedFallback = true
	outcome.FallbackReason = reason
	outcome.Duration = s.now().Sub(started)
	s.log.GenerationFallback(outcome.Source.String(), reason, outcome.Attempts)
	return domain.FallbackRecord(), *outcome
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrUpstreamExhausted):
		return ReasonUpstreamExhausted
	case errors.Is(err, normalize.ErrResponseTooShort):
		return ReasonResponseTooShort
	case errors.Is(err, normalize.ErrModelRefused):
		return ReasonModelRefused
	case errors.Is(err, normalize.ErrQualityTooLow):
		return ReasonQualityTooLow
	default:
		return ReasonNormalization
	}
}
