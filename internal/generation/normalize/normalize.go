// Package normalize turns raw model output into complete content records.
// Recovery runs through a fixed strategy ladder: whole-text JSON, fenced
// JSON, brace-matched JSON, then a line-oriented parser for sectioned free
// text. Recovered candidates are quality scored, gated by profile, and
// completed so every returned record is total.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"cardgen_backend/internal/generation/domain"
)

// Normalization failure causes. Every error returned by Normalize wraps
// ErrNormalizationFailed together with exactly one of the specific causes.
var (
	ErrNormalizationFailed = errors.New("normalization failed")
	ErrResponseTooShort    = errors.New("response too short")
	ErrModelRefused        = errors.New("model refused")
	ErrQualityTooLow       = errors.New("quality too low")
)

// Profile controls how strict normalization is.
type Profile struct {
	// MinLength is the minimum trimmed response length in runes. Anything
	// shorter fails before any extraction strategy runs.
	MinLength int
	// MinScore is the lowest acceptable quality score for candidates
	// recovered by the line parser. JSON-shaped responses are not score
	// gated.
	MinScore float64
	// Markers overrides the built-in refusal vocabulary when non-empty.
	Markers []string
}

// StrictProfile suits callers with no curated fallback downstream.
func StrictProfile() Profile {
	return Profile{MinLength: 50, MinScore: 0.6}
}

// LenientProfile suits callers that substitute a fallback record on any
// failure anyway.
func LenientProfile() Profile {
	return Profile{MinLength: 20, MinScore: 0.1}
}

// Config defines the configuration surface for building a Profile.
type Config interface {
	GetNormalizeProfile() string
	GetNormalizeMinScore() float64
	GetNormalizeMinLength() int
	GetRefusalMarkers() []string
}

// FromConfig builds a Profile from configuration: the named base profile
// with any explicit overrides applied on top.
func FromConfig(cfg Config) Profile {
	var p Profile
	switch strings.ToLower(cfg.GetNormalizeProfile()) {
	case "strict":
		p = StrictProfile()
	default:
		p = LenientProfile()
	}
	if v := cfg.GetNormalizeMinLength(); v > 0 {
		p.MinLength = v
	}
	if v := cfg.GetNormalizeMinScore(); v > 0 {
		p.MinScore = v
	}
	if markers := cfg.GetRefusalMarkers(); len(markers) > 0 {
		p.Markers = markers
	}
	return p
}

// Normalizer recovers complete content records from raw model output.
// It holds no per-request state and is safe for concurrent use.
type Normalizer struct {
	profile Profile
	markers []string
}

// New creates a Normalizer with the given profile.
func New(profile Profile) *Normalizer {
	markers := profile.Markers
	if len(markers) == 0 {
		markers = defaultRefusalMarkers
	}
	lowered := make([]string, len(markers))
	for i, marker := range markers {
		lowered[i] = strings.ToLower(marker)
	}
	return &Normalizer{
		profile: profile,
		markers: lowered,
	}
}

// Normalize recovers a complete content record from one raw model response.
//
// JSON-shaped responses go straight to completion: producing the requested
// structure is taken as evidence the model complied, so neither the refusal
// scan nor the score gate applies to them. Free text is scanned for refusal
// markers first, then parsed line by line and gated on its quality score.
func (n *Normalizer) Normalize(raw string) (domain.ContentRecord, error) {
	trimmed := strings.TrimSpace(raw)
	if length := utf8.RuneCountInString(trimmed); length < n.profile.MinLength {
		return domain.ContentRecord{}, n.fail(fmt.Errorf("%w: %d runes, need %d", ErrResponseTooShort, length, n.profile.MinLength))
	}

	if candidate, ok := extractStructured(trimmed); ok {
		return Complete(candidate), nil
	}

	if marker, found := n.refusalMarker(trimmed); found {
		return domain.ContentRecord{}, n.fail(fmt.Errorf("%w: matched %q", ErrModelRefused, marker))
	}

	candidate := parseLines(trimmed)
	if score := Score(candidate); score < n.profile.MinScore {
		return domain.ContentRecord{}, n.fail(fmt.Errorf("%w: score %.2f below %.2f", ErrQualityTooLow, score, n.profile.MinScore))
	}

	return Complete(candidate), nil
}

func (n *Normalizer) fail(cause error) error {
	return fmt.Errorf("%w: %w", ErrNormalizationFailed, cause)
}
