// Package tts defines the interface for text-to-speech synthesis.
//
// The speech gateway enforces a maximum input length (truncating silently
// with a marker) and offers two timeout tiers: the normal tier for primary
// responses, and a short tier so that voicing an error narration never
// stalls the caller for the full timeout.
package tts

import (
	"context"
	"errors"
	"unicode/utf8"
)

// ErrNotConfigured is returned when the gateway has no API credentials.
var ErrNotConfigured = errors.New("tts: service not configured")

// TruncationMarker is appended to text cut at the character limit.
const TruncationMarker = "... (truncated)"

// Truncate cuts text exceeding max bytes down to at most max-20 and
// appends the truncation marker. The cut never splits a UTF-8 rune, so
// the result is always valid text. Text within the limit is returned
// unchanged.
func Truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max - 20
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + TruncationMarker
}

// Service is the interface for speech-synthesis backends. Both methods
// return a resolvable audio URL or an error; they never panic across the
// boundary.
type Service interface {
	// Configured reports whether the backend has credentials.
	Configured() bool

	// Synthesize voices text on the normal timeout tier.
	Synthesize(ctx context.Context, text, voiceID string) (string, error)

	// SynthesizeFallback voices error narration on the short timeout tier.
	SynthesizeFallback(ctx context.Context, text, voiceID string) (string, error)
}
