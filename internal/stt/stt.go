// Package stt defines the interface for speech-to-text transcription.
//
// A transcription gateway validates the declared audio type before any
// remote call, converts audio bytes to text, and surfaces remote failures
// as errors carrying the upstream cause — it never substitutes fallback
// text (that is the orchestrator's job).
package stt

import (
	"context"
	"errors"
	"fmt"
)

// allowedTypes is the fixed set of audio MIME types accepted for upload.
var allowedTypes = map[string]bool{
	"audio/webm": true,
	"audio/wav":  true,
	"audio/mp3":  true,
	"audio/m4a":  true,
	"audio/ogg":  true,
	"audio/opus": true,
}

// ErrNotConfigured is returned when the gateway has no API credentials.
var ErrNotConfigured = errors.New("stt: service not configured")

// UnsupportedFormatError is a client-input error: the declared MIME type
// is not in the allow-list. The audio is never sent upstream.
type UnsupportedFormatError struct {
	ContentType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("stt: unsupported audio format %q", e.ContentType)
}

// ValidFormat reports whether the MIME type is in the allow-list.
func ValidFormat(contentType string) bool {
	return allowedTypes[contentType]
}

// AllowedFormats returns the accepted audio MIME types.
func AllowedFormats() []string {
	return []string{"audio/webm", "audio/wav", "audio/mp3", "audio/m4a", "audio/ogg", "audio/opus"}
}

// Service is the interface for audio transcription backends.
type Service interface {
	// Configured reports whether the backend has credentials.
	Configured() bool

	// Transcribe converts audio bytes to text. An empty or
	// whitespace-only remote result is treated as a failure.
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}
