package tts

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestTruncateWithinLimit(t *testing.T) {
	require.Equal(t, "short text", Truncate("short text", 3000))

	exact := strings.Repeat("a", 100)
	require.Equal(t, exact, Truncate(exact, 100))
}

func TestTruncateOverLimit(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := Truncate(long, 100)

	require.True(t, strings.HasSuffix(got, TruncationMarker))
	require.Equal(t, strings.Repeat("a", 80), strings.TrimSuffix(got, TruncationMarker),
		"kept text must be exactly limit-20 characters")
	require.Equal(t, 80+len(TruncationMarker), len(got))
}

func TestTruncateKeepsRunesIntact(t *testing.T) {
	// The byte limit lands mid-rune here: 'a' followed by two-byte runes
	// means every even offset after 0 splits a code point.
	long := "a" + strings.Repeat("é", 2000)
	got := Truncate(long, 3000)

	require.True(t, utf8.ValidString(got), "truncation must never produce invalid UTF-8")
	require.True(t, strings.HasSuffix(got, TruncationMarker))
	require.LessOrEqual(t, len(got), 2980+len(TruncationMarker))
}

func TestTruncateTinyLimit(t *testing.T) {
	var got string
	require.NotPanics(t, func() {
		got = Truncate(strings.Repeat("a", 50), 10)
	})
	require.Equal(t, TruncationMarker, got, "limits at or below the marker reserve keep no text")
}
