package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		message string
		want    Kind
	}{
		{"Resource exhausted: quota exceeded for model", KindQuota},
		{"upstream returned status 429", KindQuota},
		{"QUOTA limit reached", KindQuota},
		{"invalid API key provided", KindAuth},
		{"authentication failed for project", KindAuth},
		{"network unreachable", KindNetwork},
		{"connection refused", KindNetwork},
		{"request timeout after 30s", KindNetwork},
		{"model overloaded, try later", KindGeneral},
		{"", KindGeneral},
		// Priority order: quota phrases win over later rules.
		{"connection rejected: quota exceeded", KindQuota},
		{"api key rejected due to network policy", KindAuth},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Classify(tc.message), "message: %q", tc.message)
	}
}

func TestFallbackTextIsPure(t *testing.T) {
	for _, kind := range []Kind{KindQuota, KindAuth, KindNetwork, KindGeneral} {
		first := FallbackText(kind)
		require.NotEmpty(t, first)
		require.Equal(t, first, FallbackText(kind))
	}
	// Unknown kinds degrade to the general message.
	require.Equal(t, FallbackText(KindGeneral), FallbackText(Kind("bogus")))
}

func TestFallbackTextPerKindIsDistinct(t *testing.T) {
	seen := map[string]Kind{}
	for _, kind := range []Kind{KindQuota, KindAuth, KindNetwork, KindGeneral} {
		text := FallbackText(kind)
		prev, dup := seen[text]
		require.False(t, dup, "kinds %s and %s share fallback text", prev, kind)
		seen[text] = kind
	}
}

func TestBuildPrompt(t *testing.T) {
	require.Equal(t, "hello", BuildPrompt("hello", ""))
	require.Equal(t, "System: be brief\n\nUser: hello", BuildPrompt("hello", "be brief"))
}

func TestValidTemperature(t *testing.T) {
	require.True(t, ValidTemperature(0))
	require.True(t, ValidTemperature(0.7))
	require.True(t, ValidTemperature(2))
	require.False(t, ValidTemperature(-0.1))
	require.False(t, ValidTemperature(2.1))
}
