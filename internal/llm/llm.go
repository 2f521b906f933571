// Package llm defines the interface for LLM response generation and owns
// the failure taxonomy used to pick fallback text.
//
// The gateway supports two call shapes: a single prompt (one-shot query)
// and a history-conditioned call where the conversation turns are
// concatenated into a role-tagged transcript with a trailing open
// "Assistant:" cue.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nadzzz/voiceagent/internal/conversation"
)

// ErrNotConfigured is returned when the gateway has no API credentials.
var ErrNotConfigured = errors.New("llm: service not configured")

// TemperatureRangeError is a client-input error: temperature must be in [0, 2].
type TemperatureRangeError struct {
	Temperature float64
}

func (e *TemperatureRangeError) Error() string {
	return fmt.Sprintf("llm: temperature %g out of range [0, 2]", e.Temperature)
}

// Opts controls a single generation call.
type Opts struct {
	// Model overrides the configured default model.
	Model string

	// Temperature is the sampling temperature, bounded to [0, 2].
	Temperature float64

	// SystemInstruction replaces the default system preamble (single-prompt
	// calls only).
	SystemInstruction string
}

// Service is the interface for response-generation backends.
type Service interface {
	// Configured reports whether the backend has credentials.
	Configured() bool

	// Generate produces a response for a single prompt.
	Generate(ctx context.Context, prompt string, opts Opts) (string, error)

	// GenerateConversation produces a response conditioned on the full
	// turn history.
	GenerateConversation(ctx context.Context, history []conversation.Turn, opts Opts) (string, error)
}

// defaultSystemInstruction is prepended to history-conditioned prompts.
const defaultSystemInstruction = "You are a helpful AI assistant. Respond naturally and remember the conversation context."

// BuildPrompt formats a single prompt, prefixing the system instruction
// when one is supplied.
func BuildPrompt(prompt, systemInstruction string) string {
	if systemInstruction == "" {
		return prompt
	}
	return fmt.Sprintf("System: %s\n\nUser: %s", systemInstruction, prompt)
}

// BuildConversationPrompt flattens turn history into a role-tagged
// transcript ending with an open "Assistant:" cue.
func BuildConversationPrompt(history []conversation.Turn) string {
	var sb strings.Builder
	sb.WriteString("System: ")
	sb.WriteString(defaultSystemInstruction)
	sb.WriteString("\n\n")
	for _, turn := range history {
		if turn.Role == conversation.RoleUser {
			sb.WriteString("User: ")
		} else {
			sb.WriteString("Assistant: ")
		}
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("Assistant:")
	return sb.String()
}

// ValidTemperature reports whether t is inside the accepted range.
func ValidTemperature(t float64) bool {
	return t >= 0 && t <= 2
}
