package llm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nadzzz/voiceagent/internal/conversation"
)

func TestBuildConversationPrompt(t *testing.T) {
	history := []conversation.Turn{
		{Role: conversation.RoleUser, Content: "hello"},
		{Role: conversation.RoleAssistant, Content: "hi there"},
		{Role: conversation.RoleUser, Content: "how are you?"},
	}

	got := BuildConversationPrompt(history)

	want := "System: You are a helpful AI assistant. Respond naturally and remember the conversation context.\n\n" +
		"User: hello\n" +
		"Assistant: hi there\n" +
		"User: how are you?\n" +
		"Assistant:"
	require.Equal(t, want, got)
}

func TestBuildConversationPromptEmptyHistory(t *testing.T) {
	got := BuildConversationPrompt(nil)
	require.Contains(t, got, "System: ")
	require.True(t, len(got) > 0 && got[len(got)-1] == ':', "prompt must end with the open Assistant cue")
}
