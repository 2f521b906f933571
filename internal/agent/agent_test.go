package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nadzzz/voiceagent/internal/conversation"
	"github.com/nadzzz/voiceagent/internal/llm"
	"github.com/nadzzz/voiceagent/internal/stt"
)

type mockSTT struct {
	configured bool
	text       string
	err        error
	calls      int
}

func (m *mockSTT) Configured() bool { return m.configured }

func (m *mockSTT) Transcribe(_ context.Context, _ []byte, contentType string) (string, error) {
	m.calls++
	if !stt.ValidFormat(contentType) {
		return "", &stt.UnsupportedFormatError{ContentType: contentType}
	}
	if !m.configured {
		return "", stt.ErrNotConfigured
	}
	return m.text, m.err
}

type mockLLM struct {
	configured  bool
	response    string
	err         error
	genCalls    int
	convCalls   int
	lastPrompt  string
	lastHistory []conversation.Turn
	lastOpts    llm.Opts
}

func (m *mockLLM) Configured() bool { return m.configured }

func (m *mockLLM) Generate(_ context.Context, prompt string, opts llm.Opts) (string, error) {
	m.genCalls++
	m.lastPrompt = prompt
	m.lastOpts = opts
	return m.response, m.err
}

func (m *mockLLM) GenerateConversation(_ context.Context, history []conversation.Turn, opts llm.Opts) (string, error) {
	m.convCalls++
	m.lastHistory = history
	m.lastOpts = opts
	return m.response, m.err
}

type mockTTS struct {
	configured    bool
	url           string
	err           error
	fallbackURL   string
	fallbackErr   error
	normalCalls   int
	fallbackCalls int
	lastText      string
}

func (m *mockTTS) Configured() bool { return m.configured }

func (m *mockTTS) Synthesize(_ context.Context, text, _ string) (string, error) {
	m.normalCalls++
	m.lastText = text
	return m.url, m.err
}

func (m *mockTTS) SynthesizeFallback(_ context.Context, text, _ string) (string, error) {
	m.fallbackCalls++
	m.lastText = text
	return m.fallbackURL, m.fallbackErr
}

func opts() ChatOpts {
	return ChatOpts{Model: "gemini-1.5-flash", Temperature: 0.7, VoiceID: "en-US-natalie"}
}

func TestChatHappyPath(t *testing.T) {
	sttSvc := &mockSTT{configured: true, text: "hello"}
	llmSvc := &mockLLM{configured: true, response: "hi there"}
	ttsSvc := &mockTTS{configured: true, url: "https://audio/1.mp3"}
	store := conversation.NewStore()
	a := New(sttSvc, llmSvc, ttsSvc, store)

	out, err := a.Chat(context.Background(), "s1", []byte("audio"), "audio/wav", opts())
	require.NoError(t, err)

	require.Equal(t, "hello", out.Transcript)
	require.Equal(t, "hi there", out.ResponseText)
	require.Equal(t, "https://audio/1.mp3", out.AudioURL)
	require.False(t, out.IsFallback)
	require.False(t, out.ServiceUnavailable)
	require.Empty(t, out.ErrorKind)
	require.Empty(t, out.TTSError)
	require.Equal(t, 2, out.MessageCount)
	require.NotEmpty(t, out.RequestID)

	require.Equal(t, []conversation.Turn{
		{Role: conversation.RoleUser, Content: "hello"},
		{Role: conversation.RoleAssistant, Content: "hi there"},
	}, store.History("s1"))

	// The LLM saw the history including the just-appended user turn.
	require.Equal(t, []conversation.Turn{{Role: conversation.RoleUser, Content: "hello"}}, llmSvc.lastHistory)
	require.Equal(t, 1, ttsSvc.normalCalls)
	require.Zero(t, ttsSvc.fallbackCalls)
}

func TestChatFailsFastWhenLLMUnconfigured(t *testing.T) {
	sttSvc := &mockSTT{configured: true, text: "hello"}
	a := New(sttSvc, &mockLLM{}, &mockTTS{configured: true}, conversation.NewStore())

	_, err := a.Chat(context.Background(), "s1", []byte("audio"), "audio/wav", opts())

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, "LLM", unavailable.Service)
	require.Zero(t, sttSvc.calls, "STT must never be invoked when the LLM is unconfigured")
}

func TestChatSTTFailureFallsBack(t *testing.T) {
	sttSvc := &mockSTT{configured: true, err: errors.New("transcription request timeout")}
	llmSvc := &mockLLM{configured: true, response: "unused"}
	ttsSvc := &mockTTS{configured: true, fallbackURL: "https://audio/fb.mp3"}
	store := conversation.NewStore()
	a := New(sttSvc, llmSvc, ttsSvc, store)

	out, err := a.Chat(context.Background(), "s1", []byte("audio"), "audio/wav", opts())
	require.NoError(t, err)

	require.True(t, out.IsFallback)
	require.Equal(t, KindSTTError, out.ErrorKind)
	require.Empty(t, out.Transcript)
	require.Equal(t, sttFallbackMessage, out.ResponseText)
	require.Equal(t, "https://audio/fb.mp3", out.AudioURL)
	require.False(t, out.ServiceUnavailable)
	require.Equal(t, 0, out.MessageCount)
	require.Empty(t, store.History("s1"), "failed transcription must not touch history")
	require.Zero(t, llmSvc.convCalls)
	require.Equal(t, 1, ttsSvc.fallbackCalls, "fallback text is voiced on the short tier")
	require.Zero(t, ttsSvc.normalCalls)
}

func TestChatLLMQuotaFallback(t *testing.T) {
	sttSvc := &mockSTT{configured: true, text: "hello"}
	llmSvc := &mockLLM{configured: true, err: errors.New("generate failed (status 429): rate limited")}
	ttsSvc := &mockTTS{configured: true, fallbackURL: "https://audio/fb.mp3"}
	store := conversation.NewStore()
	a := New(sttSvc, llmSvc, ttsSvc, store)

	out, err := a.Chat(context.Background(), "s1", []byte("audio"), "audio/wav", opts())
	require.NoError(t, err)

	require.True(t, out.IsFallback)
	require.Equal(t, "quota", out.ErrorKind)
	require.Equal(t, llm.FallbackText(llm.KindQuota), out.ResponseText)
	require.Equal(t, 1, ttsSvc.fallbackCalls)
	require.Equal(t, llm.FallbackText(llm.KindQuota), ttsSvc.lastText)
	require.Zero(t, ttsSvc.normalCalls)

	// The user turn stays; no assistant turn is appended for the failed attempt.
	require.Equal(t, []conversation.Turn{{Role: conversation.RoleUser, Content: "hello"}}, store.History("s1"))
	require.Equal(t, 1, out.MessageCount)
}

func TestChatTTSFailureDegradesToTextOnly(t *testing.T) {
	sttSvc := &mockSTT{configured: true, text: "hello"}
	llmSvc := &mockLLM{configured: true, response: "hi there"}
	ttsSvc := &mockTTS{configured: true, err: errors.New("speech request timeout")}
	store := conversation.NewStore()
	a := New(sttSvc, llmSvc, ttsSvc, store)

	out, err := a.Chat(context.Background(), "s1", []byte("audio"), "audio/wav", opts())
	require.NoError(t, err)

	require.Equal(t, "hi there", out.ResponseText, "the text payload must never be dropped")
	require.Empty(t, out.AudioURL)
	require.Equal(t, ttsFailedNote, out.TTSError)
	require.False(t, out.IsFallback, "a voicing failure is degraded delivery, not a fallback")
	require.False(t, out.ServiceUnavailable)
	require.Equal(t, 2, out.MessageCount)
	require.Zero(t, ttsSvc.fallbackCalls, "voice failure must not re-route to the fallback branch")
}

func TestChatTotalOutage(t *testing.T) {
	sttSvc := &mockSTT{configured: true, err: errors.New("connection refused")}
	llmSvc := &mockLLM{configured: true}
	ttsSvc := &mockTTS{configured: true, fallbackErr: errors.New("connection refused")}
	a := New(sttSvc, llmSvc, ttsSvc, conversation.NewStore())

	out, err := a.Chat(context.Background(), "s1", []byte("audio"), "audio/wav", opts())
	require.NoError(t, err)

	require.True(t, out.IsFallback)
	require.True(t, out.ServiceUnavailable)
	require.Empty(t, out.AudioURL)
	require.Equal(t, sttFallbackMessage, out.ResponseText, "even total outage yields a coherent text response")
}

func TestChatUnsupportedFormatIsClientError(t *testing.T) {
	sttSvc := &mockSTT{configured: true, text: "hello"}
	ttsSvc := &mockTTS{configured: true}
	store := conversation.NewStore()
	a := New(sttSvc, &mockLLM{configured: true, response: "hi"}, ttsSvc, store)

	_, err := a.Chat(context.Background(), "s1", []byte("audio"), "video/mp4", opts())

	var formatErr *stt.UnsupportedFormatError
	require.ErrorAs(t, err, &formatErr)
	require.Empty(t, store.History("s1"))
	require.Zero(t, ttsSvc.fallbackCalls, "client-input errors need no fallback")
}

func TestChatTemperatureOutOfRange(t *testing.T) {
	sttSvc := &mockSTT{configured: true, text: "hello"}
	a := New(sttSvc, &mockLLM{configured: true}, &mockTTS{configured: true}, conversation.NewStore())

	badOpts := opts()
	badOpts.Temperature = 3.5
	_, err := a.Chat(context.Background(), "s1", []byte("audio"), "audio/wav", badOpts)

	var rangeErr *llm.TemperatureRangeError
	require.ErrorAs(t, err, &rangeErr)
	require.Zero(t, sttSvc.calls)
}

func TestChatSTTNotConfiguredFallsBack(t *testing.T) {
	// Unlike an unconfigured LLM, a missing STT key degrades instead of
	// failing the chat request.
	ttsSvc := &mockTTS{configured: true, fallbackURL: "https://audio/fb.mp3"}
	a := New(&mockSTT{}, &mockLLM{configured: true, response: "hi"}, ttsSvc, conversation.NewStore())

	out, err := a.Chat(context.Background(), "s1", []byte("audio"), "audio/wav", opts())
	require.NoError(t, err)
	require.True(t, out.IsFallback)
	require.Equal(t, KindSTTError, out.ErrorKind)
}

func TestChatHistoryAccumulatesAcrossTurns(t *testing.T) {
	sttSvc := &mockSTT{configured: true, text: "first"}
	llmSvc := &mockLLM{configured: true, response: "answer one"}
	a := New(sttSvc, llmSvc, &mockTTS{configured: true, url: "https://audio/1.mp3"}, conversation.NewStore())

	_, err := a.Chat(context.Background(), "s1", []byte("audio"), "audio/wav", opts())
	require.NoError(t, err)

	sttSvc.text = "second"
	llmSvc.response = "answer two"
	out, err := a.Chat(context.Background(), "s1", []byte("audio"), "audio/wav", opts())
	require.NoError(t, err)

	require.Equal(t, 4, out.MessageCount)
	require.Len(t, llmSvc.lastHistory, 3, "second turn is generated from the accumulated history")
	require.Equal(t, "second", llmSvc.lastHistory[2].Content)
}

func TestQueryWithText(t *testing.T) {
	llmSvc := &mockLLM{configured: true, response: "four"}
	ttsSvc := &mockTTS{configured: true, url: "https://audio/q.mp3"}
	sttSvc := &mockSTT{configured: true}
	a := New(sttSvc, llmSvc, ttsSvc, conversation.NewStore())

	out, err := a.Query(context.Background(), QueryInput{
		Text:              "  what is 2+2?  ",
		Model:             "gemini-1.5-flash",
		Temperature:       0.2,
		SystemInstruction: "answer with a single word",
		VoiceID:           "en-US-natalie",
	})
	require.NoError(t, err)

	require.Equal(t, "four", out.ResponseText)
	require.Equal(t, "https://audio/q.mp3", out.AudioURL)
	require.Empty(t, out.Transcript)
	require.Equal(t, 0, out.MessageCount)
	require.Equal(t, "what is 2+2?", llmSvc.lastPrompt)
	require.Equal(t, "answer with a single word", llmSvc.lastOpts.SystemInstruction)
	require.Zero(t, sttSvc.calls)
}

func TestQueryWithAudio(t *testing.T) {
	sttSvc := &mockSTT{configured: true, text: "what is the weather"}
	llmSvc := &mockLLM{configured: true, response: "sunny"}
	a := New(sttSvc, llmSvc, &mockTTS{configured: true, url: "https://audio/q.mp3"}, conversation.NewStore())

	out, err := a.Query(context.Background(), QueryInput{
		Audio:       []byte("audio"),
		ContentType: "audio/webm",
		Temperature: 0.7,
	})
	require.NoError(t, err)
	require.Equal(t, "what is the weather", out.Transcript)
	require.Equal(t, "what is the weather", llmSvc.lastPrompt)
	require.Equal(t, "sunny", out.ResponseText)
}

func TestQueryNoInput(t *testing.T) {
	a := New(&mockSTT{configured: true}, &mockLLM{configured: true}, &mockTTS{configured: true}, conversation.NewStore())

	_, err := a.Query(context.Background(), QueryInput{Text: "   ", Temperature: 0.7})
	require.ErrorIs(t, err, ErrNoInput)
}

func TestQuerySTTUnavailableForAudio(t *testing.T) {
	a := New(&mockSTT{}, &mockLLM{configured: true}, &mockTTS{configured: true}, conversation.NewStore())

	_, err := a.Query(context.Background(), QueryInput{
		Audio:       []byte("audio"),
		ContentType: "audio/wav",
		Temperature: 0.7,
	})

	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, "STT", unavailable.Service)
}

func TestQueryLLMFailureFallsBack(t *testing.T) {
	llmSvc := &mockLLM{configured: true, err: errors.New("network unreachable")}
	ttsSvc := &mockTTS{configured: true, fallbackURL: "https://audio/fb.mp3"}
	a := New(&mockSTT{configured: true}, llmSvc, ttsSvc, conversation.NewStore())

	out, err := a.Query(context.Background(), QueryInput{Text: "hello", Temperature: 0.7})
	require.NoError(t, err)

	require.True(t, out.IsFallback)
	require.Equal(t, "network", out.ErrorKind)
	require.Equal(t, llm.FallbackText(llm.KindNetwork), out.ResponseText)
	require.Equal(t, 1, ttsSvc.fallbackCalls)
}
