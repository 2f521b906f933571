// Package agent implements the conversation orchestrator.
//
// The agent composes the transcription, response, and speech gateways into
// the end-to-end pipeline: audio → transcript → (history update) →
// response → (history update) → speech URL. A fallback branch is reachable
// from every stage: the caller always receives a coherent outcome, even
// under total vendor outage. No stage is ever retried — each request gets
// at most one attempt per gateway, and degradation is the single recovery
// mechanism.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nadzzz/voiceagent/internal/conversation"
	"github.com/nadzzz/voiceagent/internal/llm"
	"github.com/nadzzz/voiceagent/internal/stt"
	"github.com/nadzzz/voiceagent/internal/tts"
)

// KindSTTError labels fallbacks caused by the transcription stage.
const KindSTTError = "STT_ERROR"

// sttFallbackMessage narrates a failed or unavailable transcription stage.
const sttFallbackMessage = "I'm having trouble understanding your audio right now. Please try speaking again or check your microphone."

// ttsNotConfiguredNote and ttsFailedNote annotate degraded (text-only) outcomes.
const (
	ttsNotConfiguredNote = "TTS service not configured"
	ttsFailedNote        = "Audio generation failed"
)

// ErrNoInput is a client-input error: the request carried neither audio
// nor text.
var ErrNoInput = errors.New("agent: either audio or text input is required")

// UnavailableError signals that a mandatory upstream dependency is not
// configured. The pipeline fails fast without touching other gateways.
type UnavailableError struct {
	Service string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s service unavailable - API key not configured", e.Service)
}

// SessionStore is the conversation history the agent reads and appends.
type SessionStore interface {
	Append(sessionID string, role conversation.Role, content string)
	History(sessionID string) []conversation.Turn
	Count(sessionID string) int
	Delete(sessionID string) bool
	Sessions() []string
	Stats() conversation.Stats
}

// Outcome is the fully resolved result of one pipeline run. Every field is
// populated (possibly to its zero value) before the outcome is returned.
type Outcome struct {
	RequestID    string
	SessionID    string
	Transcript   string
	ResponseText string
	AudioURL     string
	VoiceID      string
	Model        string

	// IsFallback marks outcomes whose response text is pre-authored
	// substitute text rather than a generated answer.
	IsFallback bool

	// ErrorKind labels the failed stage ("STT_ERROR") or the classified
	// response failure ("quota", "auth", "network", "general").
	ErrorKind string

	// TTSError notes a degraded text-only delivery: the response stage
	// succeeded but voicing failed.
	TTSError string

	// ServiceUnavailable marks fallbacks that could not be voiced either.
	ServiceUnavailable bool

	MessageCount int
}

// ChatOpts carries per-request generation parameters.
type ChatOpts struct {
	Model       string
	Temperature float64
	VoiceID     string
}

// QueryInput is a one-shot pipeline request: text or audio in.
type QueryInput struct {
	Text              string
	Audio             []byte
	ContentType       string
	Model             string
	Temperature       float64
	SystemInstruction string
	VoiceID           string
}

// Agent orchestrates the three gateways and the session store.
type Agent struct {
	stt      stt.Service
	llm      llm.Service
	tts      tts.Service
	sessions SessionStore
}

// New creates an agent over the given gateways and session store.
func New(sttSvc stt.Service, llmSvc llm.Service, ttsSvc tts.Service, sessions SessionStore) *Agent {
	return &Agent{stt: sttSvc, llm: llmSvc, tts: ttsSvc, sessions: sessions}
}

// Sessions exposes the session store for the read/delete/stats surface.
func (a *Agent) Sessions() SessionStore { return a.sessions }

// Configured reports the configuration state of each gateway.
func (a *Agent) Configured() map[string]bool {
	return map[string]bool{
		"stt": a.stt.Configured(),
		"llm": a.llm.Configured(),
		"tts": a.tts.Configured(),
	}
}

// Chat runs the session pipeline: transcribe the audio, append the user
// turn, generate from the full history, append the assistant turn, voice
// the response.
func (a *Agent) Chat(ctx context.Context, sessionID string, audio []byte, contentType string, opts ChatOpts) (*Outcome, error) {
	out := &Outcome{
		RequestID: uuid.NewString(),
		SessionID: sessionID,
		VoiceID:   opts.VoiceID,
		Model:     opts.Model,
	}
	logger := slog.With("request_id", out.RequestID, "session_id", sessionID)
	logger.Info("chat pipeline started", "audio_bytes", len(audio), "content_type", contentType)

	// The response gateway is the mandatory dependency: without it no
	// useful answer is possible, so fail fast before touching STT.
	if !a.llm.Configured() {
		return nil, &UnavailableError{Service: "LLM"}
	}
	if !llm.ValidTemperature(opts.Temperature) {
		return nil, &llm.TemperatureRangeError{Temperature: opts.Temperature}
	}

	transcript, err := a.stt.Transcribe(ctx, audio, contentType)
	if err != nil {
		var formatErr *stt.UnsupportedFormatError
		if errors.As(err, &formatErr) {
			return nil, err
		}
		logger.Error("transcription failed", "error", err)
		return a.fallback(ctx, out, sttFallbackMessage, KindSTTError, logger), nil
	}
	out.Transcript = transcript
	logger.Info("transcription complete", "text_length", len(transcript))

	a.sessions.Append(sessionID, conversation.RoleUser, transcript)
	history := a.sessions.History(sessionID)

	response, err := a.llm.GenerateConversation(ctx, history, llm.Opts{
		Model:       opts.Model,
		Temperature: opts.Temperature,
	})
	if err != nil {
		kind := llm.Classify(err.Error())
		logger.Error("response generation failed", "error", err, "kind", kind)
		return a.fallback(ctx, out, llm.FallbackText(kind), string(kind), logger), nil
	}
	out.ResponseText = response
	a.sessions.Append(sessionID, conversation.RoleAssistant, response)
	logger.Info("response generated", "text_length", len(response))

	a.voice(ctx, out, logger)

	out.MessageCount = a.sessions.Count(sessionID)
	logger.Info("chat pipeline complete", "message_count", out.MessageCount, "has_audio", out.AudioURL != "")
	return out, nil
}

// Query runs the one-shot pipeline: no history is read or written.
func (a *Agent) Query(ctx context.Context, in QueryInput) (*Outcome, error) {
	out := &Outcome{
		RequestID: uuid.NewString(),
		VoiceID:   in.VoiceID,
		Model:     in.Model,
	}
	logger := slog.With("request_id", out.RequestID)
	logger.Info("query pipeline started", "has_audio", len(in.Audio) > 0)

	if !a.llm.Configured() {
		return nil, &UnavailableError{Service: "LLM"}
	}
	if !llm.ValidTemperature(in.Temperature) {
		return nil, &llm.TemperatureRangeError{Temperature: in.Temperature}
	}

	var prompt string
	switch {
	case len(in.Audio) > 0:
		if !a.stt.Configured() {
			return nil, &UnavailableError{Service: "STT"}
		}
		transcript, err := a.stt.Transcribe(ctx, in.Audio, in.ContentType)
		if err != nil {
			var formatErr *stt.UnsupportedFormatError
			if errors.As(err, &formatErr) {
				return nil, err
			}
			logger.Error("transcription failed", "error", err)
			return a.fallback(ctx, out, sttFallbackMessage, KindSTTError, logger), nil
		}
		out.Transcript = transcript
		prompt = transcript
	case strings.TrimSpace(in.Text) != "":
		prompt = strings.TrimSpace(in.Text)
	default:
		return nil, ErrNoInput
	}

	response, err := a.llm.Generate(ctx, prompt, llm.Opts{
		Model:             in.Model,
		Temperature:       in.Temperature,
		SystemInstruction: in.SystemInstruction,
	})
	if err != nil {
		kind := llm.Classify(err.Error())
		logger.Error("response generation failed", "error", err, "kind", kind)
		return a.fallback(ctx, out, llm.FallbackText(kind), string(kind), logger), nil
	}
	out.ResponseText = response

	a.voice(ctx, out, logger)

	logger.Info("query pipeline complete", "has_audio", out.AudioURL != "")
	return out, nil
}

// voice synthesizes the primary response on the normal timeout tier.
// Failure here degrades to a text-only outcome: the text payload is
// already valid and is still delivered.
func (a *Agent) voice(ctx context.Context, out *Outcome, logger *slog.Logger) {
	if !a.tts.Configured() {
		out.TTSError = ttsNotConfiguredNote
		logger.Warn("tts not configured, delivering text only")
		return
	}
	url, err := a.tts.Synthesize(ctx, out.ResponseText, out.VoiceID)
	if err != nil {
		out.TTSError = ttsFailedNote
		logger.Warn("speech synthesis failed, delivering text only", "error", err)
		return
	}
	out.AudioURL = url
}

// fallback resolves the outcome with pre-authored substitute text and
// attempts to voice it on the short timeout tier. History is never
// touched: a failed attempt contributes no turns. If voicing also fails,
// the outcome is marked service-unavailable.
func (a *Agent) fallback(ctx context.Context, out *Outcome, message, kind string, logger *slog.Logger) *Outcome {
	out.IsFallback = true
	out.ErrorKind = kind
	out.ResponseText = message

	if a.tts.Configured() {
		url, err := a.tts.SynthesizeFallback(ctx, message, out.VoiceID)
		if err != nil {
			logger.Warn("fallback synthesis failed", "error", err, "kind", kind)
		} else {
			out.AudioURL = url
		}
	}
	if out.AudioURL == "" {
		out.ServiceUnavailable = true
	}
	if out.SessionID != "" {
		out.MessageCount = a.sessions.Count(out.SessionID)
	}
	logger.Info("fallback delivered", "kind", kind, "has_audio", out.AudioURL != "")
	return out
}
