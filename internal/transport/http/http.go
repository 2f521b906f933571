// Package http exposes the voiceagent pipelines over a REST API.
//
// This is the thin layer around the orchestrator: request parsing,
// multipart audio handling, and status-code mapping. Degraded results are
// distinguished from hard failures by explicit is_fallback and
// service_unavailable flags. A voiced fallback is still a successful
// delivery and returns 200.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/voiceagent/internal/agent"
	"github.com/nadzzz/voiceagent/internal/config"
	"github.com/nadzzz/voiceagent/internal/llm"
	"github.com/nadzzz/voiceagent/internal/stt"
	"github.com/nadzzz/voiceagent/internal/tts"
)

// maxTextLength bounds direct text inputs (TTS and one-shot queries).
const maxTextLength = 5000

// Server serves the REST API on a single port.
type Server struct {
	port           int
	maxUploadBytes int64
	defaults       requestDefaults

	agent *agent.Agent
	stt   stt.Service
	tts   tts.Service

	server *http.Server
}

type requestDefaults struct {
	model       string
	temperature float64
	voiceID     string
}

// New creates the API server over the orchestrator and gateways.
func New(cfg *config.Config, ag *agent.Agent, sttSvc stt.Service, ttsSvc tts.Service) *Server {
	return &Server{
		port:           cfg.Server.Port,
		maxUploadBytes: cfg.Server.MaxUploadBytes,
		defaults: requestDefaults{
			model:       cfg.LLM.Model,
			temperature: cfg.LLM.Temperature,
			voiceID:     cfg.TTS.VoiceID,
		},
		agent: ag,
		stt:   sttSvc,
		tts:   ttsSvc,
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /stt/transcribe", s.handleTranscribe)
	mux.HandleFunc("POST /tts/generate", s.handleGenerateSpeech)
	mux.HandleFunc("POST /llm/query", s.handleQuery)
	mux.HandleFunc("POST /agent/chat/{session_id}", s.handleChat)
	mux.HandleFunc("GET /agent/chat/stats", s.handleStats)
	mux.HandleFunc("GET /agent/chat/{session_id}/history", s.handleHistory)
	mux.HandleFunc("DELETE /agent/chat/{session_id}", s.handleClearSession)

	// Swagger UI, backed by the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

// Listen starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Listen(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("api server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		slog.Info("api server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("api listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (s *Server) Close() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// --- Wire types ---

type transcriptionResponse struct {
	Transcription string `json:"transcription"`
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	SizeBytes     int    `json:"size_bytes"`
}

type speechRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

type speechResponse struct {
	AudioURL string `json:"audio_url"`
	Text     string `json:"text"`
	VoiceID  string `json:"voiceId"`
}

type queryResponse struct {
	Transcription string `json:"transcription,omitempty"`
	LLMResponse   string `json:"llm_response"`
	AudioURL      string `json:"audio_url,omitempty"`
	Model         string `json:"model"`
	VoiceID       string `json:"voiceId"`
	Filename      string `json:"filename,omitempty"`
	IsFallback    bool   `json:"is_fallback,omitempty"`
	ErrorType     string `json:"error_type,omitempty"`
	TTSError      string `json:"tts_error,omitempty"`
}

type chatResponse struct {
	SessionID     string `json:"session_id"`
	Model         string `json:"model"`
	Transcription string `json:"transcription,omitempty"`
	LLMResponse   string `json:"llm_response"`
	AudioURL      string `json:"audio_url,omitempty"`
	VoiceID       string `json:"voiceId"`
	Filename      string `json:"filename,omitempty"`
	MessageCount  int    `json:"message_count"`
	IsFallback    bool   `json:"is_fallback,omitempty"`
	ErrorType     string `json:"error_type,omitempty"`
	TTSError      string `json:"tts_error,omitempty"`
}

type errorResponse struct {
	Error              string `json:"error"`
	ErrorType          string `json:"error_type,omitempty"`
	FallbackText       string `json:"fallback_text,omitempty"`
	ServiceType        string `json:"service_type,omitempty"`
	ServiceUnavailable bool   `json:"service_unavailable,omitempty"`
}

// --- Handlers ---

// handleTranscribe processes POST /stt/transcribe.
//
// @Summary     Transcribe an audio file
// @Description Uploads an audio file and returns its transcript.
// @Tags        stt
// @Accept      multipart/form-data
// @Produce     json
// @Param       file  formData  file  true  "Audio file (webm, wav, mp3, m4a, ogg, opus)"
// @Success     200  {object}  transcriptionResponse
// @Failure     400  {object}  errorResponse  "Unsupported audio format"
// @Failure     502  {object}  errorResponse  "Transcription failed"
// @Failure     503  {object}  errorResponse  "STT service not configured"
// @Router      /stt/transcribe [post]
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	audio, filename, contentType, ok := s.readAudioFile(w, r)
	if !ok {
		return
	}
	if !stt.ValidFormat(contentType) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:       fmt.Sprintf("unsupported file type: %s. Allowed types: %s", contentType, strings.Join(stt.AllowedFormats(), ", ")),
			ServiceType: "STT",
		})
		return
	}
	if !s.stt.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:       "Transcription service unavailable - API key not configured",
			ServiceType: "STT",
		})
		return
	}

	transcript, err := s.stt.Transcribe(r.Context(), audio, contentType)
	if err != nil {
		slog.Error("transcription failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "Transcription failed", ServiceType: "STT"})
		return
	}

	writeJSON(w, http.StatusOK, transcriptionResponse{
		Transcription: transcript,
		Filename:      filename,
		ContentType:   contentType,
		SizeBytes:     len(audio),
	})
}

// handleGenerateSpeech processes POST /tts/generate.
//
// @Summary     Generate audio from text
// @Description Converts text to speech and returns a URL to the audio file.
// @Tags        tts
// @Accept      json
// @Produce     json
// @Param       request  body  speechRequest  true  "Text and voice id"
// @Success     200  {object}  speechResponse
// @Failure     400  {object}  errorResponse  "Empty or oversized text"
// @Failure     502  {object}  errorResponse  "Speech generation failed"
// @Failure     503  {object}  errorResponse  "TTS service not configured"
// @Router      /tts/generate [post]
func (s *Server) handleGenerateSpeech(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}
	if len(req.Text) > maxTextLength {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("text exceeds maximum length of %d characters", maxTextLength),
		})
		return
	}
	if req.VoiceID == "" {
		req.VoiceID = s.defaults.voiceID
	}
	if !s.tts.Configured() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:        "TTS service unavailable - API key not configured",
			FallbackText: req.Text,
			ServiceType:  "TTS",
		})
		return
	}

	audioURL, err := s.tts.Synthesize(r.Context(), req.Text, req.VoiceID)
	if err != nil {
		slog.Error("speech generation failed", "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:        "Failed to generate audio",
			FallbackText: req.Text,
			ServiceType:  "TTS",
		})
		return
	}

	writeJSON(w, http.StatusOK, speechResponse{AudioURL: audioURL, Text: req.Text, VoiceID: req.VoiceID})
}

// handleQuery processes POST /llm/query (one-shot pipeline).
//
// @Summary     Query the LLM with text or audio input
// @Description Runs the one-shot pipeline: optional transcription, response generation, optional voicing.
// @Tags        llm
// @Accept      multipart/form-data
// @Produce     json
// @Param       file                formData  file    false  "Audio file to transcribe"
// @Param       text                formData  string  false  "Direct text input (used when no file is sent)"
// @Param       model               formData  string  false  "Model name"
// @Param       temperature         formData  number  false  "Sampling temperature in [0, 2]"
// @Param       system_instruction  formData  string  false  "System instruction"
// @Param       voiceId             formData  string  false  "Voice id for the spoken response"
// @Success     200  {object}  queryResponse
// @Failure     400  {object}  errorResponse  "Invalid input"
// @Failure     503  {object}  errorResponse  "Required service not configured"
// @Router      /llm/query [post]
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid form: " + err.Error()})
		return
	}

	in := agent.QueryInput{
		Text:              r.FormValue("text"),
		Model:             formValueOr(r, "model", s.defaults.model),
		SystemInstruction: r.FormValue("system_instruction"),
		VoiceID:           formValueOr(r, "voiceId", s.defaults.voiceID),
	}
	if len(in.Text) > maxTextLength {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("text exceeds maximum length of %d characters", maxTextLength),
		})
		return
	}

	temperature, ok := s.parseTemperature(w, r)
	if !ok {
		return
	}
	in.Temperature = temperature

	var filename string
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		audio, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reading audio: " + err.Error()})
			return
		}
		in.Audio = audio
		in.ContentType = header.Header.Get("Content-Type")
		filename = header.Filename
	}

	out, err := s.agent.Query(r.Context(), in)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	if out.IsFallback && out.ServiceUnavailable {
		writeServiceUnavailable(w, out)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Transcription: out.Transcript,
		LLMResponse:   out.ResponseText,
		AudioURL:      out.AudioURL,
		Model:         out.Model,
		VoiceID:       out.VoiceID,
		Filename:      filename,
		IsFallback:    out.IsFallback,
		ErrorType:     out.ErrorKind,
		TTSError:      out.TTSError,
	})
}

// handleChat processes POST /agent/chat/{session_id} (session pipeline).
//
// @Summary     Chat with session history
// @Description Runs the session pipeline: transcription, history-conditioned response, voicing.
// @Tags        chat
// @Accept      multipart/form-data
// @Produce     json
// @Param       session_id   path      string  true   "Session identifier"
// @Param       file         formData  file    true   "Audio file with the user's voice input"
// @Param       model        formData  string  false  "Model name"
// @Param       temperature  formData  number  false  "Sampling temperature in [0, 2]"
// @Param       voiceId      formData  string  false  "Voice id for the spoken response"
// @Success     200  {object}  chatResponse
// @Failure     400  {object}  errorResponse  "Invalid input"
// @Failure     503  {object}  errorResponse  "Required service not configured or fallback could not be voiced"
// @Router      /agent/chat/{session_id} [post]
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")

	audio, filename, contentType, ok := s.readAudioFile(w, r)
	if !ok {
		return
	}

	temperature, ok := s.parseTemperature(w, r)
	if !ok {
		return
	}
	opts := agent.ChatOpts{
		Model:       formValueOr(r, "model", s.defaults.model),
		Temperature: temperature,
		VoiceID:     formValueOr(r, "voiceId", s.defaults.voiceID),
	}

	out, err := s.agent.Chat(r.Context(), sessionID, audio, contentType, opts)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}
	if out.IsFallback && out.ServiceUnavailable {
		writeServiceUnavailable(w, out)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:     out.SessionID,
		Model:         out.Model,
		Transcription: out.Transcript,
		LLMResponse:   out.ResponseText,
		AudioURL:      out.AudioURL,
		VoiceID:       out.VoiceID,
		Filename:      filename,
		MessageCount:  out.MessageCount,
		IsFallback:    out.IsFallback,
		ErrorType:     out.ErrorKind,
		TTSError:      out.TTSError,
	})
}

// handleHistory processes GET /agent/chat/{session_id}/history.
//
// @Summary     Get chat session history
// @Tags        chat
// @Produce     json
// @Param       session_id  path  string  true  "Session identifier"
// @Success     200  {object}  map[string]any
// @Router      /agent/chat/{session_id}/history [get]
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	sessions := s.agent.Sessions()
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":    sessionID,
		"message_count": sessions.Count(sessionID),
		"history":       sessions.History(sessionID),
	})
}

// handleClearSession processes DELETE /agent/chat/{session_id}.
//
// @Summary     Clear a chat session
// @Tags        chat
// @Produce     json
// @Param       session_id  path  string  true  "Session identifier"
// @Success     200  {object}  map[string]string
// @Failure     404  {object}  errorResponse  "Session not found"
// @Router      /agent/chat/{session_id} [delete]
func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if !s.agent.Sessions().Delete(sessionID) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s cleared successfully", sessionID),
	})
}

// handleStats processes GET /agent/chat/stats.
//
// @Summary     Get aggregate chat statistics
// @Tags        chat
// @Produce     json
// @Success     200  {object}  map[string]any
// @Router      /agent/chat/stats [get]
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	sessions := s.agent.Sessions()
	writeJSON(w, http.StatusOK, map[string]any{
		"statistics":      sessions.Stats(),
		"active_sessions": sessions.Sessions(),
	})
}

// --- Helpers ---

// readAudioFile extracts the uploaded "file" form field. On failure it has
// already written the error response and returns ok=false.
func (s *Server) readAudioFile(w http.ResponseWriter, r *http.Request) (audio []byte, filename, contentType string, ok bool) {
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid form: " + err.Error()})
		return nil, "", "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "audio file is required"})
		return nil, "", "", false
	}
	defer file.Close()

	audio, err = io.ReadAll(io.LimitReader(file, s.maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reading audio: " + err.Error()})
		return nil, "", "", false
	}
	return audio, header.Filename, header.Header.Get("Content-Type"), true
}

func (s *Server) parseTemperature(w http.ResponseWriter, r *http.Request) (float64, bool) {
	raw := r.FormValue("temperature")
	if raw == "" {
		return s.defaults.temperature, true
	}
	temperature, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid temperature: " + raw})
		return 0, false
	}
	return temperature, true
}

// writePipelineError maps orchestrator errors to status codes:
// client-input errors to 400, unconfigured dependencies to 503.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	var unavailable *agent.UnavailableError
	if errors.As(err, &unavailable) {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:       unavailable.Error(),
			ServiceType: unavailable.Service,
		})
		return
	}

	var formatErr *stt.UnsupportedFormatError
	var rangeErr *llm.TemperatureRangeError
	if errors.As(err, &formatErr) || errors.As(err, &rangeErr) || errors.Is(err, agent.ErrNoInput) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	slog.Error("pipeline error", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

// writeServiceUnavailable reports a fallback that could not be voiced.
func writeServiceUnavailable(w http.ResponseWriter, out *agent.Outcome) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{
		Error:              out.ResponseText,
		ErrorType:          out.ErrorKind,
		FallbackText:       out.ResponseText,
		ServiceUnavailable: true,
	})
}

func formValueOr(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
