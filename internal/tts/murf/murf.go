// Package murf implements the tts.Service interface using the Murf AI
// speech generation REST API.
package murf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nadzzz/voiceagent/internal/config"
	"github.com/nadzzz/voiceagent/internal/tts"
)

const generatePath = "/v1/speech/generate"

// Client implements tts.Service against the Murf API.
type Client struct {
	apiKey         string
	baseURL        string
	defaultVoice   string
	maxChars       int
	client         *http.Client // normal tier
	fallbackClient *http.Client // short tier for error narration
}

// New creates a new Murf client from config.
func New(cfg config.TTSConfig) *Client {
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = 3000
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	fallbackTimeout := cfg.FallbackTimeout
	if fallbackTimeout <= 0 {
		fallbackTimeout = 5 * time.Second
	}
	return &Client{
		apiKey:         cfg.APIKey,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		defaultVoice:   cfg.VoiceID,
		maxChars:       maxChars,
		client:         &http.Client{Timeout: timeout},
		fallbackClient: &http.Client{Timeout: fallbackTimeout},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Synthesize voices text on the normal timeout tier.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	return c.generate(ctx, c.client, text, voiceID)
}

// SynthesizeFallback voices error narration on the short timeout tier.
func (c *Client) SynthesizeFallback(ctx context.Context, text, voiceID string) (string, error) {
	return c.generate(ctx, c.fallbackClient, text, voiceID)
}

func (c *Client) generate(ctx context.Context, client *http.Client, text, voiceID string) (string, error) {
	if !c.Configured() {
		return "", tts.ErrNotConfigured
	}
	if voiceID == "" {
		voiceID = c.defaultVoice
	}

	if len(text) > c.maxChars {
		original := len(text)
		text = tts.Truncate(text, c.maxChars)
		slog.Warn("text truncated for synthesis", "from", original, "to", len(text))
	}

	body, err := json.Marshal(map[string]string{
		"text":    text,
		"voiceId": voiceID,
		"format":  "mp3",
	})
	if err != nil {
		return "", fmt.Errorf("marshalling speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.apiKey)

	slog.Debug("tts generate request", "voice", voiceID, "text_length", len(text))

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", fmt.Errorf("speech request timeout: %w", err)
		}
		return "", fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("speech generation failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		AudioFile string `json:"audioFile"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding speech response: %w", err)
	}
	if result.AudioFile == "" {
		return "", errors.New("speech response missing audioFile URL")
	}

	slog.Debug("tts generate complete", "audio_url", result.AudioFile)
	return result.AudioFile, nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
