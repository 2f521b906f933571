// Package assemblyai implements the stt.Service interface using the
// AssemblyAI REST API.
//
// Transcription is a three-step flow: upload the raw audio bytes, create a
// transcript job referencing the uploaded file, then poll the job until it
// reaches a terminal status.
package assemblyai

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
	"github.com/nadzzz/voiceagent/internal/stt"
)

// Client implements stt.Service against the AssemblyAI API.
type Client struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	client       *http.Client
}

// New creates a new AssemblyAI client from config.
func New(cfg config.STTConfig) *Client {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		pollInterval: interval,
		client:       &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Transcribe converts audio bytes to text via upload → create → poll.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	if !stt.ValidFormat(contentType) {
		return "", &stt.UnsupportedFormatError{ContentType: contentType}
	}
	if !c.Configured() {
		return "", stt.ErrNotConfigured
	}

	slog.Debug("uploading audio for transcription", "bytes", len(audio), "content_type", contentType)

	audioURL, err := c.upload(ctx, audio)
	if err != nil {
		return "", err
	}

	id, err := c.createTranscript(ctx, audioURL)
	if err != nil {
		return "", err
	}

	text, err := c.pollTranscript(ctx, id)
	if err != nil {
		return "", err
	}

	// A "successful" empty transcript is useless to the pipeline.
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("transcription returned empty result")
	}

	slog.Debug("transcription complete", "text_length", len(text))
	return text, nil
}

func (c *Client) upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/upload", bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", wrapTransport("upload", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		UploadURL string `json:"upload_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding upload response: %w", err)
	}
	if result.UploadURL == "" {
		return "", errors.New("upload response missing upload_url")
	}
	return result.UploadURL, nil
}

func (c *Client) createTranscript(ctx context.Context, audioURL string) (string, error) {
	body, err := json.Marshal(map[string]string{"audio_url": audioURL})
	if err != nil {
		return "", fmt.Errorf("marshalling transcript request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating transcript request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", wrapTransport("transcript create", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("transcript create failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding transcript response: %w", err)
	}
	if result.ID == "" {
		return "", errors.New("transcript response missing id")
	}
	return result.ID, nil
}

func (c *Client) pollTranscript(ctx context.Context, id string) (string, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, text, cause, err := c.fetchTranscript(ctx, id)
		if err != nil {
			return "", err
		}

		switch status {
		case "completed":
			return text, nil
		case "error":
			return "", fmt.Errorf("transcription failed: %s", cause)
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("transcription timeout: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) fetchTranscript(ctx context.Context, id string) (status, text, cause string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/transcript/"+id, nil)
	if err != nil {
		return "", "", "", fmt.Errorf("creating poll request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", "", wrapTransport("transcript poll", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", "", "", fmt.Errorf("transcript poll failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Status string `json:"status"`
		Text   string `json:"text"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", "", fmt.Errorf("decoding poll response: %w", err)
	}
	return result.Status, result.Text, result.Error, nil
}

// wrapTransport labels timeouts explicitly so downstream classification
// recognizes them as network failures.
func wrapTransport(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return fmt.Errorf("%s request timeout: %w", op, err)
	}
	return fmt.Errorf("%s request: %w", op, err)
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
