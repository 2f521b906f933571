// Package gemini implements the llm.Service interface using the Google
// Gemini generateContent REST API.
package gemini

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
	"github.com/nadzzz/voiceagent/internal/conversation"
	"github.com/nadzzz/voiceagent/internal/llm"
)

// Client implements llm.Service against the Gemini API.
type Client struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
}

// New creates a new Gemini client from config.
func New(cfg config.LLMConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		defaultModel: model,
		client:       &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// Generate produces a response for a single prompt, applying the optional
// system instruction.
func (c *Client) Generate(ctx context.Context, prompt string, opts llm.Opts) (string, error) {
	return c.generate(ctx, llm.BuildPrompt(prompt, opts.SystemInstruction), opts)
}

// GenerateConversation produces a response conditioned on turn history.
func (c *Client) GenerateConversation(ctx context.Context, history []conversation.Turn, opts llm.Opts) (string, error) {
	return c.generate(ctx, llm.BuildConversationPrompt(history), opts)
}

func (c *Client) generate(ctx context.Context, fullPrompt string, opts llm.Opts) (string, error) {
	if !c.Configured() {
		return "", llm.ErrNotConfigured
	}
	if !llm.ValidTemperature(opts.Temperature) {
		return "", &llm.TemperatureRangeError{Temperature: opts.Temperature}
	}

	model := opts.Model
	if model == "" {
		model = c.defaultModel
	}

	reqBody := generateRequest{
		Contents: []content{
			{Parts: []part{{Text: fullPrompt}}},
		},
		GenerationConfig: &generationConfig{Temperature: opts.Temperature},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling generate request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	slog.Debug("llm generate request", "model", model, "prompt_length", len(fullPrompt))

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return "", fmt.Errorf("generate request timeout: %w", err)
		}
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("generate failed (status %d): %s", resp.StatusCode, respBody)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding generate response: %w", err)
	}

	text := extractText(&genResp)
	if text == "" {
		return "", errors.New("llm returned empty response")
	}

	slog.Debug("llm generate complete", "response_length", len(text))
	return text, nil
}

// --- Internal types and helpers ---

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Text       string `json:"text"` // some API versions surface a direct text field
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// extractText pulls the response text from the result in priority order:
// the direct text field first, else the joined parts of all candidates.
// An empty result after both attempts is a failure, not a valid answer.
func extractText(resp *generateResponse) string {
	if t := strings.TrimSpace(resp.Text); t != "" {
		return t
	}

	var pieces []string
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				pieces = append(pieces, p.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(pieces, "\n"))
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
