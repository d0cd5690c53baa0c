// Package vision wraps a multimodal chat-completions API. The analyzer only
// depends on the Client interface so tests inject fakes.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Request describes one model invocation. Attachment, when set, is sent as a
// base64 data URL alongside the prompt; otherwise the prompt travels alone.
type Request struct {
	Prompt          string
	Attachment      []byte
	MimeType        string
	ResponseJSON    bool
	Temperature     float64
	MaxOutputTokens int
}

// Client generates text from a prompt with an optional binary attachment.
// Implementations return an error for transport, auth, quota and timeout
// failures; "call succeeded but output is not valid JSON" is the caller's
// problem to detect.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// HTTPClient talks to an OpenAI-compatible chat-completions endpoint.
type HTTPClient struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	log        *slog.Logger
}

func NewHTTPClient(baseURL, apiKey, model string, timeout time.Duration, log *slog.Logger) *HTTPClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &HTTPClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{},
		log:        log,
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *HTTPClient) Generate(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("vision api key is required")
	}

	rid := uuid.New().String()
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := map[string]any{
		"model":       c.model,
		"temperature": req.Temperature,
		"messages":    []map[string]any{{"role": "user", "content": c.userContent(req)}},
	}
	if req.ResponseJSON {
		payload["response_format"] = map[string]any{"type": "json_object"}
	}
	if req.MaxOutputTokens > 0 {
		payload["max_tokens"] = req.MaxOutputTokens
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	c.log.Info("vision.request",
		"req_id", rid,
		"model", c.model,
		"prompt_len", len(req.Prompt),
		"attachment_bytes", len(req.Attachment),
	)

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error("vision.send_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("unable to parse model response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if parsed.Error != nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("model request failed: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("model request failed with status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("model returned zero choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("model returned empty content")
	}

	c.log.Info("vision.response",
		"req_id", rid,
		"status", resp.StatusCode,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func (c *HTTPClient) userContent(req Request) any {
	if len(req.Attachment) == 0 {
		return req.Prompt
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(req.Attachment)

	if strings.HasPrefix(mimeType, "image/") {
		return []map[string]any{
			{"type": "text", "text": req.Prompt},
			{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
		}
	}
	return []map[string]any{
		{"type": "text", "text": req.Prompt},
		{"type": "file", "file": map[string]any{
			"filename":  "document.pdf",
			"file_data": dataURL,
		}},
	}
}
