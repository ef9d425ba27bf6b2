// Package gemini calls the Gemini generateContent REST endpoint. Replies are
// returned raw; turning them into text is the extraction package's job.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/common/logger"
)

const (
	serviceName  = "Gemini"
	maxReplySize = 4 << 20

	// the key never goes into the URL, which ends up in error text
	apiKeyHeader = "x-goog-api-key"
)

var ErrNotConfigured = errors.New("gemini api key is not configured")

type Config struct {
	APIKey       string
	Model        string
	BaseURL      string
	ImageTimeout time.Duration
	TextTimeout  time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, httpClient: httpClient}
}

func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// AnalyzeImage sends an image with an instruction prompt.
func (c *Client) AnalyzeImage(ctx context.Context, image []byte, mimeType, prompt string) (json.RawMessage, error) {
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}
	req := generateRequest{Contents: []content{{Parts: []part{
		{Text: prompt},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
	}}}}
	return c.generate(ctx, req, c.cfg.ImageTimeout)
}

// GenerateText sends a text-only prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (json.RawMessage, error) {
	req := generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}}
	return c.generate(ctx, req, c.cfg.TextTimeout)
}

// generate makes exactly one attempt; failed calls are reported, never retried.
func (c *Client) generate(ctx context.Context, body generateRequest, timeout time.Duration) (json.RawMessage, error) {
	if !c.Enabled() {
		return nil, apperrors.NewExternalError(apperrors.ErrCodeGemini, serviceName, ErrNotConfigured)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.NewExternalError(apperrors.ErrCodeGemini, serviceName, fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.NewExternalError(apperrors.ErrCodeGemini, serviceName, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError(apperrors.ErrCodeGemini, serviceName, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return nil, apperrors.NewExternalError(apperrors.ErrCodeGemini, serviceName, fmt.Errorf("failed to read response: %w", err))
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Int("bytes", len(raw)).
		Msg("Gemini response received")

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalError(apperrors.ErrCodeGemini, serviceName, statusError(resp.StatusCode, raw)).
			WithDetail("status", resp.StatusCode)
	}

	if !json.Valid(raw) {
		return nil, apperrors.NewExternalError(apperrors.ErrCodeGemini, serviceName, errors.New("response is not valid JSON"))
	}
	return json.RawMessage(raw), nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.cfg.BaseURL, url.PathEscape(c.cfg.Model))
}

func statusError(status int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("status %d: %s", status, apiErr.Error.Message)
	}
	text := string(body)
	if len(text) > 200 {
		text = text[:200]
	}
	return fmt.Errorf("status %d: %s", status, text)
}
