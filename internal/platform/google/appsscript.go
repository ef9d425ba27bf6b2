package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "gemini-relay-bot/internal/common/errors"
)

const appsScriptService = "Apps Script"

// Row is one record appended to the spreadsheet behind the Apps Script web app.
type Row struct {
	UserID    int64             `json:"user_id"`
	Username  string            `json:"username,omitempty"`
	Source    string            `json:"source"`
	Fields    map[string]string `json:"fields"`
	Raw       string            `json:"raw"`
	Timestamp time.Time         `json:"timestamp"`
}

type AppsScriptClient struct {
	url        string
	httpClient *http.Client
}

// NewAppsScriptClient posts to a deployed web app. Pass the service account
// client when the deployment requires authenticated callers.
func NewAppsScriptClient(url string, httpClient *http.Client) *AppsScriptClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AppsScriptClient{url: url, httpClient: httpClient}
}

func (c *AppsScriptClient) Enabled() bool {
	return c.url != ""
}

type scriptReply struct {
	Status string `json:"status"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

func (c *AppsScriptClient) Append(ctx context.Context, row Row) error {
	if !c.Enabled() {
		return nil
	}

	payload, err := json.Marshal(row)
	if err != nil {
		return apperrors.NewExternalError(apperrors.ErrCodeAppsScript, appsScriptService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return apperrors.NewExternalError(apperrors.ErrCodeAppsScript, appsScriptService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewExternalError(apperrors.ErrCodeAppsScript, appsScriptService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apperrors.NewExternalError(apperrors.ErrCodeAppsScript, appsScriptService, err)
	}

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewExternalError(apperrors.ErrCodeAppsScript, appsScriptService, fmt.Errorf("status %d", resp.StatusCode)).
			WithDetail("status", resp.StatusCode)
	}

	// scripts that answer with plain text are treated as success
	var reply scriptReply
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil
	}
	if strings.EqualFold(reply.Status, "error") || strings.EqualFold(reply.Result, "error") {
		msg := reply.Error
		if msg == "" {
			msg = "script reported an error"
		}
		return apperrors.NewExternalError(apperrors.ErrCodeAppsScript, appsScriptService, fmt.Errorf("%s", msg))
	}
	return nil
}
