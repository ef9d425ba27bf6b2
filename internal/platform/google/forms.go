package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	apperrors "gemini-relay-bot/internal/common/errors"
	"gemini-relay-bot/internal/common/logger"
)

const defaultFormsBaseURL = "https://docs.google.com/forms/d/e"

// FormsClient submits responses to a public Google Form. Fields maps our keys
// to the form's entry ids, e.g. "nombre" -> "entry.123456".
type FormsClient struct {
	baseURL    string
	formID     string
	fields     map[string]string
	httpClient *http.Client
}

func NewFormsClient(formID string, fields map[string]string, httpClient *http.Client) *FormsClient {
	return NewFormsClientWithBaseURL(defaultFormsBaseURL, formID, fields, httpClient)
}

func NewFormsClientWithBaseURL(baseURL, formID string, fields map[string]string, httpClient *http.Client) *FormsClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	normalized := make(map[string]string, len(fields))
	for k, v := range fields {
		normalized[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return &FormsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		formID:     formID,
		fields:     normalized,
		httpClient: httpClient,
	}
}

func (c *FormsClient) Enabled() bool {
	return c.formID != "" && len(c.fields) > 0
}

// Submit posts the mapped subset of values. Keys without a form entry are
// skipped; it returns how many fields were sent.
func (c *FormsClient) Submit(ctx context.Context, values map[string]string) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}

	form := url.Values{}
	var skipped []string
	for key, value := range values {
		entry, ok := c.fields[strings.ToLower(strings.TrimSpace(key))]
		if !ok {
			skipped = append(skipped, key)
			continue
		}
		form.Set(entry, value)
	}
	if len(skipped) > 0 {
		sort.Strings(skipped)
		logger.Debug().Strs("keys", skipped).Msg("Form has no entry for keys")
	}
	if len(form) == 0 {
		return 0, nil
	}

	endpoint := fmt.Sprintf("%s/%s/formResponse", c.baseURL, url.PathEscape(c.formID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, apperrors.NewExternalError(apperrors.ErrCodeForms, "Google Forms", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apperrors.NewExternalError(apperrors.ErrCodeForms, "Google Forms", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return 0, apperrors.NewExternalError(apperrors.ErrCodeForms, "Google Forms", fmt.Errorf("status %d", resp.StatusCode)).
			WithDetail("status", resp.StatusCode)
	}

	return len(form), nil
}
