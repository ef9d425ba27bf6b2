package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

var serviceAccountScopes = []string{
	"https://www.googleapis.com/auth/script.external_request",
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

const (
	StatusNotConfigured = "not_configured"
	StatusLoaded        = "loaded"
)

// ServiceAccount is the outcome of loading the optional credentials file.
// Client is nil unless Status is StatusLoaded.
type ServiceAccount struct {
	Client *http.Client
	Email  string
	Status string
}

// LoadServiceAccount reads a service account key file and returns an HTTP
// client that attaches OAuth2 tokens. An empty path is not an error.
func LoadServiceAccount(ctx context.Context, path string, timeout time.Duration) (ServiceAccount, error) {
	if path == "" {
		return ServiceAccount{Status: StatusNotConfigured}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ServiceAccount{Status: "error: file not readable"}, fmt.Errorf("failed to read service account file: %w", err)
	}

	creds, err := googleoauth.CredentialsFromJSON(ctx, data, serviceAccountScopes...)
	if err != nil {
		return ServiceAccount{Status: "error: invalid credentials"}, fmt.Errorf("failed to parse service account file: %w", err)
	}

	var meta struct {
		ClientEmail string `json:"client_email"`
	}
	_ = json.Unmarshal(data, &meta)

	client := oauth2.NewClient(ctx, creds.TokenSource)
	client.Timeout = timeout

	return ServiceAccount{Client: client, Email: meta.ClientEmail, Status: StatusLoaded}, nil
}
