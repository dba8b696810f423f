package services

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/cfx/internal/shared"
)

const defaultMediaURL string = "https://video.candfans.jp"

// MediaService fetches asset bytes from the media host without credentials.
type MediaService struct {
	baseURL    string
	httpClient *http.Client
}

// NewMediaService creates a media fetcher for baseURL.
func NewMediaService(baseURL string, client *http.Client) *MediaService {
	if baseURL == "" {
		baseURL = defaultMediaURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &MediaService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
	}
}

// URL returns the absolute media URL for reference.
func (m *MediaService) URL(reference string) string {
	if !strings.HasPrefix(reference, "/") {
		reference = "/" + reference
	}
	return m.baseURL + reference
}

// Fetch GETs the asset and returns its full body.
func (m *MediaService) Fetch(ctx context.Context, reference string) ([]byte, error) {
	target := m.URL(reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &shared.TransportError{Op: "request", URL: target, Err: err}
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, &shared.TransportError{Op: "request", URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, &shared.TransportError{Op: "status", URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &shared.TransportError{Op: "read", URL: target, StatusCode: resp.StatusCode, Err: err}
	}

	return body, nil
}
