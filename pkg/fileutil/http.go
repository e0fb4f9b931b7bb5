package fileutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"time"
)

// DefaultHTTPTimeout bounds a single sample-file download.
const DefaultHTTPTimeout = 60 * time.Second

// HTTPFS reads files relative to a base URL.
// Directory listing is not available over HTTP.
type HTTPFS struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFS creates an HTTPFS rooted at baseURL.
// A nil client gets a default client with DefaultHTTPTimeout.
func NewHTTPFS(baseURL string, client *http.Client) *HTTPFS {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPFS{baseURL: baseURL, client: client}
}

func (h *HTTPFS) ReadFile(name string) ([]byte, error) {
	u, err := url.JoinPath(h.baseURL, cleanName(name))
	if err != nil {
		return nil, fmt.Errorf("invalid URL for %s: %w", name, err)
	}

	resp, err := h.client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("failed to fetch %s: %s", u, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", u, err)
	}
	return data, nil
}

func (h *HTTPFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return nil, fmt.Errorf("%w: directory listing over HTTP (%s)", errors.ErrUnsupported, name)
}

func (h *HTTPFS) BasePath() string {
	return h.baseURL
}
