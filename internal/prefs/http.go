package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPStore talks to a pulseboard preference server (or the original
// workspace backend, which exposes the same document shape).
type HTTPStore struct {
	// BaseURL is the server root, e.g. "http://localhost:8395".
	BaseURL string
	// Client defaults to a client with a short timeout; saves are
	// best-effort and must not wedge the UI's event loop for long.
	Client *http.Client
}

const prefsPath = "/api/users/me/preferences"

func (s HTTPStore) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 5 * time.Second}
}

func (s HTTPStore) url() string {
	return strings.TrimRight(s.BaseURL, "/") + prefsPath
}

func (s HTTPStore) Read(ctx context.Context) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(), nil)
	if err != nil {
		return Document{}, err
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("read preferences: unexpected status %s", resp.Status)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return Document{}, fmt.Errorf("read preferences: malformed body: %w", err)
	}
	return fromRaw(raw), nil
}

func (s HTTPStore) Write(ctx context.Context, doc Document) error {
	keys, err := setKeys(doc)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	body, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, s.url(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client().Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("write preferences: unexpected status %s", resp.Status)
	}
	return nil
}
