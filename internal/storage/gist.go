package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const gistTimeout = 15 * time.Second

var gistAPIURL = "https://api.github.com/gists"

// GistStore keeps every artifact as a file of one GitHub Gist. The Gist has a single
// update time, so ModTime reports it for every file that exists.
type GistStore struct {
	gistID      string
	githubToken string
	httpClient  *http.Client
}

type gistFile struct {
	Content string `json:"content"`
}

type gist struct {
	UpdatedAt time.Time           `json:"updated_at"`
	Files     map[string]gistFile `json:"files"`
}

// NewGistStore creates a store backed by an existing Gist.
func NewGistStore(gistID, githubToken string) (*GistStore, error) {
	if gistID == "" {
		return nil, fmt.Errorf("gist ID is required")
	}
	if githubToken == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	return &GistStore{
		gistID:      gistID,
		githubToken: githubToken,
		httpClient: &http.Client{
			Timeout: gistTimeout,
		},
	}, nil
}

func (g *GistStore) fetch(ctx context.Context) (*gist, error) {
	url := fmt.Sprintf("%s/%s", gistAPIURL, g.gistID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	g.headers(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Don't include response body in error to prevent information leakage
		return nil, fmt.Errorf("GitHub API error (status %d)", resp.StatusCode)
	}

	var out gist
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding gist response: %w", err)
	}
	return &out, nil
}

// Save replaces the named file in the Gist.
func (g *GistStore) Save(ctx context.Context, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	payload := map[string]interface{}{
		"files": map[string]gistFile{
			name: {Content: string(data)},
		},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s", gistAPIURL, g.gistID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	g.headers(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("updating gist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub API error (status %d)", resp.StatusCode)
	}
	return nil
}

// Load decodes the named file of the Gist.
func (g *GistStore) Load(ctx context.Context, name string, v any) error {
	out, err := g.fetch(ctx)
	if err != nil {
		return err
	}
	file, ok := out.Files[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err := json.Unmarshal([]byte(file.Content), v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// ModTime returns the Gist's update time when the named file exists.
func (g *GistStore) ModTime(ctx context.Context, name string) (time.Time, error) {
	out, err := g.fetch(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if _, ok := out.Files[name]; !ok {
		return time.Time{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return out.UpdatedAt, nil
}

func (g *GistStore) headers(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("token %s", g.githubToken))
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}
