package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

// ErrNotFound indicates the path does not exist in the store.
var ErrNotFound = errors.New("storage: not found")

// Gateway reads and writes repository files through the GitHub contents
// API, preferring unauthenticated raw fetches for reads.
type Gateway struct {
	cfg        *Config
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a new Gateway.
type Option func(*Gateway)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *Gateway) {
		if hc != nil {
			g.httpClient = hc
		}
	}
}

// WithLogger injects a custom logger (defaults to log.Default()).
func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGateway constructs a storage gateway for cfg.
func NewGateway(cfg *Config, opts ...Option) *Gateway {
	g := &Gateway{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SnapshotPath returns the store path for a (date, mode) pair.
func (g *Gateway) SnapshotPath(date, mode string) string {
	return g.cfg.SnapshotPath(date, mode)
}

// Dir returns the configured snapshot directory.
func (g *Gateway) Dir() string {
	return g.cfg.Dir
}

// DryRun reports whether the gateway lacks a write credential.
func (g *Gateway) DryRun() bool {
	return g.cfg.Token == ""
}

// Read fetches the raw bytes at path. It tries the raw content host
// first and falls back to the contents API on any failure.
func (g *Gateway) Read(ctx context.Context, path string) ([]byte, error) {
	path = strings.TrimLeft(path, "/")
	raw, rawErr := g.readRaw(ctx, path)
	if rawErr == nil {
		return raw, nil
	}
	body, apiErr := g.readViaAPI(ctx, path)
	if apiErr == nil {
		return body, nil
	}
	if errors.Is(rawErr, ErrNotFound) && errors.Is(apiErr, ErrNotFound) {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("storage: read %s: raw: %v; api: %w", path, rawErr, apiErr)
}

// ReadJSON fetches path and decodes it into out.
func (g *Gateway) ReadJSON(ctx context.Context, path string, out interface{}) error {
	body, err := g.Read(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("storage: decode %s: %w", path, err)
	}
	return nil
}

// Write upserts content at path with the given commit message. An
// existing file's blob sha is looked up first so the call becomes an
// update instead of a create. Without a token the write is skipped.
func (g *Gateway) Write(ctx context.Context, path string, content []byte, message string) error {
	path = strings.TrimLeft(path, "/")
	if g.DryRun() {
		g.logger.Printf("storage: dry-run, skipping write of %s (%d bytes)", path, len(content))
		return nil
	}

	sha, err := g.blobSHA(ctx, path)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("storage: lookup %s: %w", path, err)
	}

	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  g.cfg.Branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("storage: encode write payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, g.contentsURL(path, ""), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("storage: build write request: %w", err)
	}
	g.setAPIHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		// 409 means the sha went stale under us; the caller treats that
		// as fatal rather than retrying over a concurrent writer.
		return fmt.Errorf("storage: write %s: http status %d: %s", path, resp.StatusCode, string(detail))
	}
	g.logger.Printf("storage: wrote %s (%d bytes)", path, len(content))
	return nil
}

// List returns the file names directly under dir, or ErrNotFound when
// the directory does not exist.
func (g *Gateway) List(ctx context.Context, dir string) ([]string, error) {
	dir = strings.Trim(dir, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.contentsURL(dir, g.cfg.Branch), nil)
	if err != nil {
		return nil, fmt.Errorf("storage: build list request: %w", err)
	}
	g.setAPIHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storage: list %s: http status %d", dir, resp.StatusCode)
	}

	var entries []struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("storage: decode listing %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type == "file" {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

func (g *Gateway) readRaw(ctx context.Context, path string) ([]byte, error) {
	rawURL := fmt.Sprintf("%s/%s/%s/%s", g.cfg.RawBase, g.cfg.Repo, g.cfg.Branch, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (g *Gateway) readViaAPI(ctx context.Context, path string) ([]byte, error) {
	meta, err := g.contents(ctx, path)
	if err != nil {
		return nil, err
	}
	if meta.Encoding != "base64" {
		return nil, fmt.Errorf("unexpected encoding %q", meta.Encoding)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(meta.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return decoded, nil
}

// blobSHA returns the current revision token for path, or ErrNotFound.
func (g *Gateway) blobSHA(ctx context.Context, path string) (string, error) {
	meta, err := g.contents(ctx, path)
	if err != nil {
		return "", err
	}
	return meta.SHA, nil
}

type contentsResponse struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

func (g *Gateway) contents(ctx context.Context, path string) (*contentsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.contentsURL(path, g.cfg.Branch), nil)
	if err != nil {
		return nil, err
	}
	g.setAPIHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	var meta contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode contents: %w", err)
	}
	return &meta, nil
}

func (g *Gateway) contentsURL(path, ref string) string {
	u := fmt.Sprintf("%s/repos/%s/contents/%s", g.cfg.APIBase, g.cfg.Repo, path)
	if ref != "" {
		u += "?ref=" + url.QueryEscape(ref)
	}
	return u
}

func (g *Gateway) setAPIHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	if g.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.Token)
	}
}
