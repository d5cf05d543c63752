// Package gateway fetches universal reference content, cache first:
// Redis, then the hosted content API, then the locally installed
// reference directory. The hosted API is optional; with no API key the
// gateway serves from cache and disk only.
package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"localfile/internal/faults"
)

type Service struct {
	cache      Cache
	httpClient *http.Client
	apiURL     string
	apiKey     string
	localDir   string
	logger     *zap.Logger
}

type Options struct {
	// Cache may be nil; the gateway then runs uncached.
	Cache    Cache
	APIURL   string
	APIKey   string
	LocalDir string
	Logger   *zap.Logger
}

func New(opts Options) *Service {
	cache := opts.Cache
	if cache == nil {
		cache = nopCache{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cache:      cache,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiURL:     strings.TrimSuffix(opts.APIURL, "/"),
		apiKey:     opts.APIKey,
		localDir:   opts.LocalDir,
		logger:     logger,
	}
}

// Fetch returns the content for one reference path, e.g.
// "preamble/objective".
func (s *Service) Fetch(ctx context.Context, path string) (string, error) {
	if content, ok, err := s.cache.Get(ctx, path); err != nil {
		s.logger.Warn("content cache unavailable", zap.String("path", path), zap.Error(err))
	} else if ok {
		s.logger.Debug("content cache hit", zap.String("path", path))
		return content, nil
	}

	if s.apiURL != "" && s.apiKey != "" {
		content, err := s.fetchRemote(ctx, path)
		if err == nil {
			if cerr := s.cache.Set(ctx, path, content); cerr != nil {
				s.logger.Warn("content cache write failed", zap.String("path", path), zap.Error(cerr))
			}
			return content, nil
		}
		s.logger.Warn("content api fetch failed, falling back to disk",
			zap.String("path", path), zap.Error(err))
	}

	return s.fetchLocal(path)
}

func (s *Service) fetchRemote(ctx context.Context, path string) (string, error) {
	url := fmt.Sprintf("%s/content/%s", s.apiURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build content request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("content api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", faults.NotFound(path, "content api has no such reference")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("content api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read content body: %w", err)
	}
	return string(body), nil
}

func (s *Service) fetchLocal(path string) (string, error) {
	if s.localDir == "" {
		return "", faults.NotFound(path, "no local reference directory configured")
	}
	full := filepath.Join(s.localDir, filepath.FromSlash(path)+".md")
	raw, err := os.ReadFile(full)
	if err != nil {
		return "", faults.NotFound(path, "reference not available locally: %v", err)
	}
	return string(raw), nil
}

// CacheStatus reports how many reference entries are cached.
func (s *Service) CacheStatus(ctx context.Context) (int, error) {
	return s.cache.Len(ctx)
}

// ClearCache drops every cached reference entry.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}
