// Package syncapi pushes deliverable status summaries to the firm's
// practice-management endpoint after an assembly pass.
package syncapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"localfile/internal/assemble"
)

// Summary is the payload posted per deliverable.
type Summary struct {
	Entity        string `json:"entity"`
	FiscalYear    string `json:"fiscal_year"`
	Stage         string `json:"stage"`
	SectionsTotal int    `json:"sections_total"`
	ReviewedPct   int    `json:"reviewed_pct"`
	SignedOffPct  int    `json:"signed_off_pct"`
	GeneratedAt   string `json:"generated_at"`
}

type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	logger     *zap.Logger
}

func New(url, apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        url,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// SummaryFromViewModel extracts the posted fields from one pass.
func SummaryFromViewModel(vm *assemble.ViewModel) Summary {
	return Summary{
		Entity:        vm.Document.Entity,
		FiscalYear:    vm.Document.FiscalYear,
		Stage:         vm.Document.Stage,
		SectionsTotal: vm.Progress.SectionsTotal,
		ReviewedPct:   vm.Progress.ReviewedPct,
		SignedOffPct:  vm.Progress.SignedOffPct,
		GeneratedAt:   vm.GeneratedAt,
	}
}

// Push posts one summary. Non-2xx responses are errors carrying an
// excerpt of the response body.
func (c *Client) Push(ctx context.Context, s Summary) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sync request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sync request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sync endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(excerpt))
	}

	c.logger.Info("pushed deliverable summary",
		zap.String("entity", s.Entity),
		zap.String("fiscal_year", s.FiscalYear),
		zap.String("stage", s.Stage))
	return nil
}
