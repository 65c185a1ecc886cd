// Package escalation pages a human operator when the orchestrator and the
// metering service have diverged views of state. Pages are never silently
// swallowed.
package escalation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a page.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Page is a single operator notification.
type Page struct {
	ID        string         `json:"id"`
	Severity  Severity       `json:"severity"`
	Summary   string         `json:"summary"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Pager delivers pages to an operator channel.
type Pager interface {
	Page(ctx context.Context, severity Severity, summary string, details map[string]any) error
}

// LogPager writes pages to the structured log at error level. It is the
// fallback sink when no paging endpoint is configured.
type LogPager struct {
	logger *slog.Logger
}

// NewLogPager creates a pager writing to the default logger.
func NewLogPager() *LogPager {
	return &LogPager{logger: slog.Default().With("component", "escalation")}
}

// Page implements Pager.
func (p *LogPager) Page(ctx context.Context, severity Severity, summary string, details map[string]any) error {
	p.logger.ErrorContext(ctx, "OPERATOR PAGE: "+summary,
		"severity", string(severity),
		"details", details,
	)
	return nil
}

// HTTPPager POSTs pages to an external paging endpoint.
type HTTPPager struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTPPager creates a pager targeting the given endpoint.
func NewHTTPPager(endpoint string) *HTTPPager {
	return &HTTPPager{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   slog.Default().With("component", "escalation"),
	}
}

// Page implements Pager.
func (p *HTTPPager) Page(ctx context.Context, severity Severity, summary string, details map[string]any) error {
	page := Page{
		ID:        uuid.New().String(),
		Severity:  severity,
		Summary:   summary,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("escalation: failed to marshal page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("escalation: failed to build page request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.ErrorContext(ctx, "page delivery failed, falling back to log",
			"summary", summary, "error", err)
		return fmt.Errorf("escalation: page delivery failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("escalation: paging endpoint returned %d", resp.StatusCode)
	}
	return nil
}
