// Package mjml wraps the MJML render HTTP API. The markup-to-HTML
// conversion itself is treated as an external, already-correct
// transformation; this package only calls it and surfaces diagnostics.
package mjml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/draftdeck/draftdeck/internal/config"
	"github.com/draftdeck/draftdeck/internal/logger"
)

// Diagnostic is a non-fatal issue reported by the MJML engine. Email clients
// tolerate many markup problems, so diagnostics never block a preview.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
	TagName string `json:"tagName"`
}

func (d Diagnostic) String() string {
	if d.TagName != "" {
		return fmt.Sprintf("line %d <%s>: %s", d.Line, d.TagName, d.Message)
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// Result is the outcome of a render call.
type Result struct {
	HTML   string
	Errors []Diagnostic
}

// Client talks to an MJML render endpoint.
type Client struct {
	baseURL string
	appID   string
	secret  string
	client  *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg config.MJMLConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		appID:   cfg.AppID,
		secret:  cfg.Secret,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type renderRequest struct {
	MJML string `json:"mjml"`
}

type renderResponse struct {
	HTML   string       `json:"html"`
	Errors []Diagnostic `json:"errors"`
}

// Compile converts a complete MJML document into email-client-safe HTML.
// Engine diagnostics are returned (and logged) as warnings; only transport
// failures and empty output are fatal.
func (c *Client) Compile(ctx context.Context, markup string) (Result, error) {
	body, err := json.Marshal(renderRequest{MJML: markup})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.appID != "" {
		req.SetBasicAuth(c.appID, c.secret)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("mjml: render request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("mjml: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("mjml: render failed with status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed renderResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Result{}, fmt.Errorf("mjml: decode response: %w", err)
	}
	if parsed.HTML == "" {
		return Result{}, fmt.Errorf("mjml: engine returned empty HTML")
	}

	for _, diag := range parsed.Errors {
		logger.Warn("[MJML] %s", diag)
	}

	return Result{HTML: parsed.HTML, Errors: parsed.Errors}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
