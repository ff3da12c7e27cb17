// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch executes request plans sequentially against the source
// APIs. A failed plan is logged and skipped; it never aborts the remaining
// plans.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/research-aggregator/internal/discover"
	"github.com/pdiddy/research-aggregator/internal/httputil"
	"github.com/pdiddy/research-aggregator/pkg/types"
)

const (
	// Timeout bounds every request, body included.
	Timeout = 20 * time.Second

	// UserAgent identifies this client to the source APIs.
	UserAgent = "research-aggregator/0.1 (+https://github.com/pdiddy/research-aggregator)"
)

// PoliteDelay is the pause between successive requests. Tests override it.
var PoliteDelay = 300 * time.Millisecond

// ErrStatus marks a response whose status code is 400 or above.
var ErrStatus = errors.New("unexpected HTTP status")

// StatusError carries the failing status code. It matches ErrStatus.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Payload is one successful response. Body holds the decoded JSON value
// (map[string]any or []any) when the content type is JSON, otherwise the
// body text. Raw keeps the bytes as received.
type Payload struct {
	Source      types.Source
	URL         string
	ContentType string
	Raw         []byte
	Body        any
}

// Failure records a plan that produced no payload.
type Failure struct {
	Source types.Source `json:"source" yaml:"source"`
	URL    string       `json:"url" yaml:"url"`
	Err    error        `json:"-" yaml:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Source, f.Err)
}

// NewClient returns the HTTP client shared by one run.
func NewClient() *http.Client {
	return &http.Client{Timeout: Timeout}
}

// Executor runs plans with one shared client and identifying header.
type Executor struct {
	Client     *http.Client
	UserAgent  string
	MaxRetries int
	Logger     *slog.Logger
}

// NewExecutor returns an Executor using client, or NewClient() when client
// is nil. A nil logger means slog.Default().
func NewExecutor(client *http.Client, logger *slog.Logger) *Executor {
	if client == nil {
		client = NewClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{Client: client, UserAgent: UserAgent, Logger: logger}
}

// Execute performs each plan in order, pausing PoliteDelay between
// successive requests whether or not the previous one succeeded. It returns
// the successful payloads in plan order and the failures; it never returns
// early because of a failed plan. Only a cancelled context stops the loop.
func (e *Executor) Execute(ctx context.Context, plans []discover.Plan) ([]Payload, []Failure) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	payloads := make([]Payload, 0, len(plans))
	var failures []Failure
	for i, p := range plans {
		if i > 0 {
			if err := pause(ctx, PoliteDelay); err != nil {
				for _, rest := range plans[i:] {
					failures = append(failures, Failure{Source: rest.Source, URL: rest.URL, Err: err})
				}
				break
			}
		}

		payload, err := e.fetch(ctx, p)
		if err != nil {
			logger.WarnContext(ctx, "fetch failed, skipping source",
				"source", p.Source, "url", p.URL, "error", err)
			failures = append(failures, Failure{Source: p.Source, URL: p.URL, Err: err})
			continue
		}
		logger.InfoContext(ctx, "fetched source",
			"source", p.Source, "bytes", len(payload.Raw), "content_type", payload.ContentType)
		payloads = append(payloads, payload)
	}
	return payloads, failures
}

func (e *Executor) fetch(ctx context.Context, p discover.Plan) (Payload, error) {
	target, err := p.RequestURL()
	if err != nil {
		return Payload{}, err
	}
	method := p.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.UserAgent)
	for k, v := range p.Headers {
		req.Header.Set(k, v)
	}

	client := e.Client
	if client == nil {
		client = NewClient()
	}
	resp, err := httputil.Do(ctx, client, req, e.MaxRetries)
	if err != nil {
		return Payload{}, fmt.Errorf("%s request: %w", p.Source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return Payload{}, &StatusError{Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Payload{}, fmt.Errorf("reading %s response: %w", p.Source, err)
	}

	ct := resp.Header.Get("Content-Type")
	body, err := decode(ct, raw)
	if err != nil {
		return Payload{}, fmt.Errorf("decoding %s response: %w", p.Source, err)
	}
	return Payload{Source: p.Source, URL: target, ContentType: ct, Raw: raw, Body: body}, nil
}

// IsJSON reports whether a Content-Type header declares JSON, including
// vendor types such as application/vnd.api+json.
func IsJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "json")
}

func decode(contentType string, raw []byte) (any, error) {
	if !IsJSON(contentType) {
		return string(raw), nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
