// Package webhook delivers artifact-written events to an HTTP endpoint.
//
// Each event is POSTed as JSON. Server errors and transport failures are
// retried with backoff; a 4xx means the receiver rejected the event and is
// returned immediately.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/justapithecus/filebridge/adapter"
	"github.com/justapithecus/filebridge/iox"
)

// Delivery headers set on every request.
const (
	HeaderEvent    = "X-Filebridge-Event"
	HeaderEndpoint = "X-Filebridge-Endpoint"
	HeaderDelivery = "X-Filebridge-Delivery"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a rejected response is kept for the error.
const maxErrorBody = 256

// Config configures delivery.
type Config struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// Adapter posts events to one receiver.
type Adapter struct {
	config Config
	client *http.Client
}

// New validates the receiver URL and builds the adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook adapter requires a URL")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("webhook adapter: invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webhook adapter: URL scheme must be http or https, got %q", u.Scheme)
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Adapter{config: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

// RejectedError is a non-2xx response from the receiver.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("receiver responded %d", e.StatusCode)
	}
	return fmt.Sprintf("receiver responded %d: %s", e.StatusCode, e.Body)
}

// permanent reports 4xx rejections, which retrying cannot fix.
func permanent(err error) bool {
	var re *RejectedError
	return errors.As(err, &re) && re.StatusCode >= 400 && re.StatusCode < 500
}

// Publish delivers one event. The event id is sent as the delivery id so
// receivers can drop duplicates produced by retries.
func (a *Adapter) Publish(ctx context.Context, event *adapter.ArtifactWrittenEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}
	return adapter.Retry(ctx, "webhook", a.config.Retries, a.config.Backoff, func(ctx context.Context) error {
		return a.deliver(ctx, event, body)
	}, permanent)
}

func (a *Adapter) deliver(ctx context.Context, event *adapter.ArtifactWrittenEvent, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, event.EventType)
	req.Header.Set(HeaderEndpoint, event.Endpoint)
	req.Header.Set(HeaderDelivery, event.EventID)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver: %w", err)
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &RejectedError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(excerpt))}
}

// Close drops idle keep-alive connections.
func (a *Adapter) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
