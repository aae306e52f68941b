// Package webhook posts hook deliveries to subscriber endpoints.
package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apphook "github.com/fincore/backend/internal/application/hook"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout = 10 * time.Second

	// response bodies are drained, never stored
	maxResponseDrain = 64 << 10

	userAgent = "fincore-webhooks/1.0"
)

// ErrUnexpectedStatus wraps non-2xx responses
var ErrUnexpectedStatus = errors.New("webhook endpoint returned non-success status")

var _ apphook.Sender = (*HTTPSender)(nil)

// Observer receives the outcome of every delivery attempt
type Observer interface {
	ObserveDelivery(status int, d time.Duration, err error)
}

// Option configures an HTTPSender
type Option func(*HTTPSender)

// WithObserver reports attempts to o
func WithObserver(o Observer) Option {
	return func(s *HTTPSender) { s.observer = o }
}

// HTTPSender delivers hook payloads over HTTP
type HTTPSender struct {
	client   *http.Client
	observer Observer
}

// NewHTTPSender creates a sender with a per-request timeout. Redirects are
// not followed so a delivery always lands on the configured URL.
func NewHTTPSender(timeout time.Duration, opts ...Option) *HTTPSender {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	s := &HTTPSender{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send posts the delivery and returns the response status. Transport
// failures return status 0.
func (s *HTTPSender) Send(ctx context.Context, d apphook.DeliveryRequest) (int, error) {
	started := time.Now()
	status, err := s.send(ctx, d)
	if s.observer != nil {
		s.observer.ObserveDelivery(status, time.Since(started), err)
	}
	return status, err
}

func (s *HTTPSender) send(ctx context.Context, d apphook.DeliveryRequest) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(d.Body))
	if err != nil {
		return 0, fmt.Errorf("webhook: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", d.ContentType)
	req.Header.Set("User-Agent", userAgent)
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook: request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseDrain))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%w: HTTP %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp.StatusCode, nil
}
