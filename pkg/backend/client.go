package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/esouk/onboarding/pkg/auth"
	"github.com/esouk/onboarding/pkg/breaker"
	"github.com/esouk/onboarding/pkg/logger"
)

// Config describes how to reach the E-Souk REST backend
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxFailures int
	OpenTimeout time.Duration
}

// Client performs JSON and multipart calls against the REST backend. Bearer
// tokens found in the request context are forwarded.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *breaker.CircuitBreaker
}

func NewClient(name string, cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker.New(name, cfg.MaxFailures, cfg.OpenTimeout, breaker.WithFailurePredicate(countsAsFailure)),
	}
}

// Breaker exposes the circuit guarding this client
func (c *Client) Breaker() *breaker.CircuitBreaker { return c.breaker }

// Request is one backend call
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
}

// Do sends req and decodes a JSON answer into out when out is not nil. Every
// failure comes back as an *APIError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	err := c.breaker.Call(func() error {
		return c.send(ctx, req, target, out)
	})
	if errors.Is(err, breaker.ErrOpen) {
		return unavailable(err)
	}
	if err != nil {
		logger.WithContext(ctx).Warn().
			Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("Backend call failed")
	}
	return err
}

func (c *Client) send(ctx context.Context, req Request, target string, out any) error {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return transport(err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if token := auth.TokenFromContext(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return transport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return rejected(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transport(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return decode(fmt.Errorf("decode %s: %w", req.Path, err))
	}
	return nil
}
