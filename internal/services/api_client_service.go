// Package services provides the Studio backend API client for StudioShell.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	studioctx "studioshell/internal/context"
	"studioshell/internal/logger"
	"studioshell/pkg/studiotypes"
)

// ErrEndpointUnavailable is returned when no backend base URL is configured.
// Callers treat it as a guard condition, not a transport failure.
var ErrEndpointUnavailable = errors.New("studio endpoint is not configured")

// APIClientService issues JSON requests against the Studio backend. It
// attaches auth and CSRF headers, normalizes malformed-but-successful bodies
// into a fallback reply field, and collapses non-2xx responses into a single
// error carrying the most specific message the body offers. No retries, no
// timeout beyond the client default.
type APIClientService struct {
	initialized bool
	ctx         studiotypes.Context
	client      *http.Client
}

// APIResult is a normalized backend response: the raw body is always valid
// JSON by the time it lands here.
type APIResult struct {
	Status int
	Raw    string
}

// Body returns the parsed response body.
func (r *APIResult) Body() gjson.Result {
	return gjson.Parse(r.Raw)
}

// Reply returns the response reply field, the common payload of tool
// exchanges.
func (r *APIResult) Reply() string {
	return r.Body().Get("reply").String()
}

// Field returns an arbitrary response field by gjson path.
func (r *APIResult) Field(path string) gjson.Result {
	return r.Body().Get(path)
}

// NewAPIClientService creates a new APIClientService instance.
func NewAPIClientService() *APIClientService {
	return &APIClientService{}
}

// Name returns the service name "api_client" for registration.
func (a *APIClientService) Name() string {
	return "api_client"
}

// Initialize sets up the HTTP client with the configured timeout.
func (a *APIClientService) Initialize(ctx studiotypes.Context) error {
	a.ctx = ctx

	timeoutSec := studioctx.DefaultHTTPTimeoutSec
	if sc, ok := ctx.(*studioctx.StudioContext); ok {
		timeoutSec = sc.GetConfigInt(studioctx.ConfigKeyHTTPTimeout, studioctx.DefaultHTTPTimeoutSec)
	}
	a.client = &http.Client{Timeout: time.Duration(timeoutSec) * time.Second}
	a.initialized = true

	logger.Debug("APIClientService initialized", "timeout_sec", timeoutSec)
	return nil
}

// BaseURL returns the configured backend base URL.
func (a *APIClientService) BaseURL() (string, bool) {
	base, ok := a.ctx.GetConfigValue(studioctx.ConfigKeyBaseURL)
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	return base, ok && base != ""
}

// Endpoint resolves a backend path against the configured base URL.
func (a *APIClientService) Endpoint(path string) (string, error) {
	base, ok := a.BaseURL()
	if !ok {
		return "", ErrEndpointUnavailable
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path, nil
}

// SendJSON issues a POST with a JSON-encoded payload against a backend path.
func (a *APIClientService) SendJSON(path string, payload any) (*APIResult, error) {
	return a.do(http.MethodPost, path, payload)
}

// GetJSON issues a GET against a backend path. Used by read-only lookups.
func (a *APIClientService) GetJSON(path string) (*APIResult, error) {
	return a.do(http.MethodGet, path, nil)
}

func (a *APIClientService) do(method, path string, payload any) (*APIResult, error) {
	if !a.initialized {
		return nil, fmt.Errorf("api client service not initialized")
	}

	url, err := a.Endpoint(path)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = strings.NewReader(string(encoded))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token, ok := a.ctx.AuthToken(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if csrf, ok := a.ctx.GetConfigValue(studioctx.ConfigKeyCSRFToken); ok && csrf != "" {
		req.Header.Set("X-CSRF-Token", csrf)
	}

	logger.Debug("Studio request", "method", method, "path", path)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	body := string(raw)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(errorMessageFromBody(body, resp.StatusCode))
	}

	// A successful response with a malformed body must never error: the raw
	// text becomes the fallback reply field.
	if !gjson.Valid(body) {
		wrapped, _ := json.Marshal(map[string]string{"reply": body})
		body = string(wrapped)
	}

	logger.Debug("Studio response", "method", method, "path", path, "status", resp.StatusCode)
	return &APIResult{Status: resp.StatusCode, Raw: body}, nil
}

// errorMessageFromBody extracts the most specific message a failure body
// offers: message, then error, then reply, then a generic status line.
func errorMessageFromBody(body string, status int) string {
	if gjson.Valid(body) {
		parsed := gjson.Parse(body)
		for _, field := range []string{"message", "error", "reply"} {
			if value := parsed.Get(field); value.Exists() && value.String() != "" {
				return value.String()
			}
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}
