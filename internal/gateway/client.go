// Package gateway implements the REST client for the primary silo backend.
// All device, silo, user and auth operations go through it; the client only
// calls the backend, it implements no business logic of its own.
package gateway

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

	"github.com/joao-cbj/silowatch/pkg/config"
	"go.uber.org/zap"
)

// ErrUnauthorized is returned when the gateway rejects the bearer token.
var ErrUnauthorized = errors.New("gateway: unauthorized")

// TokenSource supplies the bearer token attached to outgoing requests.
// The session store implements it.
type TokenSource interface {
	Token() string
}

// Client is a bearer-token REST client for the primary gateway.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokens         TokenSource
	onUnauthorized func()
	logger         *zap.SugaredLogger
}

// NewClient creates a gateway client. tokens may be nil for unauthenticated
// use (nothing but login works without a token anyway).
func NewClient(cfg config.GatewayData, tokens TokenSource, logger *zap.SugaredLogger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = time.Duration(config.DefaultGatewayTimeoutSeconds) * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tokens: tokens,
		logger: logger,
	}
}

// SetUnauthorizedHandler registers the callback invoked when an
// authenticated request comes back 401 (expired or revoked token). The
// session store uses it to clear persisted credentials.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// apiError is the gateway's error payload shape.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do performs a JSON request against the gateway. A bearer token is
// attached when the token source has one. out may be nil when the caller
// does not need the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	raw, err := c.doRaw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("error decoding gateway response for %s: %w", path, err)
	}
	return nil
}

// doRaw performs a request and returns the raw response body. Used directly
// for the CSV export endpoint, which returns a blob rather than JSON.
func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body for %s: %w", path, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("error creating gateway request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	authenticated := false
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			authenticated = true
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling gateway %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading gateway response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Only an expired/revoked token on an authenticated call clears the
		// session; a rejected login attempt is a local error for the caller.
		if authenticated && c.onUnauthorized != nil {
			c.logger.Warnf("gateway returned 401 for %s; clearing session", path)
			c.onUnauthorized()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, errorMessage(raw))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway %s %s returned %d: %s", method, path, resp.StatusCode, errorMessage(raw))
	}

	return raw, nil
}

func errorMessage(raw []byte) string {
	var payload apiError
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return string(raw)
}
