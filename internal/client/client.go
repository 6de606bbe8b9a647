// Package client is the HTTP client for the OpenCode agent server: session,
// message, file and permission endpoints plus the SSE event stream.
package client

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

	"occtl/internal/logging"
	"occtl/internal/types"
)

const defaultRequestTimeout = 30 * time.Second

type Client struct {
	baseURL   string
	directory string
	http      *http.Client
	log       logging.Logger
}

// New validates the server configuration and returns a client. Configuration
// errors are surfaced here, before any network call.
func New(cfg types.ServerConfig, log logging.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		directory: strings.TrimSpace(cfg.Directory),
		http: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		log: log,
	}, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// TestConnection probes the server root endpoint.
func (c *Client) TestConnection(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodGet, "/app", nil, nil, nil)
}

// endpoint builds the request URL, attaching the configured directory and any
// extra query parameters.
func (c *Client) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	if c.directory != "" && query.Get("directory") == "" {
		query.Set("directory", c.directory)
	}
	if encoded := query.Encode(); encoded != "" {
		return c.baseURL + path + "?" + encoded
	}
	return c.baseURL + path
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	type errorPayload struct {
		Error string `json:"error"`
		Data  struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	var payload errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	message := payload.Data.Message
	if message == "" {
		message = payload.Error
	}
	if message == "" {
		message = resp.Status
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// AsAPIError unwraps err into an *APIError, or nil.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}
