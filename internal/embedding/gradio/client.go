// Package gradio calls an embedding endpoint exposed by a Gradio app through
// its two-step HTTP call API: POST the arguments, then read the result stream.
package gradio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tabemb/internal/embedding"
)

const (
	// DefaultBaseURL is the address of a locally served Gradio app.
	DefaultBaseURL = "http://127.0.0.1:7860"

	// DefaultCallPath is the prefix of the call API in Gradio 4 and later.
	DefaultCallPath = "/gradio_api/call"

	// DefaultAPIName is the endpoint name of the embedding function.
	DefaultAPIName = "/predict"

	// DefaultTimeout bounds one HTTP round trip when the caller sets no deadline.
	DefaultTimeout = 60 * time.Second
)

var (
	// ErrNoResult is returned when the stream ends without a complete event.
	ErrNoResult = errors.New("gradio stream ended without a result")

	// ErrAppError is returned when the app reports an error event.
	ErrAppError = errors.New("gradio app returned an error")
)

// Client is a Gradio call API client. A single Client is shared by every call
// of a run.
type Client struct {
	baseURL  string
	callPath string
	apiName  string
	token    string
	client   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the app address.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithCallPath sets the call API prefix.
func WithCallPath(path string) Option {
	return func(c *Client) {
		c.callPath = "/" + strings.Trim(path, "/")
	}
}

// WithAPIName sets the endpoint name, with or without the leading slash.
func WithAPIName(name string) Option {
	return func(c *Client) {
		c.apiName = "/" + strings.TrimLeft(name, "/")
	}
}

// WithToken sets a bearer token for protected apps.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// NewClient creates a Gradio client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		callPath: DefaultCallPath,
		apiName:  DefaultAPIName,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the identifier of this service implementation.
func (c *Client) Name() string { return "gradio" }

func (c *Client) endpoint() string {
	return c.baseURL + c.callPath + c.apiName
}

// Predict sends (model, text, dimension) as the positional inputs of the
// endpoint and returns its output value undecoded.
func (c *Client) Predict(ctx context.Context, req embedding.Request) (any, error) {
	eventID, err := c.submit(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.result(ctx, eventID)
}

type callRequest struct {
	Data []any `json:"data"`
}

type callResponse struct {
	EventID string `json:"event_id"`
}

func (c *Client) submit(ctx context.Context, req embedding.Request) (string, error) {
	body, err := json.Marshal(callRequest{Data: []any{req.Model, req.Text, req.Dimension}})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.authorize(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gradio returned status %d: %s", resp.StatusCode, formatErrorBody(resp.Body))
	}

	var out callResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding call response: %w", err)
	}
	if out.EventID == "" {
		return "", errors.New("gradio call response has no event_id")
	}
	return out.EventID, nil
}

func (c *Client) result(ctx context.Context, eventID string) (any, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint()+"/"+eventID, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	c.authorize(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gradio returned status %d: %s", resp.StatusCode, formatErrorBody(resp.Body))
	}

	outputs, err := parseStream(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(outputs) == 1 {
		return outputs[0], nil
	}
	return outputs, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// parseStream reads server-sent events until the complete or error event and
// returns the output list carried by the complete event.
func parseStream(body io.Reader) ([]any, error) {
	scanner := bufio.NewScanner(body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			event = ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "complete":
				var outputs []any
				if err := json.Unmarshal([]byte(data), &outputs); err != nil {
					return nil, fmt.Errorf("decoding result: %w", err)
				}
				return outputs, nil
			case "error":
				return nil, fmt.Errorf("%w: %s", ErrAppError, data)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading event stream: %w", err)
	}
	return nil, ErrNoResult
}

// formatErrorBody reads and formats the response body for error messages.
func formatErrorBody(body io.Reader) string {
	respBody, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return strings.TrimSpace(string(respBody))
}

var _ embedding.Service = (*Client)(nil)
