package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"tabemb/internal/embedding"
)

const (
	// DefaultBaseURL is the public OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultAPIKeyEnv names the environment variable holding the API key.
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
)

// ErrAPIKeyNotSet is returned when the configured key variable is empty.
var ErrAPIKeyNotSet = errors.New("openai api key not set")

// Client calls an OpenAI-compatible embeddings endpoint, one input per request.
type Client struct {
	client openai.Client
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
}

// NewClient creates a client from cfg. SDK retries are disabled: a failed call
// is reported to the caller as is.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = DefaultAPIKeyEnv
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: env %s is empty", ErrAPIKeyNotSet, cfg.APIKeyEnv)
	}
	return &Client{
		client: openai.NewClient(
			option.WithAPIKey(key),
			option.WithBaseURL(cfg.BaseURL),
			option.WithMaxRetries(0),
		),
	}, nil
}

// Name returns the identifier of this service implementation.
func (c *Client) Name() string { return "openai" }

// Predict requests one embedding with the given dimension and returns the raw
// vector.
func (c *Client) Predict(ctx context.Context, req embedding.Request) (any, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(req.Model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(req.Text),
		},
	}
	if req.Dimension > 0 {
		params.Dimensions = openai.Int(int64(req.Dimension))
	}

	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}

var _ embedding.Service = (*Client)(nil)
