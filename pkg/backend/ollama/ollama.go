// Package ollama implements the local inference server backend. Generation
// goes through /api/generate with streaming disabled; /api/tags doubles as a
// reachability probe and model listing.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultHost is used when OLLAMA_HOST is unset.
	DefaultHost = "localhost"

	// DefaultPort is the standard Ollama listen port.
	DefaultPort = 11434

	// DefaultModel is used when no model has been selected.
	DefaultModel = "llama3.2:1b"

	// DefaultTimeout bounds a generate request. Local models can be slow.
	DefaultTimeout = 60 * time.Second

	// DefaultProbeTimeout bounds the /api/tags status probe.
	DefaultProbeTimeout = 5 * time.Second
)

// noResponseReply stands in when the server returns an empty response field.
const noResponseReply = "No response generated."

// HostFromEnv returns the Ollama host from the OLLAMA_HOST environment
// variable, defaulting to localhost.
func HostFromEnv() string {
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		return host
	}
	return DefaultHost
}

// StatusError is a non-OK HTTP response from the generate endpoint.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ollama returned %d: %s", e.Code, e.Body)
}

// Options are the fixed sampling parameters sent with every request.
type Options struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

// DefaultOptions returns the sampling parameters used by the chat view.
func DefaultOptions() Options {
	return Options{
		Temperature: 0.7,
		TopP:        0.9,
		MaxTokens:   150,
	}
}

// Config is the local server client configuration. Zero fields fall back to
// the package defaults.
type Config struct {
	// Host is the Ollama host name (no scheme, no port).
	Host string

	// BaseURL overrides the host-derived http://<host>:11434 target.
	// Useful for tests and non-standard ports.
	BaseURL string

	// Model is the default model identifier for generate requests.
	Model string

	// Options are the sampling parameters attached to every request.
	Options Options

	// Timeout is the generate request timeout.
	Timeout time.Duration

	// ProbeTimeout is the status probe timeout.
	ProbeTimeout time.Duration
}

// generateRequest is the /api/generate request body.
type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
}

// generateResponse is the subset of the /api/generate reply we use.
type generateResponse struct {
	Response string `json:"response"`
}

// tagsResponse is the /api/tags reply shape.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Client is the local inference server backend.
type Client struct {
	config      Config
	baseURL     string
	logger      *zap.Logger
	httpClient  *http.Client
	probeClient *http.Client
}

// New creates a local server client, filling unset config fields with
// defaults.
func New(config Config, logger *zap.Logger) *Client {
	if config.Host == "" {
		config.Host = HostFromEnv()
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Options == (Options{}) {
		config.Options = DefaultOptions()
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = DefaultProbeTimeout
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", config.Host, DefaultPort)
	}

	return &Client{
		config:      config,
		baseURL:     baseURL,
		logger:      logger,
		httpClient:  &http.Client{Timeout: config.Timeout},
		probeClient: &http.Client{Timeout: config.ProbeTimeout},
	}
}

// Name implements backend.Backend.
func (c *Client) Name() string {
	return "ollama"
}

// Model returns the client's default model identifier.
func (c *Client) Model() string {
	return c.config.Model
}

// Generate sends the prompt to the default model. There is no retry: the
// local server either answers within the timeout or the request fails.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.GenerateWithModel(ctx, c.config.Model, prompt)
}

// GenerateWithModel sends the prompt to the named model.
func (c *Client) GenerateWithModel(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  false,
		Options: c.config.Options,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending generate request",
		zap.String("model", model),
		zap.Int("prompt_len", len(prompt)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("generate failed",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return "", &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if gen.Response == "" {
		return noResponseReply, nil
	}
	return gen.Response, nil
}

// HumanizeError maps a Generate failure onto the user-facing strings shown
// in the conversation log. Connection-refused and timeout get tailored
// messages; everything else is generic.
func (c *Client) HumanizeError(err error) string {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Error: %d - %s", statusErr.Code, statusErr.Body)
	case errors.Is(err, syscall.ECONNREFUSED):
		return "Cannot connect to Ollama. Please make sure Ollama is installed and running."
	case isTimeout(err):
		return "Request timed out. The model might be processing a complex query."
	default:
		return fmt.Sprintf("Unexpected error: %v", err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
