// Package huggingface implements the hosted inference API backend. Requests
// go to a fixed model endpoint; transient "model is loading" responses are
// retried with exponential backoff before giving up.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hallwaylabs/parley/pkg/backend"
)

const (
	// DefaultURL targets the hosted DialoGPT-medium deployment.
	DefaultURL = "https://api-inference.huggingface.co/models/microsoft/DialoGPT-medium"

	// DefaultTimeout bounds each individual request attempt.
	DefaultTimeout = 30 * time.Second
)

// ErrMaxRetries is returned when every attempt saw a retryable status.
var ErrMaxRetries = errors.New("max retries exceeded")

// StatusError is a non-retryable HTTP error from the hosted API. It fails
// the request immediately, without backoff.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// Params are the fixed generation parameters sent with every request.
type Params struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
	DoSample    bool    `json:"do_sample"`
	PadTokenID  int     `json:"pad_token_id"`
}

// DefaultParams returns the generation parameters used by the chat view.
func DefaultParams() Params {
	return Params{
		MaxLength:   100,
		Temperature: 0.7,
		DoSample:    true,
		PadTokenID:  50256,
	}
}

// Config is the hosted API client configuration. Zero fields fall back to
// the package defaults.
type Config struct {
	// URL is the full model endpoint URL.
	URL string

	// Params are the generation parameters attached to every request.
	Params Params

	// Policy controls retries and backoff.
	Policy backend.Policy

	// Timeout is the per-request timeout.
	Timeout time.Duration
}

// generateRequest is the hosted API's request body.
type generateRequest struct {
	Inputs     string `json:"inputs"`
	Parameters Params `json:"parameters"`
}

// Generation is one element of the hosted API's response array.
type Generation struct {
	GeneratedText string `json:"generated_text"`
}

// Client is the hosted inference API backend.
type Client struct {
	config     Config
	logger     *zap.Logger
	httpClient *http.Client
}

// New creates a hosted API client, filling unset config fields with defaults.
func New(config Config, logger *zap.Logger) *Client {
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Params == (Params{}) {
		config.Params = DefaultParams()
	}
	if config.Policy.MaxAttempts == 0 {
		config.Policy = backend.DefaultPolicy()
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name implements backend.Backend.
func (c *Client) Name() string {
	return "huggingface"
}

// Generate sends the prompt to the hosted API and returns the extracted
// display string. Transient failures (retryable status, network errors) are
// retried per the configured policy; any other HTTP status fails immediately
// with a *StatusError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Inputs:     prompt,
		Parameters: c.config.Params,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	attempts := c.config.Policy.Attempts()
	for attempt := 0; attempt < attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network-level failure: fixed backoff, the final attempt
			// surfaces the underlying cause.
			if attempt < attempts-1 {
				c.logger.Warn("request failed, retrying",
					zap.Int("attempt", attempt+1),
					zap.Int("max_attempts", attempts),
					zap.Error(err),
				)
				c.config.Policy.Wait(ctx, c.config.Policy.NetworkBackoff(attempt))
				continue
			}
			return "", fmt.Errorf("request failed: %w", err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return "", fmt.Errorf("read response: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			var gens []Generation
			if err := json.Unmarshal(respBody, &gens); err == nil {
				return Extract(prompt, gens), nil
			}

			// An error detail can arrive with a 200 status. Surface it so
			// the caller's apology path carries the detail.
			var apiErr struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
				c.logger.Error("api error", zap.String("detail", apiErr.Error))
				return "", errors.New(apiErr.Error)
			}

			c.logger.Warn("unexpected response shape",
				zap.String("body", truncate(string(respBody), 200)),
			)
			return malformedReply, nil

		case c.config.Policy.Retryable(resp.StatusCode):
			// Model is loading; wait and try again.
			if attempt < attempts-1 {
				wait := c.config.Policy.StatusBackoff(attempt)
				c.logger.Warn("model is loading, retrying",
					zap.Int("status", resp.StatusCode),
					zap.Duration("wait", wait),
				)
				c.config.Policy.Wait(ctx, wait)
			}

		default:
			c.logger.Error("api error",
				zap.Int("status", resp.StatusCode),
				zap.String("body", truncate(string(respBody), 200)),
			)
			return "", &StatusError{Code: resp.StatusCode, Body: string(respBody)}
		}
	}

	return "", ErrMaxRetries
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
