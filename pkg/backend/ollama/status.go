package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// State describes what the status probe learned about the local server.
type State string

const (
	// StateReady means the server answered and has at least one model.
	StateReady State = "ready"

	// StateNoModels means the server answered but nothing is installed.
	StateNoModels State = "no_models"

	// StateUnreachable means the probe got no usable answer.
	StateUnreachable State = "unreachable"
)

// Status is the probe result. "Unreachable" and "no models installed" are
// distinct outcomes so callers can gate on the difference instead of
// treating both as an empty list.
type Status struct {
	State State

	// StatusCode is the HTTP status, when a response was received.
	StatusCode int

	// Models are the installed model names, in listing order.
	Models []string

	// Err is the probe failure cause when unreachable.
	Err error
}

// Reachable reports whether the server answered the probe at all.
func (s Status) Reachable() bool {
	return s.State != StateUnreachable
}

// Status probes the listing endpoint. It never returns an error: failure is
// a value (StateUnreachable with the cause attached).
func (c *Client) Status(ctx context.Context) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return Status{State: StateUnreachable, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.probeClient.Do(req)
	if err != nil {
		c.logger.Debug("status probe failed", zap.Error(err))
		return Status{State: StateUnreachable, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Status{State: StateUnreachable, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return Status{
			State:      StateUnreachable,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var tags tagsResponse
	if err := json.Unmarshal(body, &tags); err != nil {
		return Status{State: StateUnreachable, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode tags: %w", err)}
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}

	if len(names) == 0 {
		return Status{State: StateNoModels, StatusCode: resp.StatusCode}
	}
	return Status{State: StateReady, StatusCode: resp.StatusCode, Models: names}
}

// Models returns installed model names, empty on any failure. Callers that
// care why the list is empty should use Status instead.
func (c *Client) Models(ctx context.Context) []string {
	return c.Status(ctx).Models
}
