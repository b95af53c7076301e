package huggingface

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hallwaylabs/parley/pkg/backend"
)

// testClient builds a client against url with an injected sleep recorder so
// retry tests never actually wait.
func testClient(t *testing.T, url string, waits *[]time.Duration) *Client {
	t.Helper()
	policy := backend.DefaultPolicy()
	policy.Sleep = func(_ context.Context, d time.Duration) {
		*waits = append(*waits, d)
	}
	return New(Config{URL: url, Policy: policy}, zap.NewNop())
}

func TestGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`[{"generated_text": "Hello there  Hi! How can I help?  "}]`))
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(t, srv.URL, &waits)

	text, err := c.Generate(context.Background(), "Hello there")
	require.NoError(t, err)
	assert.Equal(t, "Hi! How can I help?", text)
	assert.Empty(t, waits, "no retries for a clean 200")
}

func TestGenerateRetriesOnModelLoading(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"generated_text": "third time lucky"}]`))
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(t, srv.URL, &waits)

	text, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", text)
	assert.Equal(t, 3, calls)
	// Exponential backoff: 2^0 then 2^1 seconds.
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, waits)
}

func TestGenerateExhaustsRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(t, srv.URL, &waits)

	_, err := c.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 3, calls)
	// No wait after the final attempt.
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, waits)
}

func TestGenerateFailsImmediatelyOnOtherStatus(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "no such model", http.StatusNotFound)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(t, srv.URL, &waits)

	_, err := c.Generate(context.Background(), "hi")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Contains(t, statusErr.Body, "no such model")
	assert.Equal(t, 1, calls, "non-retryable status must not retry")
	assert.Empty(t, waits, "non-retryable status must not sleep")
}

func TestGenerateRetriesOnNetworkFailure(t *testing.T) {
	// A server that is already closed refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	var waits []time.Duration
	c := testClient(t, url, &waits)

	_, err := c.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMaxRetries)
	assert.Contains(t, err.Error(), "request failed")
	// Fixed 1-second backoff between the three attempts.
	assert.Equal(t, []time.Duration{1 * time.Second, 1 * time.Second}, waits)
}

func TestGenerateErrorBodyWithOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Model overloaded"}`))
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(t, srv.URL, &waits)

	_, err := c.Generate(context.Background(), "hi")
	require.EqualError(t, err, "Model overloaded")

	reply := backend.Reply(context.Background(), c, "hi")
	assert.Equal(t, "Sorry, I encountered an error: Model overloaded", reply)
}

func TestGenerateMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"generated_text": "not an array"}`))
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(t, srv.URL, &waits)

	text, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, malformedReply, text)
}

func TestReplyFoldsMaxRetriesIntoApology(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(t, srv.URL, &waits)

	reply := backend.Reply(context.Background(), c, "hi")
	assert.Equal(t, "Sorry, I encountered an error: max retries exceeded", reply)
}

func TestReplyFoldsStatusErrorIntoApology(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(t, srv.URL, &waits)

	reply := backend.Reply(context.Background(), c, "hi")
	assert.Equal(t, "Sorry, I encountered an error: HTTP 404", reply)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		gens   []Generation
		want   string
	}{
		{
			name:   "strips prompt echo and trims",
			prompt: "Hello",
			gens:   []Generation{{GeneratedText: "Hello  nice to meet you "}},
			want:   "nice to meet you",
		},
		{
			name:   "no echo present",
			prompt: "Hello",
			gens:   []Generation{{GeneratedText: "  just a reply "}},
			want:   "just a reply",
		},
		{
			name:   "empty after stripping",
			prompt: "Hello",
			gens:   []Generation{{GeneratedText: "Hello   "}},
			want:   emptyReply,
		},
		{
			name:   "empty generated text",
			prompt: "Hello",
			gens:   []Generation{{GeneratedText: ""}},
			want:   emptyReply,
		},
		{
			name:   "no generations",
			prompt: "Hello",
			gens:   nil,
			want:   malformedReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.prompt, tt.gens))
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Code: 429, Body: "slow down"}
	assert.Equal(t, "HTTP 429", err.Error())
}
