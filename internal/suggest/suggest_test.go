package suggest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jon4hz/whispr/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamServer(t *testing.T, lines []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/chat", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n", line)
		}
	}))
}

func newTestClient(url string) *Client {
	return New(&config.SuggestConfig{
		Enabled: true,
		URL:     url,
		APIKey:  "test-key",
		Model:   "command-r-plus-08-2024",
		Timeout: 5 * time.Second,
	})
}

func TestEnabled(t *testing.T) {
	assert.False(t, New(&config.SuggestConfig{}).Enabled())
	assert.True(t, New(&config.SuggestConfig{Enabled: true}).Enabled())
}

func TestStream(t *testing.T) {
	srv := newStreamServer(t, []string{
		`data: {"type":"message-start"}`,
		`data: {"type":"content-delta","delta":{"message":{"content":{"text":"Keep up"}}}}`,
		``,
		`data: {"type":"content-delta","delta":{"message":{"content":{"text":" the great work!"}}}}`,
		`data: {"type":"message-end"}`,
		`data: [DONE]`,
	})
	defer srv.Close()

	var got string
	err := newTestClient(srv.URL).Stream(context.Background(), func(text string) error {
		got += text
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Keep up the great work!", got)
}

func TestStreamEmitError(t *testing.T) {
	srv := newStreamServer(t, []string{
		`data: {"type":"content-delta","delta":{"message":{"content":{"text":"chunk"}}}}`,
	})
	defer srv.Close()

	emitErr := errors.New("client went away")
	err := newTestClient(srv.URL).Stream(context.Background(), func(string) error {
		return emitErr
	})
	assert.ErrorIs(t, err, emitErr)
}

func TestStreamUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Stream(context.Background(), func(string) error {
		t.Fatal("emit should not be called")
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestStreamContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := newStreamServer(t, nil)
	defer srv.Close()

	err := newTestClient(srv.URL).Stream(ctx, func(string) error { return nil })
	assert.Error(t, err)
}
