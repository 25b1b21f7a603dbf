// FILE: logtide-go/stream_test.go
package logtide

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Stream(t *testing.T) {
	var gotPath string
	var gotService, gotLevel string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotService = r.URL.Query().Get("service")
		gotLevel = r.URL.Query().Get("level")

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		fmt.Fprint(w, "data: {\"service\":\"auth\",\"message\":\"one\"}\n\n")
		fmt.Fprint(w, ": heartbeat comment, not an event\n\n")
		fmt.Fprint(w, "data: {\"service\":\"auth\",\"message\":\"two\"}\n\n")
		fmt.Fprint(w, "data: {malformed json\n\n")
		fmt.Fprint(w, "data: {\"service\":\"auth\",\"message\":\"three\"}\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	c := newQueryClient(t, srv)

	var events []map[string]any
	var streamErrs []error

	err := c.Stream(context.Background(), StreamOptions{Service: "auth", Level: LevelError},
		func(e map[string]any) { events = append(events, e) },
		func(err error) { streamErrs = append(streamErrs, err) },
	)
	require.NoError(t, err, "a server-terminated stream is a clean end")

	assert.Equal(t, "/api/logs/stream", gotPath)
	assert.Equal(t, "auth", gotService)
	assert.Equal(t, "error", gotLevel)

	require.Len(t, events, 3)
	assert.Equal(t, "one", events[0]["message"])
	assert.Equal(t, "two", events[1]["message"])
	assert.Equal(t, "three", events[2]["message"])

	require.Len(t, streamErrs, 1, "malformed events are reported, not fatal")
}

func TestClient_StreamContextCancel(t *testing.T) {
	firstSent := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		fmt.Fprint(w, "data: {\"message\":\"first\"}\n\n")
		flusher.Flush()
		close(firstSent)

		// Hold the stream open until the client walks away
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := newQueryClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var count int

	errc := make(chan error, 1)
	go func() {
		errc <- c.Stream(ctx, StreamOptions{}, func(map[string]any) {
			mu.Lock()
			count++
			mu.Unlock()
		}, nil)
	}()

	select {
	case <-firstSent:
	case <-time.After(2 * time.Second):
		t.Fatal("stream never delivered the first event")
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, 2*time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after cancellation")
	}
}

func TestClient_StreamRejectedByServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := newQueryClient(t, srv)

	err := c.Stream(context.Background(), StreamOptions{}, func(map[string]any) {}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestClient_StreamAfterClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := newQueryClient(t, srv)
	require.NoError(t, c.Close())

	err := c.Stream(context.Background(), StreamOptions{}, func(map[string]any) {}, nil)
	assert.ErrorIs(t, err, ErrClosed)
}
