package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// SSEFrame is one scripted server-sent event for a fake engine.
type SSEFrame struct {
	Name string
	Data string
}

// SSEServerConfig controls the behavior of a fake engine endpoint.
type SSEServerConfig struct {
	// Frames are written in order, each followed by a flush.
	Frames []SSEFrame
	// Delay is inserted between frames when set.
	Delay time.Duration
	// Status overrides the response status. Defaults to 200.
	Status int
	// Hang keeps the connection open after the last frame until the client
	// goes away, for cancellation tests.
	Hang bool
}

// StartSSEServer launches an httptest server that streams scripted frames.
func StartSSEServer(t testing.TB, cfg SSEServerConfig) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cfg.Status != 0 && cfg.Status != http.StatusOK {
			http.Error(w, "engine failure", cfg.Status)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Errorf("response writer does not support flushing")
			return
		}
		for _, frame := range cfg.Frames {
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frame.Name, frame.Data)
			flusher.Flush()
			if cfg.Delay > 0 {
				time.Sleep(cfg.Delay)
			}
		}
		if cfg.Hang {
			<-r.Context().Done()
		}
	}))
	t.Cleanup(server.Close)
	return server
}
