// Package api exposes the Worker over plain HTTP: POST /execute streams
// one Server-Sent Event per completed Execution, and GET /metrics serves
// the Prometheus registry. Streaming uses a channel of completed results
// feeding an SSE response, built on stdlib net/http and http.Flusher
// since no third-party SSE framework was available to build on.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/quayrun/sandexec/blobstore"
	"github.com/quayrun/sandexec/internal/metrics"
	"github.com/quayrun/sandexec/types"
	"github.com/quayrun/sandexec/worker"
)

// Server wires HTTP requests to freshly created Workers.
type Server struct {
	ScratchBase string
	Blob        blobstore.Store
	SelfExe     string
}

// New returns a Server ready to mount with Handler.
func New(scratchBase string, blob blobstore.Store, selfExe string) *Server {
	return &Server{ScratchBase: scratchBase, Blob: blob, SelfExe: selfExe}
}

// Handler builds the mux: POST /execute, GET /metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /execute", s.handleExecute)
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var request types.ExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	wk, err := worker.New(s.ScratchBase, s.Blob, s.SelfExe)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to create worker: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := worker.RunBatchStreaming(r.Context(), wk, request)
	for event := range events {
		if event.Err != nil {
			slog.Error("error executing code", "error", event.Err)
			writeSSE(w, map[string]string{"error": event.Err.Error()})
			flusher.Flush()
			break
		}
		writeSSE(w, event.Result)
		flusher.Flush()
	}
}

func writeSSE(w http.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal SSE payload", "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
