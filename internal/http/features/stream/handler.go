package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hxabcd/sms-code-sync/internal/events"
	"github.com/hxabcd/sms-code-sync/internal/httputil"
)

// DefaultHeartbeat is the keep-alive interval for idle streams.
const DefaultHeartbeat = 15 * time.Second

// Handler serves the server-sent events stream of newly ingested codes.
type Handler struct {
	logger      *slog.Logger
	broadcaster *events.Broadcaster
	heartbeat   time.Duration
}

// NewHandler creates a new stream handler. A non-positive heartbeat falls
// back to the default.
func NewHandler(logger *slog.Logger, broadcaster *events.Broadcaster, heartbeat time.Duration) *Handler {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Handler{logger: logger, broadcaster: broadcaster, heartbeat: heartbeat}
}

// Stream handles GET /api/stream
//
// Each ingested record is written as one SSE data event. When no event
// arrives within the heartbeat interval a comment line keeps the
// connection alive. The listener queue is released on every exit path:
// client disconnect, closed listener (dropped on overflow), or handler
// return.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case rec, open := <-listener.C():
			if !open {
				// Dropped by the broadcaster for falling behind.
				h.logger.Warn("stream listener dropped on overflow")
				return
			}
			payload, err := json.Marshal(rec)
			if err != nil {
				h.logger.Error("failed to encode stream event", "error", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			heartbeat.Reset(h.heartbeat)
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}
