package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/esouk/onboarding/internal/onboarding/usecase/query"
	"github.com/esouk/onboarding/pkg/logger"
)

const streamKeepAlive = 15 * time.Second

// StreamState handles GET /api/onboarding/stream. It sends the current state as
// a server-sent event and then one event per change until the client leaves.
func (h *OnboardingHandler) StreamState(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondJSON(w, http.StatusInternalServerError, Response{Success: false, Error: "Streaming unsupported"})
		return
	}

	ctx := r.Context()
	vendor := vendorID(r)
	sub := h.sessions.Get(ctx, vendor).Subscribe()
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	activeStreams.Inc()
	defer activeStreams.Dec()
	logger.ForVendor(ctx, vendor).Debug().Msg("State stream opened")

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case state, open := <-sub.C:
			if !open {
				return
			}
			payload, err := json.Marshal(query.Describe(state, nil))
			if err != nil {
				logger.ForVendor(ctx, vendor).Error().Err(err).Msg("Failed to encode state event")
				return
			}
			if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
