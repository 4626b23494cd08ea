package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleEvents streams a schedule's version changes as server-sent events.
// The stream polls the store and emits one "update" event with the current
// version on connect and one per change after that. When the schedule
// expires it emits "expired" and ends.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	last, ok := s.store.LastUpdate(id)
	if !ok {
		writeError(w, http.StatusNotFound, "schedule not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, "update", last); err != nil {
		return
	}
	flusher.Flush()

	poll := s.cfg.Server.EventPoll
	if poll <= 0 {
		poll = time.Second
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			cur, ok := s.store.LastUpdate(id)
			if !ok {
				_ = writeEvent(w, "expired", map[string]string{"id": id})
				flusher.Flush()
				return
			}
			if cur == last {
				continue
			}
			last = cur
			if err := writeEvent(w, "update", cur); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent writes one named SSE event with a JSON payload.
func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
