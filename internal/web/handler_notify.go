package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const heartbeatInterval = 25 * time.Second

// handleNotificationStream pushes a project's notifications as server-sent
// events until the client goes away.
func (s *Server) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")
	if _, err := s.projects.GetProject(r.Context(), projectID); err != nil {
		s.writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	// the stream outlives the server's write timeout
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Debug("could not clear write deadline", "error", err)
	}

	events, cancel := s.hub.Subscribe(projectID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(": connected\n\n")); err != nil {
		return
	}
	flusher.Flush()

	s.logger.Info("notification stream opened", "project_id", projectID)
	defer s.logger.Info("notification stream closed", "project_id", projectID)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
		case n, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				s.logger.Error("encode notification failed", "project_id", projectID, "error", err)
				continue
			}
			if _, err := w.Write([]byte("event: notification\ndata: " + string(payload) + "\n\n")); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}
