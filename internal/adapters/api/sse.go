package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"Hauler/internal/core"
)

// handleSSE streams job updates to clients connected to /api/events.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET is allowed")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "sse_not_supported", "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Buffered so a slow client never blocks the broadcaster.
	clientChan := make(chan core.JobUpdateEvent, 100)
	s.addSSEClient(clientChan)
	defer s.removeSSEClient(clientChan)

	s.sendSSEEvent(w, "connected", map[string]interface{}{
		"message": "Connected to Hauler event stream",
	})
	flusher.Flush()

	// Late joiners get the current job state first.
	if activeJob := s.jobManager.GetActiveJob(); activeJob != nil {
		s.sendSSEEvent(w, "job:snapshot", activeJob)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-clientChan:
			if !ok {
				return
			}

			eventType := "job:update"
			switch event.State {
			case core.JobSucceeded:
				eventType = "job:completed"
			case core.JobFailed:
				eventType = "job:failed"
			case core.JobCanceled:
				eventType = "job:canceled"
			}

			if event.LogLine != "" {
				s.sendSSEEvent(w, "job:log", map[string]interface{}{
					"jobId":   event.JobID,
					"logLine": event.LogLine,
					"seq":     event.Seq,
				})
				flusher.Flush()
			}

			s.sendSSEEvent(w, eventType, event)
			flusher.Flush()
		}
	}
}

func (s *Server) sendSSEEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		s.logger.Printf("[API] SSE marshal error: %v", err)
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}
