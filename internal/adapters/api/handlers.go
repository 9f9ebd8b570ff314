package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET is allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleActiveJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET is allowed")
		return
	}

	active := s.jobManager.GetActiveJob()
	if active == nil {
		s.writeJSON(w, http.StatusOK, nil)
		return
	}
	s.writeJSON(w, http.StatusOK, active)
}

func (s *Server) handleStartCopy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST is allowed")
		return
	}
	if s.startCopyFunc == nil {
		s.writeError(w, http.StatusNotImplemented, "not_supported", "Copy start is not wired")
		return
	}

	var req StartCopyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	if req.SourcePath == "" || req.DestinationPath == "" {
		s.writeError(w, http.StatusBadRequest, "bad_request", "sourcePath and destinationPath are required")
		return
	}

	jobID, err := s.startCopyFunc(req)
	if err != nil {
		s.writeError(w, http.StatusConflict, "start_failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"jobId": jobID})
}

func (s *Server) handleCancelCopy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST is allowed")
		return
	}

	if err := s.jobManager.CancelActiveJob(); err != nil {
		s.writeError(w, http.StatusConflict, "cancel_failed", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST is allowed")
		return
	}
	if s.probeFunc == nil {
		s.writeError(w, http.StatusNotImplemented, "not_supported", "Probe is not wired")
		return
	}

	var req ProbeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	if req.DestinationPath == "" {
		s.writeError(w, http.StatusBadRequest, "bad_request", "destinationPath is required")
		return
	}

	if err := s.probeFunc(req.DestinationPath); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "not_writable", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "writable"})
}
