package server

import (
	"errors"
	"net/http"

	constants "pimonitor/config"
	"pimonitor/internal/logger"
	"pimonitor/internal/process"
)

// Route paths
const (
	pathLiveSync = "/livesync"
	pathDeadSync = "/deadsync"
	pathProcInfo = "/procinfo"
	pathKillProc = "/killproc"
	pathTermProc = "/termproc"
	pathSuspProc = "/suspproc"
	pathResmProc = "/resmproc"
	pathHealth   = "/healthz"
	pathMetrics  = "/metrics"
)

var denyBody = map[string]string{constants.RESPONSE_KEY: constants.RESPONSE_DENY}

var appliedBody = map[string]bool{constants.RESPONSE_KEY: true}

// authorized checks the passcode and writes the deny body when it does not
// match. Nothing else runs for a denied request.
func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if s.gate.Authorize(r.URL.Query().Get(constants.QUERY_PASSCODE)) {
		return true
	}
	authDenials.WithLabelValues(r.URL.Path).Inc()
	logger.Debug("Denied %s from %s", r.URL.Path, r.RemoteAddr)
	s.respond(w, r, http.StatusOK, denyBody)
	return false
}

// parsePID reads prociden. ok is false for integers no process can carry.
func parsePID(r *http.Request) (pid int32, ok bool, err error) {
	pid, ok, err = process.ParsePID(r.URL.Query().Get(constants.QUERY_PROCESS_ID))
	if err != nil {
		return 0, false, ErrInvalidPID
	}
	return pid, ok, nil
}

func (s *Server) handleLiveSync(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	s.respond(w, r, http.StatusOK, s.composer.Live(r.Context()))
}

func (s *Server) handleDeadSync(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	s.respond(w, r, http.StatusOK, s.composer.Dead(r.Context()))
}

func (s *Server) handleProcInfo(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}

	pid, ok, err := parsePID(r)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	if !ok {
		s.writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "no such process")
		return
	}

	fact, err := process.Inspect(r.Context(), pid)
	switch {
	case errors.Is(err, process.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "no such process")
	case err != nil:
		logger.Warning("Failed to inspect process %d: %v", pid, err)
		s.writeError(w, r, http.StatusInternalServerError, ErrCodeInternal, "failed to read process")
	default:
		s.respond(w, r, http.StatusOK, fact)
	}
}

// controlHandler dispatches action and answers {"retnmesg": true} whatever
// the outcome; the outcome is logged and counted instead
func (s *Server) controlHandler(action process.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorized(w, r) {
			return
		}

		pid, ok, err := parsePID(r)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
			return
		}

		result := process.Result{Outcome: process.OutcomeNotFound}
		if ok {
			result = process.Control(r.Context(), pid, action)
		}
		processControlTotal.WithLabelValues(string(action), string(result.Outcome)).Inc()
		if result.Outcome == process.OutcomeNotFound {
			logger.Debug("No process %s to %s", r.URL.Query().Get(constants.QUERY_PROCESS_ID), action)
		}

		s.respond(w, r, http.StatusOK, appliedBody)
	}
}

// HealthResponse is the body of /healthz
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, HealthResponse{Status: "ok", Version: constants.APP_VERSION})
}
