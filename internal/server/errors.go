package server

import (
	"errors"
	"net/http"

	constants "pimonitor/config"
	"pimonitor/internal/encoding"
	"pimonitor/internal/logger"
)

// Stable reason codes carried by error bodies
const (
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeRateLimited    = "rate_limited"
	ErrCodeInternal       = "internal_error"
)

// ErrInvalidPID is returned when prociden is missing or not a process id
var ErrInvalidPID = errors.New("prociden must be an integer process id")

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	Retnmesg  string `json:"retnmesg"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes an error body in the negotiated encoding
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	requestID, _ := r.Context().Value(contextKeyRequestID).(string)

	s.respond(w, r, statusCode, ErrorResponse{
		Retnmesg:  constants.RESPONSE_FAIL,
		Reason:    code,
		Message:   message,
		RequestID: requestID,
	})
}

// respond writes v; an encoding failure has already produced a 500
func (s *Server) respond(w http.ResponseWriter, r *http.Request, statusCode int, v interface{}) {
	if err := encoding.WriteResponse(w, r, statusCode, v); err != nil {
		logger.Error("Failed to write response for %s: %v", r.URL.Path, err)
	}
}
