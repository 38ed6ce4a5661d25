package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/lgbarn/chess-trainer-go/internal/errors"
)

// APIError is the body of every failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// statusFor maps an error to its HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	var agentErr *errors.AgentError
	switch {
	case errors.Is(err, errors.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, errors.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, errors.ErrUnknownOpening):
		return http.StatusNotFound, "unknown_opening"
	case errors.Is(err, errors.ErrChatInProgress):
		return http.StatusConflict, "chat_in_progress"
	case errors.Is(err, errors.ErrNoPuzzle):
		return http.StatusConflict, "no_puzzle"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "agent_timeout"
	case errors.As(err, &agentErr),
		errors.Is(err, errors.ErrAgentUnavailable),
		errors.Is(err, errors.ErrAgentStatus),
		errors.Is(err, errors.ErrMalformedResponse):
		return http.StatusBadGateway, "agent_error"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data) //nolint:errcheck // client went away
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("code", code),
			zap.Error(err))
	}
	respond(w, status, errorResponse{Error: APIError{Code: code, Message: err.Error()}})
}

// decode reads a JSON request body into v. Unknown fields are rejected.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Invalid("body", err.Error())
	}
	return nil
}
