package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/tablelayout/pkg/errors"
)

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch code := errors.GetCode(err); {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case code == errors.ErrCodeUnsupported:
		return http.StatusMethodNotAllowed
	case code == errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case code == errors.ErrCodeNetwork:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError writes err as a JSON error body. Internal errors are logged
// with their cause and reported without it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "error", err)
		code = errors.ErrCodeInternal
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: code, Message: msg},
		RequestID: RequestID(r.Context()),
	})
}

func errNotFoundRoute(r *http.Request) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", r.URL.Path)
}

func errMethodNotAllowed(r *http.Request) error {
	return errors.New(errors.ErrCodeUnsupported, "method %s not allowed on %s", r.Method, r.URL.Path)
}
