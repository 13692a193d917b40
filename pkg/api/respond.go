package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/matzehuels/trussfea/pkg/errors"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Detail  string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status. Problems with the
// submitted structure are the client's; a singular system is well-formed
// input that cannot be analysed.
func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidDOF, apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidPath, apperrors.ErrCodeDegenerateElement, apperrors.ErrCodeTooLarge:
		return http.StatusBadRequest
	case apperrors.ErrCodeSingularSystem:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeModelUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// codeOf extracts the error code, classifying oversized bodies and
// context expiry that arrive without one.
func codeOf(err error) apperrors.Code {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return apperrors.ErrCodeTooLarge
	}
	if code := apperrors.GetCode(err); code != "" {
		return code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ErrCodeTimeout
	}
	return apperrors.ErrCodeInternal
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code apperrors.Code, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "code", code, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: string(code), Detail: apperrors.UserMessage(err)})
}

// fail writes err with the status implied by its code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := codeOf(err)
	s.writeError(w, r, statusFor(code), code, err)
}
