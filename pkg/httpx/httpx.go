// Package httpx holds the JSON response helpers used by every HTTP handler.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fjod/tradecart/pkg/apperr"
	"github.com/fjod/tradecart/pkg/logger"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
}

func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondJSON(w, status, ErrorBody{Detail: detail})
}

// WriteError maps err to a status code and writes {"detail": ...}.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
	}
	RespondError(w, status, apperr.MessageOf(err))
}

func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.InvalidState:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.UpstreamUnavailable:
		return http.StatusBadGateway
	case apperr.UpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads a bounded JSON body into dst. Failures are Validation errors.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.Validation, "request body is empty")
		}
		return apperr.Wrap(apperr.Validation, err, fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
