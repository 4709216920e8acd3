package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bookline/apiserver/internal/apperr"
	"github.com/bookline/apiserver/internal/auth"
	"github.com/bookline/apiserver/internal/validate"
)

type contextKey string

const contextIdentityKey contextKey = "identity"

func identityFromContext(ctx context.Context) (auth.Identity, error) {
	identity, ok := ctx.Value(contextIdentityKey).(auth.Identity)
	if !ok || identity.UserID < 1 {
		return auth.Identity{}, errors.New("missing identity")
	}
	return identity, nil
}

// dataResponse is the success envelope every endpoint uses.
type dataResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// errorResponse is the failure envelope every endpoint uses.
type errorResponse struct {
	OK    bool      `json:"ok"`
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataResponse{OK: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string, details any) {
	writeJSON(w, status, errorResponse{Error: errorBody{Message: message, Details: details}})
}

// respondError is the single place an operation failure becomes an HTTP
// status. Validation issues come back with their field list; kinded errors
// map to their status with a caller-safe message; everything else is logged
// in full and reported as an opaque internal error.
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	var validationErr *validate.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, "Validation error", validationErr.Issues)
		return
	}

	switch apperr.KindOf(err) {
	case apperr.KindUnauthorized:
		writeError(w, http.StatusUnauthorized, apperr.MessageOf(err), nil)
	case apperr.KindNotFound:
		writeError(w, http.StatusNotFound, apperr.MessageOf(err), nil)
	case apperr.KindConflict:
		writeError(w, http.StatusConflict, apperr.MessageOf(err), nil)
	default:
		if log != nil {
			log.Error("internal error", zap.Error(err))
		}
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}
