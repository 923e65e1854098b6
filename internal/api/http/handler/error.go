package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/nexra/user-service/internal/model"
)

type errorResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Status    int       `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{
		Timestamp: time.Now().UTC(),
		Message:   message,
		Status:    status,
	})
}

// handleError translates domain errors into HTTP responses. Internal
// failures are masked with a generic message.
func handleError(w http.ResponseWriter, err error) {
	var validationErrs validation.Errors
	if errors.As(err, &validationErrs) {
		writeError(w, http.StatusBadRequest, validationErrs.Error())
		return
	}

	switch {
	case errors.Is(err, model.ErrMalformedBody):
		writeError(w, http.StatusBadRequest, "malformed request body")
	case errors.Is(err, errInvalidUserID):
		writeError(w, http.StatusBadRequest, "invalid user id")
	case errors.Is(err, model.ErrDuplicate):
		writeError(w, http.StatusConflict, "username or email already taken")
	case errors.Is(err, model.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, model.ErrUserDisabled):
		writeError(w, http.StatusForbidden, "email not verified")
	case errors.Is(err, model.ErrInvalidOTP):
		writeError(w, http.StatusBadRequest, "invalid or expired OTP")
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, model.ErrMissingBearerToken),
		errors.Is(err, model.ErrUnknownRefreshToken),
		errors.Is(err, model.ErrTokenExpired),
		errors.Is(err, model.ErrTokenWrongType),
		errors.Is(err, model.ErrTokenMalformed),
		errors.Is(err, model.ErrTokenInvalid):
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
