package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/nexra/user-service/internal/logger"
	"github.com/nexra/user-service/internal/model"
)

// UserService defines the profile operations used by the handler.
type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uuid.UUID, username, email string) (model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// User handles the protected profile endpoints.
type User struct {
	service        UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewUser creates a new user handler.
func NewUser(service UserService, contextManager model.ContextManager, logger *logger.Logger) *User {
	return &User{service: service, contextManager: contextManager, logger: logger}
}

// errInvalidUserID marks a syntactically invalid path id, as opposed to a
// well-formed id with no matching record.
var errInvalidUserID = errors.New("invalid user id")

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, errInvalidUserID
	}
	return id, nil
}

func (h *User) List(w http.ResponseWriter, r *http.Request) {
	if username := r.URL.Query().Get("username"); username != "" {
		user, err := h.service.GetByUsername(r.Context(), username)
		if err != nil {
			handleError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newUserResponse(user))
		return
	}

	users, err := h.service.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, newUserResponse(user))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Me returns the profile of the authenticated identity.
func (h *User) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.contextManager.GetIdentityFromContext(r.Context())
	if !ok {
		handleError(w, model.ErrMissingBearerToken)
		return
	}

	user, err := h.service.GetByUsername(r.Context(), identity)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *User) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *User) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	var req updateUserRequest
	if err := decode(r, &req); err != nil {
		handleError(w, err)
		return
	}

	user, err := h.service.Update(r.Context(), id, req.Username, req.Email)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (h *User) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
