package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nexra/user-service/internal/api/http/handler"
	"github.com/nexra/user-service/internal/api/http/middleware"
)

// New assembles the route table. Authentication endpoints are public;
// everything under /api/users requires a valid, non-revoked access token.
func New(
	authHandler *handler.Auth,
	userHandler *handler.User,
	authenticate *middleware.Authenticate,
	logging *middleware.Logging,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(logging.Middleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/verify-email", authHandler.VerifyEmail).Methods(http.MethodPost)
	auth.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", authHandler.Refresh).Methods(http.MethodPost)
	auth.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	auth.HandleFunc("/forgot-password", authHandler.ForgotPassword).Methods(http.MethodPost)
	auth.HandleFunc("/reset-password", authHandler.ResetPassword).Methods(http.MethodPost)

	users := r.PathPrefix("/api/users").Subrouter()
	users.Use(authenticate.Middleware)
	users.HandleFunc("", userHandler.List).Methods(http.MethodGet)
	users.HandleFunc("/me", userHandler.Me).Methods(http.MethodGet)
	users.HandleFunc("/{id}", userHandler.Get).Methods(http.MethodGet)
	users.HandleFunc("/{id}", userHandler.Update).Methods(http.MethodPut)
	users.HandleFunc("/{id}", userHandler.Delete).Methods(http.MethodDelete)

	return r
}
