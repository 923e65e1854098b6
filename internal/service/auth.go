package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nexra/user-service/internal/logger"
	"github.com/nexra/user-service/internal/model"
)

// RegisterParams carries validated registration input.
type RegisterParams struct {
	Username string
	Email    string
	Password string
}

// Auth sequences the authentication flows: registration, verification,
// login, refresh, logout and password reset. It holds no per-identity
// state; the union of store entries is the state machine.
type Auth struct {
	users        model.UserStore
	hasher       model.PasswordHasher
	tokenService *TokenService
	otp          *OTP
	publisher    model.EventPublisher
	logger       *logger.Logger
}

func NewAuth(
	users model.UserStore,
	hasher model.PasswordHasher,
	tokenService *TokenService,
	otp *OTP,
	publisher model.EventPublisher,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		users:        users,
		hasher:       hasher,
		tokenService: tokenService,
		otp:          otp,
		publisher:    publisher,
		logger:       logger,
	}
}

// Register creates a disabled profile, issues a registration OTP and
// publishes the registration event. The profile stays disabled until the
// email is verified.
func (a *Auth) Register(ctx context.Context, params RegisterParams) (model.User, error) {
	a.logger.Debug("Auth service: registering user",
		"username", params.Username,
		"email", params.Email)

	passwordHash, err := a.hasher.Hash(params.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := model.User{
		ID:           uuid.New(),
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: passwordHash,
		Roles:        []model.Role{model.RoleUser},
		Enabled:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	saved, err := a.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			a.logger.Info("Auth service: duplicate registration",
				"username", params.Username)
			return model.User{}, model.ErrDuplicate
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	code, err := a.otp.Generate(ctx, saved.Email, PurposeRegistration)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to generate registration otp: %w", err)
	}

	a.publish(ctx, model.NewRegistrationEvent(saved.Email, code))

	a.logger.Info("Auth service: user registered",
		"username", saved.Username,
		"id", saved.ID)

	return saved, nil
}

// VerifyEmail consumes the registration OTP and enables the profile.
func (a *Auth) VerifyEmail(ctx context.Context, email, code string) error {
	valid, err := a.otp.Validate(ctx, email, PurposeRegistration, code)
	if err != nil {
		return fmt.Errorf("failed to validate registration otp: %w", err)
	}
	if !valid {
		return model.ErrInvalidOTP
	}

	if err := a.users.SetEnabled(ctx, email, true); err != nil {
		return fmt.Errorf("failed to enable user: %w", err)
	}

	a.logger.Info("Auth service: email verified", "email", email)

	return nil
}

// Login checks credentials and issues a token pair. Unknown users and wrong
// passwords are indistinguishable to the caller. Login requires a verified
// (enabled) profile.
func (a *Auth) Login(ctx context.Context, username, password string) (accessToken string, refreshToken string, err error) {
	user, err := a.users.GetByUsername(ctx, username)
	if errors.Is(err, model.ErrNotFound) {
		return "", "", model.ErrInvalidCredentials
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to get user by username: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		a.logger.Info("Auth service: failed login attempt", "username", username)
		return "", "", model.ErrInvalidCredentials
	}

	if !user.Enabled {
		a.logger.Info("Auth service: login before verification", "username", username)
		return "", "", model.ErrUserDisabled
	}

	access, refresh, err := a.tokenService.Issue(ctx, user.Username, user.Roles)
	if err != nil {
		return "", "", fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: user logged in", "username", username)

	return access, refresh, nil
}

// Refresh exchanges a refresh token for a new access token.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return a.tokenService.Refresh(ctx, refreshToken)
}

// Logout revokes the presented access token. The associated refresh token
// stays valid.
func (a *Auth) Logout(ctx context.Context, accessToken string) error {
	return a.tokenService.RevokeAccess(ctx, accessToken)
}

// ForgotPassword issues a password-reset OTP when the identity exists. An
// unknown identity is logged and otherwise ignored, so the operation result
// never reveals whether the email is registered.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	_, err := a.users.GetByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		a.logger.Info("Auth service: password reset for unknown email", "email", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	code, err := a.otp.Generate(ctx, email, PurposePasswordReset)
	if err != nil {
		return fmt.Errorf("failed to generate reset otp: %w", err)
	}

	a.publish(ctx, model.NewPasswordResetEvent(email, code))

	a.logger.Info("Auth service: password reset initiated", "email", email)

	return nil
}

// ResetPassword consumes the reset OTP and stores the new password hash.
func (a *Auth) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	valid, err := a.otp.Validate(ctx, email, PurposePasswordReset, code)
	if err != nil {
		return fmt.Errorf("failed to validate reset otp: %w", err)
	}
	if !valid {
		return model.ErrInvalidOTP
	}

	passwordHash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := a.users.UpdatePassword(ctx, email, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	a.logger.Info("Auth service: password reset completed", "email", email)

	return nil
}

// publish hands an event to the channel. A publish failure only costs the
// notification email; the OTP is already in the store, so the failure is
// logged and swallowed.
func (a *Auth) publish(ctx context.Context, event model.UserEvent) {
	if err := a.publisher.Publish(ctx, event); err != nil {
		a.logger.Error("Auth service: failed to publish event",
			"kind", event.Kind,
			"email", event.Email,
			"error", err.Error())
	}
}
