package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/nexra/user-service/internal/logger"
	"github.com/nexra/user-service/internal/model"
)

// OTPPurpose namespaces codes so a registration code can never satisfy a
// password reset and vice versa.
type OTPPurpose string

const (
	PurposeRegistration  OTPPurpose = "registration"
	PurposePasswordReset OTPPurpose = "password_reset"
)

const (
	otpPrefix         = "otp:"
	otpAttemptsPrefix = "otp_attempts:"
)

// OTP manages one-time passcodes stored in the expiring key-value store.
// Codes are single-use: validation consumes them atomically.
type OTP struct {
	store       model.KeyValueStore
	logger      *logger.Logger
	ttl         time.Duration
	maxAttempts int64
}

// NewOTP creates an OTP manager. Codes live for ttl; at most maxAttempts
// validation attempts are accepted per key per window.
func NewOTP(store model.KeyValueStore, logger *logger.Logger, ttl time.Duration, maxAttempts int64) *OTP {
	return &OTP{store: store, logger: logger, ttl: ttl, maxAttempts: maxAttempts}
}

func otpKey(purpose OTPPurpose, identity string) string {
	return otpPrefix + string(purpose) + ":" + identity
}

func otpAttemptsKey(purpose OTPPurpose, identity string) string {
	return otpAttemptsPrefix + string(purpose) + ":" + identity
}

// Generate draws a uniform random 6-digit code and stores it, overwriting
// any pending code for the same identity and purpose. Only the newest code
// is valid.
func (o *OTP) Generate(ctx context.Context, identity string, purpose OTPPurpose) (string, error) {
	o.logger.Debug("OTP service: generating code",
		"identity", identity,
		"purpose", purpose)

	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to draw random code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	if err := o.store.Set(ctx, otpKey(purpose, identity), code, o.ttl); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}

	// A fresh code starts a fresh attempt window; earlier failures must not
	// lock it out.
	if err := o.store.Delete(ctx, otpAttemptsKey(purpose, identity)); err != nil {
		return "", fmt.Errorf("failed to reset otp attempts: %w", err)
	}

	o.logger.Info("OTP service: code generated",
		"identity", identity,
		"purpose", purpose)

	return code, nil
}

// Validate consumes the stored code when it matches. A wrong code, an
// expired code and an already-consumed code are indistinguishable to the
// caller. Repeated attempts beyond the cap are rejected without touching
// the stored code.
func (o *OTP) Validate(ctx context.Context, identity string, purpose OTPPurpose, code string) (bool, error) {
	attempts, err := o.store.IncrementWithTTL(ctx, otpAttemptsKey(purpose, identity), o.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to count otp attempt: %w", err)
	}
	if attempts > o.maxAttempts {
		o.logger.Info("OTP service: attempt limit exceeded",
			"identity", identity,
			"purpose", purpose,
			"attempts", attempts)
		return false, nil
	}

	valid, err := o.store.CompareDelete(ctx, otpKey(purpose, identity), code)
	if err != nil {
		return false, fmt.Errorf("failed to validate otp: %w", err)
	}

	if valid {
		o.logger.Info("OTP service: code validated",
			"identity", identity,
			"purpose", purpose)
	}

	return valid, nil
}
