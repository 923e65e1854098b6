package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nexra/user-service/internal/model"
)

// Claims represents JWT claims with token type and role set.
type Claims struct {
	jwt.RegisteredClaims
	Roles     []string `json:"roles"`
	TokenType string   `json:"typ"`
}

// JWT implements model.TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// NewJWT creates a new JWT token manager with the provided secret key and
// token lifetimes.
func NewJWT(secretKey string, accessTTL, refreshTTL time.Duration) model.TokenManager {
	return &JWT{secretKey: secretKey, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// GenerateAccessToken creates a short-lived access token for the subject.
func (j *JWT) GenerateAccessToken(subject string, roles []model.Role) (string, error) {
	return j.generate(subject, roles, typeAccess, j.accessTTL)
}

// GenerateRefreshToken creates a long-lived refresh token for the subject.
func (j *JWT) GenerateRefreshToken(subject string, roles []model.Role) (string, error) {
	return j.generate(subject, roles, typeRefresh, j.refreshTTL)
}

func (j *JWT) generate(subject string, roles []model.Role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Roles:     model.RolesToStrings(roles),
		TokenType: tokenType,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

// ParseAccessToken validates an access token and extracts its claims.
func (j *JWT) ParseAccessToken(tokenString string) (model.TokenClaims, error) {
	return j.parse(tokenString, typeAccess)
}

// ParseRefreshToken validates a refresh token and extracts its claims.
func (j *JWT) ParseRefreshToken(tokenString string) (model.TokenClaims, error) {
	return j.parse(tokenString, typeRefresh)
}

func (j *JWT) parse(tokenString, wantType string) (model.TokenClaims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		return model.TokenClaims{}, mapParseError(err)
	}
	if !token.Valid {
		return model.TokenClaims{}, model.ErrTokenInvalid
	}
	if claims.TokenType != wantType {
		return model.TokenClaims{}, model.ErrTokenWrongType
	}

	return model.TokenClaims{
		Subject:   claims.Subject,
		Roles:     model.RolesFromStrings(claims.Roles),
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// ExpiresAt extracts the expiry claim without verifying validity beyond the
// signature. Expired tokens still yield their original expiry, which callers
// use to size blacklist TTLs.
func (j *JWT) ExpiresAt(tokenString string) (time.Time, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil && !errors.Is(err, jwt.ErrTokenExpired) {
		return time.Time{}, mapParseError(err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, model.ErrTokenMalformed
	}
	return claims.ExpiresAt.Time, nil
}

// AccessTTL returns the configured access token lifetime.
func (j *JWT) AccessTTL() time.Duration { return j.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (j *JWT) RefreshTTL() time.Duration { return j.refreshTTL }

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return model.ErrTokenInvalid
	case errors.Is(err, jwt.ErrTokenMalformed):
		return model.ErrTokenMalformed
	default:
		return fmt.Errorf("failed to parse token: %w", err)
	}
}
