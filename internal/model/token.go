package model

import "time"

// TokenManager generates and validates signed access/refresh tokens.
type TokenManager interface {
	GenerateAccessToken(subject string, roles []Role) (string, error)
	GenerateRefreshToken(subject string, roles []Role) (string, error)
	ParseAccessToken(token string) (TokenClaims, error)
	ParseRefreshToken(token string) (TokenClaims, error)
	// ExpiresAt extracts the expiry claim without full validation. Used to
	// size blacklist TTLs for tokens presented at logout.
	ExpiresAt(token string) (time.Time, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

// TokenClaims is the verified content of a signed token.
type TokenClaims struct {
	Subject   string
	Roles     []Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}
