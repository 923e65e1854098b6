package model

import "errors"

var (
	ErrTokenMalformed      = errors.New("token malformed")
	ErrTokenInvalid        = errors.New("token signature invalid")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenWrongType      = errors.New("token type mismatch")
	ErrUnknownRefreshToken = errors.New("unknown or expired refresh token")
	ErrMissingBearerToken  = errors.New("missing or malformed bearer token")
)
