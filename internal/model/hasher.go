package model

// PasswordHasher is a one-way hash and verify capability.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
