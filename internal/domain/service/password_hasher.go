// Package service holds stateless domain contracts that do not belong to a
// single entity.
package service

// PasswordHasher turns plaintext passwords into stored digests and checks
// plaintext candidates against them.
type PasswordHasher interface {
	// Hash returns the digest to store for plain.
	Hash(plain string) (string, error)

	// Verify reports whether plain matches the stored digest.
	Verify(digest, plain string) bool
}
