package helpers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-ddd-identity-service/internal/domain/entity"
	"github.com/oksasatya/go-ddd-identity-service/internal/domain/service"
)

const (
	HasherBcrypt = "bcrypt"
	HasherSHA256 = "sha256"
)

// BcryptHasher hashes passwords with bcrypt (salted, slow). The password
// is reduced to base64(SHA-256) first, since bcrypt only takes 72 bytes.
type BcryptHasher struct {
	Cost int
}

func prehash(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// Hash hashes the plain text password using bcrypt
func (h BcryptHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("%w: password is required", entity.ErrInvalidArgument)
	}
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword(prehash(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares a bcrypt hash with a plain password
func (h BcryptHasher) Verify(digest, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), prehash(plain)) == nil
}

// SHA256Hasher produces unsalted base64(SHA-256) digests. Equal passwords
// give equal digests; kept only to verify accounts stored in that format.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("%w: password is required", entity.ErrInvalidArgument)
	}
	sum := sha256.Sum256([]byte(plain))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(digest, plain string) bool {
	want, err := h.Hash(plain)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(digest)) == 1
}

// NewPasswordHasher returns the hasher named by kind ("bcrypt" or "sha256").
func NewPasswordHasher(kind string, bcryptCost int) (service.PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", HasherBcrypt:
		return BcryptHasher{Cost: bcryptCost}, nil
	case HasherSHA256:
		return SHA256Hasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", kind)
	}
}

var (
	_ service.PasswordHasher = BcryptHasher{}
	_ service.PasswordHasher = SHA256Hasher{}
)
