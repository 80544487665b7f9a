// Package cryptox hashes and verifies user passwords.
//
// New hashes are produced with the configured algorithm (bcrypt by default).
// Verification picks the algorithm from the stored hash, so users created
// under a previous setting keep working after it changes.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgBcrypt   = "bcrypt"
	AlgArgon2id = "argon2id"

	DefaultBcryptCost = 10

	argon2Prefix  = "$argon2id$"
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

var ErrMalformedHash = errors.New("malformed password hash")

// PasswordHasher hashes new passwords and verifies stored ones.
type PasswordHasher struct {
	Algorithm  string
	BcryptCost int
}

// NewPasswordHasher returns a hasher for alg. Unknown algorithms are an error.
func NewPasswordHasher(alg string, bcryptCost int) (*PasswordHasher, error) {
	switch alg {
	case "":
		alg = AlgBcrypt
	case AlgBcrypt, AlgArgon2id:
	default:
		return nil, fmt.Errorf("unknown password hash algorithm %q", alg)
	}
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", bcryptCost)
	}
	return &PasswordHasher{Algorithm: alg, BcryptCost: bcryptCost}, nil
}

// Hash returns a salted one-way hash of plain.
func (h *PasswordHasher) Hash(plain string) (string, error) {
	if h.Algorithm == AlgArgon2id {
		return hashArgon2(plain), nil
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

// Verify reports whether plain matches hash. A mismatch is (false, nil);
// an error means hash could not be interpreted.
func (h *PasswordHasher) Verify(hash, plain string) (bool, error) {
	if strings.HasPrefix(hash, argon2Prefix) {
		return verifyArgon2(hash, plain)
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

func deriveArgon2(plain string, salt []byte) []byte {
	return argon2.IDKey([]byte(plain), salt, 1, 64*1024, 4, argon2KeyLen)
}

func hashArgon2(plain string) string {
	salt := common.GenerateRandByteArray(argon2SaltLen)
	key := deriveArgon2(plain, salt)
	defer common.WipeByteArray(key)

	return argon2Prefix +
		base64.RawStdEncoding.EncodeToString(salt) + "$" +
		base64.RawStdEncoding.EncodeToString(key)
}

func verifyArgon2(encoded, plain string) (bool, error) {
	saltB64, keyB64, ok := strings.Cut(strings.TrimPrefix(encoded, argon2Prefix), "$")
	if !ok {
		return false, ErrMalformedHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(saltB64)
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(keyB64)
	if err != nil {
		return false, fmt.Errorf("%w: key: %v", ErrMalformedHash, err)
	}

	got := deriveArgon2(plain, salt)
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
