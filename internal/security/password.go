package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrCrypto = errors.New("password hashing failed")

// HashPassword hashes a plain text password with bcrypt. bcrypt salts every
// hash, so equal passwords never produce equal hashes.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCrypto, err)
	}

	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// A mismatch or a malformed hash is simply false.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
