package auth

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for new digests.
const PasswordCost = bcrypt.DefaultCost

var (
	dummyOnce   sync.Once
	dummyDigest []byte
)

// HashPassword returns a salted bcrypt digest of plaintext.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches digest. An empty digest never
// matches but still costs a full bcrypt comparison, so a missing account cannot be
// told apart from a wrong password by timing.
func VerifyPassword(plaintext, digest string) bool {
	if digest == "" {
		_ = bcrypt.CompareHashAndPassword(dummy(), []byte(plaintext))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

func dummy() []byte {
	dummyOnce.Do(func() {
		dummyDigest, _ = bcrypt.GenerateFromPassword([]byte("social-app/dummy"), PasswordCost)
	})
	return dummyDigest
}
