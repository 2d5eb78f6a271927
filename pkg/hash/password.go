// Package hash stores user passwords as bcrypt digests; plaintext never
// reaches the repository layer.
package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor for new digests.
const Cost = bcrypt.DefaultCost

func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// CheckPassword reports whether plain matches the stored digest. A malformed
// digest never matches.
func CheckPassword(digest, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
