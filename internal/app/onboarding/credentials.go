package onboarding

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	idAlphabet       = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	idSuffixLen       = 6
	passwordSuffixLen = 4
)

// NewEntityID returns prefix followed by six random upper-case base36 characters.
func NewEntityID(prefix string) (string, error) {
	s, err := randomString(idAlphabet, idSuffixLen)
	if err != nil {
		return "", fmt.Errorf("generate entity id: %w", err)
	}
	return prefix + s, nil
}

// NewInitialPassword returns the last four characters of the national id followed by four
// random lower-case base36 characters.
//
// This is weak: half of it is derivable from the national id. Accounts are flagged
// mustChangePassword and callers must not treat it as a long-lived secret.
func NewInitialPassword(nationalID string) (string, error) {
	tail := nationalID
	if len(tail) > 4 {
		tail = tail[len(tail)-4:]
	}
	s, err := randomString(passwordAlphabet, passwordSuffixLen)
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return tail + s, nil
}

func randomString(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphabet[v.Int64()]
	}
	return string(b), nil
}
