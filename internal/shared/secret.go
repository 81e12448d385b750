package shared

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
)

const secretAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SecretLength is the number of characters in a generated [Secret].
const SecretLength = 16

// Secret is the process-scoped capability an operator must present to obtain the authorization URL.
//
// It is generated once at startup, never persisted and never rotated.
type Secret struct {
	value string
}

// NewSecret generates a random alphanumeric [Secret] of [SecretLength] characters.
func NewSecret() (Secret, error) {
	buf := make([]byte, SecretLength)
	max := big.NewInt(int64(len(secretAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return Secret{}, fmt.Errorf("failed to generate secret: %w", err)
		}
		buf[i] = secretAlphabet[n.Int64()]
	}
	return Secret{value: string(buf)}, nil
}

// SecretFrom wraps a known value, for tests and fixed deployments.
func SecretFrom(s string) Secret {
	return Secret{value: s}
}

// Matches reports whether supplied equals the secret, in constant time.
//
// An empty secret never matches.
func (s Secret) Matches(supplied string) bool {
	if s.value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.value), []byte(supplied)) == 1
}

// Reveal returns the raw value so it can be shown to the operator once.
func (s Secret) Reveal() string {
	return s.value
}

// String masks the value so a Secret can be logged safely.
func (s Secret) String() string {
	return "********"
}
