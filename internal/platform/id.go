package platform

import (
	"crypto/rand"

	"github.com/google/uuid"
)

const (
	shortIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	shortIDLength   = 6
	secretAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Lengths of generated storage credentials.
const (
	AccessKeyLength = 20
	SecretKeyLength = 50
)

func NewID() string {
	return uuid.New().String()
}

// NewShortID returns a lowercase alphanumeric suffix safe for DNS labels
// and bucket names.
func NewShortID() string {
	return randomString(shortIDAlphabet, shortIDLength)
}

// NewSecret returns a mixed-case alphanumeric secret of length n drawn
// from crypto/rand.
func NewSecret(n int) string {
	return randomString(secretAlphabet, n)
}

func randomString(alphabet string, n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand: " + err.Error())
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return string(b)
}
