package common

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomBytes returns size bytes from the system CSPRNG. Password salts
// derived from a broken random source are unsafe to issue at all, so a
// read failure panics rather than returning an error.
func RandomBytes(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RandomHexToken returns a hex-encoded string built from size random
// bytes; the string is 2*size characters long. Refresh tokens travel as
// text, so they are minted in this form directly.
func RandomHexToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeBytes zeroes b in place once key material is no longer needed.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
