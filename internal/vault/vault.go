// Package vault implements authenticated encryption for document plaintext
// at rest. Sealing uses AES-256-GCM with a random 12-byte nonce per call;
// the GCM authentication tag rides at the tail of the ciphertext, so any
// bit-level tampering of ciphertext or nonce makes Open fail.
//
// The key is process-wide state: derived once at startup, held for the
// process lifetime, never logged and never returned to callers.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/Vinithareddy09/TraceGuard/internal/common"
	"golang.org/x/crypto/argon2"
)

// DeriveKey derives a 32-byte AES key from a passphrase and salt using
// argon2id. Same inputs always produce the same key, so the vault can be
// reopened across restarts.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// Vault seals and opens document payloads under a fixed symmetric key.
// The key is read-only after construction, so Seal and Open are safe for
// concurrent use without locking.
type Vault struct {
	aead cipher.AEAD
}

// New constructs a Vault from raw key material. The key must be a valid AES
// key length (16, 24, or 32 bytes).
func New(key []byte) (*Vault, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault key: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault aead: %w", err)
	}
	return &Vault{aead: aead}, nil
}

// Seal encrypts plaintext and returns the ciphertext (tag appended) together
// with the freshly generated nonce.
func (v *Vault) Seal(plaintext []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return v.aead.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Open decrypts a sealed payload. Any mismatch of ciphertext, nonce, or tag
// yields common.ErrorAuthenticationFailed; no partial plaintext is ever
// released.
func (v *Vault) Open(ciphertext, nonce []byte) ([]byte, error) {
	if len(nonce) != v.aead.NonceSize() {
		return nil, common.ErrorAuthenticationFailed
	}
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrorAuthenticationFailed
	}
	return plaintext, nil
}
