// Package models defines server-side data models persisted in the database.
package models

import "time"

// Document is an immutable, owner-tagged stored document. The plaintext
// never appears here: Ciphertext/Nonce are the vault's sealed payload and
// Signature is the non-reversible reuse signature computed at upload.
type Document struct {
	ID          string
	Name        string
	Fingerprint string
	OwnerID     string
	Ciphertext  []byte
	Nonce       []byte
	Signature   []byte
	CreatedAt   time.Time
}

// DocumentRef is the caller-visible projection of a document: metadata only,
// never plaintext or ciphertext.
type DocumentRef struct {
	Name        string    `json:"name"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}
