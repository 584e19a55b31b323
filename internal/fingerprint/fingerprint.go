// Package fingerprint derives the canonical content address of a document.
//
// The fingerprint is a hex-encoded SHA-256 digest of the canonical form of
// the plaintext. Two uploads are the same document exactly when their
// canonical forms are byte-identical; similarity beyond that is the reuse
// detector's job, not this package's.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Canonical normalizes plaintext before hashing:
//
//   - CRLF and lone CR line endings become LF
//   - trailing whitespace is stripped from each line
//   - trailing blank lines are dropped
//
// The rules are fixed: changing them changes every fingerprint in the store.
func Canonical(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// Sum returns the hex-encoded SHA-256 digest of the canonical form of text.
// Pure function: no side effects, deterministic for all inputs.
func Sum(text string) string {
	digest := sha256.Sum256([]byte(Canonical(text)))
	return hex.EncodeToString(digest[:])
}
