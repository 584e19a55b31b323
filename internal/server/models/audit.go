package models

import (
	"encoding/hex"
	"encoding/json"
	"time"
)

// AuditEntry is one link of the hash-chained audit log. Sequence is
// gap-free and monotonically increasing; PrevHash is the previous entry's
// EntryHash (a zero digest for the first entry).
type AuditEntry struct {
	Sequence  int64
	Action    string
	Document  string // fingerprint or name reference; empty for auth actions
	UserID    string // empty if unauthenticated
	Timestamp time.Time
	PrevHash  []byte
	EntryHash []byte

	// Verified is never stored. It is recomputed on read by replaying the
	// chain from genesis up to this entry.
	Verified bool
}

// MarshalJSON renders the hashes as hex so the audit trail is readable over
// the wire.
func (e *AuditEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Sequence  int64     `json:"sequence"`
		Action    string    `json:"action"`
		Document  string    `json:"document"`
		UserID    string    `json:"user"`
		Timestamp time.Time `json:"timestamp"`
		PrevHash  string    `json:"prev_hash"`
		EntryHash string    `json:"entry_hash"`
		Verified  bool      `json:"verified"`
	}{
		Sequence:  e.Sequence,
		Action:    e.Action,
		Document:  e.Document,
		UserID:    e.UserID,
		Timestamp: e.Timestamp,
		PrevHash:  hex.EncodeToString(e.PrevHash),
		EntryHash: hex.EncodeToString(e.EntryHash),
		Verified:  e.Verified,
	})
}
