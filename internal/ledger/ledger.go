// Package ledger implements the append-only, hash-chained audit log.
//
// Every vault operation and auth action is recorded as one entry. Each
// entry's hash covers the previous entry's hash, so tampering with any
// stored entry breaks the chain from that point forward. The chain is the
// sole integrity mechanism: entries are never mutated, removed, or
// repaired, and the verified flag is recomputed on every read.
package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Vinithareddy09/TraceGuard/internal/common"
	"github.com/Vinithareddy09/TraceGuard/internal/server/models"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/audit"
)

// Recorded actions. Auth-side actions go through the same ledger so there
// is a single source of truth.
const (
	ActionUpload     = "upload"
	ActionAccess     = "access"
	ActionReuseCheck = "reuse_check"
	ActionLogin      = "login"
	ActionRegister   = "register"
)

// GenesisHash is the PrevHash of the first entry: a zero digest.
var GenesisHash = make([]byte, sha256.Size)

// ComputeEntryHash returns the SHA-256 digest over the entry's chained
// fields:
//
//	prevHash | sequence | action | document | user | timestamp
//
// with prevHash hex-encoded and the timestamp as Unix nanoseconds. The
// preimage layout is fixed; changing it invalidates every stored chain.
func ComputeEntryHash(e *models.AuditEntry) []byte {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%s|%s|%s|%d",
		hex.EncodeToString(e.PrevHash), e.Sequence, e.Action,
		e.Document, e.UserID, e.Timestamp.UnixNano())
	return h.Sum(nil)
}

// Ledger owns the write path of the audit chain. Appends are strictly
// serialized: sequence and prevHash correctness require a total order, so
// the mutex here is a deliberate global bottleneck.
type Ledger struct {
	mu         sync.Mutex
	repo       audit.Repository
	tail       *models.AuditEntry // guarded by mu; nil for an empty ledger
	tailLoaded bool
}

func New(repo audit.Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Append writes one entry for the given action, computing sequence,
// prevHash, and entryHash. A storage failure invalidates the cached tail
// and surfaces common.ErrorStorageUnavailable: the calling operation must
// not report success without its audit entry.
func (l *Ledger) Append(ctx context.Context, action, document, userID string) (*models.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.tailLoaded {
		last, err := l.repo.SelectLast(ctx)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: loading ledger tail: %v", common.ErrorStorageUnavailable, err)
		}
		l.tail = last
		l.tailLoaded = true
	}

	// The timestamptz column keeps microseconds. Hash the value the column
	// will give back, or every stored entry recomputes to a different hash.
	entry := &models.AuditEntry{
		Sequence:  1,
		Action:    action,
		Document:  document,
		UserID:    userID,
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
		PrevHash:  GenesisHash,
	}
	if l.tail != nil {
		entry.Sequence = l.tail.Sequence + 1
		entry.PrevHash = l.tail.EntryHash
	}
	entry.EntryHash = ComputeEntryHash(entry)

	if err := l.repo.Insert(ctx, entry); err != nil {
		// The insert may or may not have landed; reload the tail next time.
		l.tail = nil
		l.tailLoaded = false
		return nil, fmt.Errorf("%w: appending audit entry: %v", common.ErrorStorageUnavailable, err)
	}

	l.tail = entry
	entry.Verified = true
	return entry, nil
}

// List re-derives the full chain from storage, ordered by sequence
// ascending, with the Verified flag attached to every entry. An entry is
// verified iff its own hash recomputes from its fields AND the chain from
// genesis up to it is unbroken (correct back-links, gap-free sequence).
// Corruption is reported per entry, never dropped or repaired.
func (l *Ledger) List(ctx context.Context) ([]*models.AuditEntry, error) {
	entries, err := l.repo.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: reading ledger: %v", common.ErrorStorageUnavailable, err)
	}

	prev := GenesisHash
	expect := int64(1)
	intact := true
	for _, e := range entries {
		ok := e.Sequence == expect &&
			bytes.Equal(e.PrevHash, prev) &&
			bytes.Equal(e.EntryHash, ComputeEntryHash(e))
		if !ok {
			intact = false
		}
		e.Verified = intact

		// Follow the stored hash: a forged link still poisons every
		// successor because intact never recovers.
		prev = e.EntryHash
		expect = e.Sequence + 1
	}
	return entries, nil
}

// VerifyChain replays the whole chain and returns nil when every entry
// verifies, or common.ErrorIntegrityViolation naming the first entry that
// does not. Nothing is repaired.
func (l *Ledger) VerifyChain(ctx context.Context) error {
	entries, err := l.List(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.Verified {
			return fmt.Errorf("%w: entry %d", common.ErrorIntegrityViolation, e.Sequence)
		}
	}
	return nil
}

// VerifyEntry replays the chain from genesis and reports whether the entry
// at the given sequence verifies. Returns common.ErrorNotFound for an
// unknown sequence.
func (l *Ledger) VerifyEntry(ctx context.Context, sequence int64) (bool, error) {
	entries, err := l.List(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e.Sequence == sequence {
			return e.Verified, nil
		}
	}
	return false, common.ErrorNotFound
}
