// Package audit declares the storage contract for audit ledger entries.
// Chain computation lives in the ledger package; this layer only persists
// and reads entries.
package audit

import (
	"context"

	"github.com/Vinithareddy09/TraceGuard/internal/server/models"
)

type Repository interface {
	// Insert appends one entry. Sequence, PrevHash, and EntryHash are
	// computed by the caller; the sequence is the primary key, so a
	// duplicate insert fails rather than silently forking the chain.
	Insert(ctx context.Context, entry *models.AuditEntry) error

	// SelectAll returns every entry ordered by sequence ascending.
	SelectAll(ctx context.Context) ([]*models.AuditEntry, error)

	// SelectLast returns the highest-sequence entry, or common.ErrorNotFound
	// for an empty ledger.
	SelectLast(ctx context.Context) (*models.AuditEntry, error)

	// CountByAction returns entry counts grouped by action.
	CountByAction(ctx context.Context) (map[string]int64, error)

	// Count returns the total number of entries.
	Count(ctx context.Context) (int64, error)
}
