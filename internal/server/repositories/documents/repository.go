// Package documents declares the server-side repository contract for the
// immutable document collection. Content rows are keyed by fingerprint;
// caller-supplied names are aliases onto content, so re-uploading identical
// text under a new name adds a name, never a second content row.
package documents

import (
	"context"

	"github.com/Vinithareddy09/TraceGuard/internal/server/models"
)

type Repository interface {
	// CreateIfAbsent inserts the content row unless one with the same
	// fingerprint already exists. Returns true when a new row was created.
	CreateIfAbsent(ctx context.Context, doc *models.Document) (bool, error)

	// AddName maps a caller-supplied name onto a stored fingerprint.
	// Re-adding an existing (name, fingerprint) pair is a no-op.
	AddName(ctx context.Context, name, fingerprint string) error

	// GetByName resolves a name alias to its content row, or
	// common.ErrorNotFound. Ambiguous names resolve to the earliest mapping.
	GetByName(ctx context.Context, name string) (*models.Document, error)

	// GetByFingerprint returns the content row for the fingerprint, or
	// common.ErrorNotFound.
	GetByFingerprint(ctx context.Context, fingerprint string) (*models.Document, error)

	// List returns every name mapping in insertion order.
	List(ctx context.Context) ([]*models.DocumentRef, error)

	// ListSignatures returns the reuse-search projection of the corpus in
	// insertion order, one element per content row under its original name.
	// ownerID narrows the corpus to one owner; empty means all documents.
	ListSignatures(ctx context.Context, ownerID string) ([]*models.Document, error)

	// Count returns the number of stored content rows.
	Count(ctx context.Context) (int64, error)
}
