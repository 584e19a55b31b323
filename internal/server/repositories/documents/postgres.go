package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vinithareddy09/TraceGuard/internal/common"
	"github.com/Vinithareddy09/TraceGuard/internal/dbx"
	"github.com/Vinithareddy09/TraceGuard/internal/server/models"
)

// PostgresRepository implements document storage over a dbx.DBTX
// (*sql.DB or *sql.Tx). The fingerprint column carries a unique constraint;
// content inserts go through ON CONFLICT DO NOTHING so concurrent uploads
// of identical content cannot race into two rows.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, doc *models.Document) (bool, error) {
	query := `
		INSERT INTO documents (id, name, fingerprint, owner_id, ciphertext, nonce, signature)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (fingerprint) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.Name, doc.Fingerprint, doc.OwnerID,
		doc.Ciphertext, doc.Nonce, doc.Signature)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) AddName(ctx context.Context, name, fingerprint string) error {
	query := `
		INSERT INTO document_names (name, fingerprint)
		VALUES ($1, $2)
		ON CONFLICT (name, fingerprint) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, name, fingerprint); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Document, error) {
	query := `
		SELECT d.id, d.name, d.fingerprint, d.owner_id, d.ciphertext, d.nonce, d.signature, d.created_at
		FROM document_names n
		JOIN documents d ON d.fingerprint = n.fingerprint
		WHERE n.name = $1
		ORDER BY n.created_at ASC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

func (r *PostgresRepository) GetByFingerprint(ctx context.Context, fingerprint string) (*models.Document, error) {
	query := `
		SELECT id, name, fingerprint, owner_id, ciphertext, nonce, signature, created_at
		FROM documents
		WHERE fingerprint = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, fingerprint))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Document, error) {
	doc := &models.Document{}
	err := row.Scan(&doc.ID, &doc.Name, &doc.Fingerprint, &doc.OwnerID,
		&doc.Ciphertext, &doc.Nonce, &doc.Signature, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.DocumentRef, error) {
	query := `
		SELECT name, fingerprint, created_at
		FROM document_names
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.DocumentRef
	for rows.Next() {
		var item models.DocumentRef
		if err := rows.Scan(&item.Name, &item.Fingerprint, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) ListSignatures(ctx context.Context, ownerID string) ([]*models.Document, error) {
	query := `
		SELECT name, fingerprint, signature
		FROM documents
		WHERE ($1 = '' OR owner_id = $1)
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		var item models.Document
		if err := rows.Scan(&item.Name, &item.Fingerprint, &item.Signature); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
