package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Vinithareddy09/TraceGuard/internal/common"
	"github.com/Vinithareddy09/TraceGuard/internal/dbx"
	"github.com/Vinithareddy09/TraceGuard/internal/server/models"
)

// PostgresRepository implements entry storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (sequence, action, document, user_id, created_at, prev_hash, entry_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.db.ExecContext(ctx, query,
		entry.Sequence, entry.Action, entry.Document, entry.UserID,
		entry.Timestamp, entry.PrevHash, entry.EntryHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SelectAll(ctx context.Context) ([]*models.AuditEntry, error) {
	query := `
		SELECT sequence, action, document, user_id, created_at, prev_hash, entry_hash
		FROM audit_entries
		ORDER BY sequence ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.AuditEntry
	for rows.Next() {
		var item models.AuditEntry
		if err := rows.Scan(
			&item.Sequence, &item.Action, &item.Document, &item.UserID,
			&item.Timestamp, &item.PrevHash, &item.EntryHash,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) SelectLast(ctx context.Context) (*models.AuditEntry, error) {
	query := `
		SELECT sequence, action, document, user_id, created_at, prev_hash, entry_hash
		FROM audit_entries
		ORDER BY sequence DESC
		LIMIT 1
	`
	entry := &models.AuditEntry{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&entry.Sequence, &entry.Action, &entry.Document, &entry.UserID,
		&entry.Timestamp, &entry.PrevHash, &entry.EntryHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) CountByAction(ctx context.Context) (map[string]int64, error) {
	query := `
		SELECT action, COUNT(*)
		FROM audit_entries
		GROUP BY action
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var action string
		var n int64
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		counts[action] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
