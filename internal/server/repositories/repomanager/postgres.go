package repomanager

import (
	"context"
	"database/sql"

	"github.com/Vinithareddy09/TraceGuard/internal/dbx"
	"github.com/Vinithareddy09/TraceGuard/internal/server/migrations"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/audit"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/documents"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/refreshtokens"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct {
}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Documents(db dbx.DBTX) documents.Repository {
	return documents.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) AuditEntries(db dbx.DBTX) audit.Repository {
	return audit.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}
