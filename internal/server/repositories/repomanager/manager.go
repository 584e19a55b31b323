// Package repomanager wires concrete repository implementations behind a
// single factory interface, so services can ask for a repository bound to
// either the shared *sql.DB or a transaction in flight.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/Vinithareddy09/TraceGuard/internal/dbx"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/audit"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/documents"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/refreshtokens"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Documents(db dbx.DBTX) documents.Repository
	AuditEntries(db dbx.DBTX) audit.Repository
}
