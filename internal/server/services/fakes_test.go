package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/Vinithareddy09/TraceGuard/internal/common"
	"github.com/Vinithareddy09/TraceGuard/internal/dbx"
	"github.com/Vinithareddy09/TraceGuard/internal/server/models"
	auditrepo "github.com/Vinithareddy09/TraceGuard/internal/server/repositories/audit"
	documentsrepo "github.com/Vinithareddy09/TraceGuard/internal/server/repositories/documents"
	refreshtokensrepo "github.com/Vinithareddy09/TraceGuard/internal/server/repositories/refreshtokens"
	usersrepo "github.com/Vinithareddy09/TraceGuard/internal/server/repositories/users"
)

// In-memory fakes standing in for the Postgres repositories. They ignore
// the DBTX handed to the manager: transactional behavior is the real
// repositories' concern, not the services'.

type fakeUsersRepo struct {
	mu    sync.Mutex
	users []*models.User
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrorLoginAlreadyExists
		}
	}
	clone := *u
	clone.ID = "user-" + u.UserName
	f.users = append(f.users, &clone)
	out := clone
	return &out, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.UserName == userName {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeRefreshRepo struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: make(map[string]*models.RefreshToken)}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *t
	return &clone, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
	return nil
}

type fakeDocsRepo struct {
	mu        sync.Mutex
	docs      []*models.Document
	names     []*models.DocumentRef
	createErr error
}

func (f *fakeDocsRepo) CreateIfAbsent(ctx context.Context, doc *models.Document) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return false, f.createErr
	}
	for _, d := range f.docs {
		if d.Fingerprint == doc.Fingerprint {
			return false, nil
		}
	}
	clone := *doc
	clone.CreatedAt = time.Now()
	f.docs = append(f.docs, &clone)
	return true, nil
}

func (f *fakeDocsRepo) AddName(ctx context.Context, name, fp string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.names {
		if n.Name == name && n.Fingerprint == fp {
			return nil
		}
	}
	f.names = append(f.names, &models.DocumentRef{Name: name, Fingerprint: fp, CreatedAt: time.Now()})
	return nil
}

func (f *fakeDocsRepo) GetByName(ctx context.Context, name string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.names {
		if n.Name == name {
			for _, d := range f.docs {
				if d.Fingerprint == n.Fingerprint {
					clone := *d
					return &clone, nil
				}
			}
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeDocsRepo) GetByFingerprint(ctx context.Context, fp string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if d.Fingerprint == fp {
			clone := *d
			return &clone, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeDocsRepo) List(ctx context.Context) ([]*models.DocumentRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.DocumentRef, len(f.names))
	copy(out, f.names)
	return out, nil
}

func (f *fakeDocsRepo) ListSignatures(ctx context.Context, ownerID string) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Document
	for _, d := range f.docs {
		if ownerID != "" && d.OwnerID != ownerID {
			continue
		}
		clone := *d
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeDocsRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.docs)), nil
}

type fakeAuditRepo struct {
	mu        sync.Mutex
	entries   []*models.AuditEntry
	insertErr error
}

func (f *fakeAuditRepo) Insert(ctx context.Context, e *models.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	clone := *e
	f.entries = append(f.entries, &clone)
	return nil
}

func (f *fakeAuditRepo) SelectAll(ctx context.Context) ([]*models.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.AuditEntry, len(f.entries))
	for i, e := range f.entries {
		clone := *e
		out[i] = &clone
	}
	return out, nil
}

func (f *fakeAuditRepo) SelectLast(ctx context.Context) (*models.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return nil, common.ErrorNotFound
	}
	clone := *f.entries[len(f.entries)-1]
	return &clone, nil
}

func (f *fakeAuditRepo) CountByAction(ctx context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, e := range f.entries {
		counts[e.Action]++
	}
	return counts, nil
}

func (f *fakeAuditRepo) Count(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.entries)), nil
}

func (f *fakeAuditRepo) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Action
	}
	return out
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	d *fakeDocsRepo
	a *fakeAuditRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: &fakeUsersRepo{},
		r: newFakeRefreshRepo(),
		d: &fakeDocsRepo{},
		a: &fakeAuditRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.u }

func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }

func (m *fakeRepoManager) Documents(db dbx.DBTX) documentsrepo.Repository { return m.d }

func (m *fakeRepoManager) AuditEntries(db dbx.DBTX) auditrepo.Repository { return m.a }
