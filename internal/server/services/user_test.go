package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Vinithareddy09/TraceGuard/internal/common"
	"github.com/Vinithareddy09/TraceGuard/internal/ledger"
	"github.com/Vinithareddy09/TraceGuard/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(t *testing.T) (*UserService, *fakeRepoManager, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()

	m := newFakeRepoManager()
	return NewUserService(db, m, ledger.New(m.a), cfg), m, mock
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	svc, m, _ := newTestUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)

	pair, err := svc.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	userID, err := svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)

	assert.Equal(t, []string{"register", "login"}, m.a.actions())
}

func TestUserService_Register_DuplicateLogin(t *testing.T) {
	svc, m, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, common.ErrorLoginAlreadyExists)
	assert.Equal(t, []string{"register"}, m.a.actions())
}

func TestUserService_Login_Failures(t *testing.T) {
	svc, m, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)

	tests := []struct {
		name     string
		login    string
		password string
	}{
		{"wrong password", "alice", "battery staple"},
		{"unknown user", "bob", "correct horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.login, tt.password)
			assert.ErrorIs(t, err, common.ErrorUnauthorized)
		})
	}

	// Failed attempts mint nothing and are not recorded.
	assert.Empty(t, m.r.tokens)
	assert.Equal(t, []string{"register"}, m.a.actions())
}

func TestUserService_RefreshToken_Rotates(t *testing.T) {
	svc, _, mock := newTestUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "correct horse")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "alice", "correct horse")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	next, err := svc.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, next.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	userID, err := svc.Authenticate(ctx, next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)

	// The spent token is gone.
	_, err = svc.RefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_RefreshToken_Expired(t *testing.T) {
	svc, m, _ := newTestUserService(t)
	ctx := context.Background()

	require.NoError(t, m.r.Create(ctx, "user1", "stale-token", -time.Minute))

	_, err := svc.RefreshToken(ctx, "stale-token")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestUserService_Authenticate_BadToken(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	_, err := svc.Authenticate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
