// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, and issuing/refreshing JWTs
// plus server-stored refresh tokens. Auth actions are recorded in the same
// audit ledger as vault operations, so there is a single source of truth.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vinithareddy09/TraceGuard/internal/common"
	"github.com/Vinithareddy09/TraceGuard/internal/dbx"
	"github.com/Vinithareddy09/TraceGuard/internal/ledger"
	"github.com/Vinithareddy09/TraceGuard/internal/server/auth"
	"github.com/Vinithareddy09/TraceGuard/internal/server/config"
	"github.com/Vinithareddy09/TraceGuard/internal/server/models"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/repomanager"
	"golang.org/x/crypto/argon2"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService is the authentication gateway:
// - Register: create users
// - Login: verify credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
//
// Credentials never travel further than this service; everything downstream
// sees only the opaque user ID.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	ledger                       *ledger.Ledger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories, the audit
// ledger, and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, lg *ledger.Ledger, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		ledger:                       lg,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// deriveVerifier hashes a password with argon2id under the given salt. The
// verifier is what gets stored; the password itself never does.
func deriveVerifier(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// Register creates a new user with a fresh random salt and an argon2id
// verifier, then records the registration in the audit ledger. A duplicate
// username yields common.ErrorLoginAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	salt := common.RandomBytes(32)
	user := &models.User{
		UserName: username,
		Salt:     salt,
		Verifier: deriveVerifier([]byte(password), salt),
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorLoginAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if _, err := s.ledger.Append(ctx, ledger.ActionRegister, "", u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) checkVerifier(verifier, candidate []byte) bool {
	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}

// Login verifies the password against the stored verifier and, on success,
// returns a new TokenPair and records the login in the audit ledger. Failed
// attempts are indistinguishable between unknown user and wrong password.
func (s *UserService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !s.checkVerifier(user.Verifier, deriveVerifier([]byte(password), user.Salt)) {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.Append(ctx, ledger.ActionLogin, "", user.ID); err != nil {
		return nil, err
	}
	return pair, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// Authenticate resolves a bearer access token to the opaque user identity
// supplied to document operations.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (string, error) {
	return auth.GetUserIDFromToken(accessToken, s.jwtSecret)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string, db dbx.DBTX) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.RandomHexToken(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.RefreshTokens(db)
	if err := repo.Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
