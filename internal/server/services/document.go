package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vinithareddy09/TraceGuard/internal/common"
	"github.com/Vinithareddy09/TraceGuard/internal/dbx"
	"github.com/Vinithareddy09/TraceGuard/internal/fingerprint"
	"github.com/Vinithareddy09/TraceGuard/internal/ledger"
	"github.com/Vinithareddy09/TraceGuard/internal/reuse"
	"github.com/Vinithareddy09/TraceGuard/internal/server/config"
	"github.com/Vinithareddy09/TraceGuard/internal/server/models"
	"github.com/Vinithareddy09/TraceGuard/internal/server/repositories/repomanager"
	"github.com/Vinithareddy09/TraceGuard/internal/vault"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Stats are derived counters: document count from the collection, the rest
// from ledger entries grouped by action. Nothing here is separately
// maintained state that could drift.
type Stats struct {
	DocumentCount   int64 `json:"document_count"`
	AccessCount     int64 `json:"access_count"`
	ReuseEventCount int64 `json:"reuse_event_count"`
	AuditEntryCount int64 `json:"audit_entry_count"`
}

// DocumentService is the document store: it owns the document collection
// and the ledger's write path, and orchestrates the fingerprint engine,
// vault, reuse detector, and audit ledger for every externally-triggered
// operation. Every operation finishes by appending one ledger entry; an
// operation whose entry cannot be written is not reported successful.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	vault       *vault.Vault
	detector    *reuse.Detector
	ledger      *ledger.Ledger
	config      *config.Config
}

// NewDocumentService constructs the document store over its collaborators.
func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, v *vault.Vault, d *reuse.Detector, lg *ledger.Ledger, cfg *config.Config) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: m,
		vault:       v,
		detector:    d,
		ledger:      lg,
		config:      cfg,
	}
}

// Upload seals the plaintext, computes its content fingerprint and reuse
// signature, and stores the document. Re-uploading byte-identical canonical
// content is an idempotent success: no second row, but a fresh upload entry
// still lands in the ledger. The fingerprint is returned unconditionally.
func (s *DocumentService) Upload(ctx context.Context, name, text, userID string) (string, error) {
	fp := fingerprint.Sum(text)

	ciphertext, nonce, err := s.vault.Seal([]byte(text))
	if err != nil {
		return "", fmt.Errorf("sealing document: %w", err)
	}

	doc := &models.Document{
		ID:          uuid.NewString(),
		Name:        name,
		Fingerprint: fp,
		OwnerID:     userID,
		Ciphertext:  ciphertext,
		Nonce:       nonce,
		Signature:   reuse.EncodeSignature(s.detector.Signature(text)),
	}

	// Check-then-act on fingerprint uniqueness happens inside the database:
	// the unique constraint plus ON CONFLICT makes concurrent identical
	// uploads collapse into one row.
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Documents(tx)
		if _, err := repo.CreateIfAbsent(ctx, doc); err != nil {
			return err
		}
		return repo.AddName(ctx, name, fp)
	}); err != nil {
		return "", fmt.Errorf("%w: storing document: %v", common.ErrorStorageUnavailable, err)
	}

	if _, err := s.ledger.Append(ctx, ledger.ActionUpload, fp, userID); err != nil {
		return "", err
	}
	return fp, nil
}

// lookup resolves a name-or-fingerprint reference.
func (s *DocumentService) lookup(ctx context.Context, ref string) (*models.Document, error) {
	repo := s.repomanager.Documents(s.db)
	doc, err := repo.GetByName(ctx, ref)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}
	return repo.GetByFingerprint(ctx, ref)
}

// RecordAccess records an access event for the referenced document. An
// unknown reference yields common.ErrorNotFound and no ledger entry.
// Document content is not touched.
func (s *DocumentService) RecordAccess(ctx context.Context, ref, userID string) error {
	doc, err := s.lookup(ctx, ref)
	if err != nil {
		return err
	}
	_, err = s.ledger.Append(ctx, ledger.ActionAccess, doc.Fingerprint, userID)
	return err
}

// ReadDocument opens the sealed payload for its owner. Tampered ciphertext
// fails closed with common.ErrorAuthenticationFailed; callers other than
// the owner get common.ErrorUnauthorized. Reads are recorded as access
// events.
func (s *DocumentService) ReadDocument(ctx context.Context, ref, userID string) (string, error) {
	doc, err := s.lookup(ctx, ref)
	if err != nil {
		return "", err
	}
	if doc.OwnerID != userID {
		return "", common.ErrorUnauthorized
	}

	plaintext, err := s.vault.Open(doc.Ciphertext, doc.Nonce)
	if err != nil {
		return "", err
	}

	if _, err := s.ledger.Append(ctx, ledger.ActionAccess, doc.Fingerprint, userID); err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// ReuseCheck scores the candidate text against the stored corpus and
// returns matches above the configured threshold, highest first. The check
// itself is an auditable event: exactly one reuse_check entry is appended
// even when the match list is empty.
func (s *DocumentService) ReuseCheck(ctx context.Context, text, userID string) ([]reuse.Match, error) {
	owner := ""
	if s.config.ReuseScope == config.ReuseScopeOwner {
		owner = userID
	}

	docs, err := s.repomanager.Documents(s.db).ListSignatures(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: loading corpus: %v", common.ErrorStorageUnavailable, err)
	}

	corpus := make([]reuse.CorpusDoc, len(docs))
	for i, d := range docs {
		corpus[i] = reuse.CorpusDoc{
			Name:        d.Name,
			Fingerprint: d.Fingerprint,
			Signature:   reuse.DecodeSignature(d.Signature),
		}
	}

	matches, err := s.detector.FindMatches(ctx, text, corpus)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.Append(ctx, ledger.ActionReuseCheck, "", userID); err != nil {
		return nil, err
	}
	return matches, nil
}

// ListDocuments returns document metadata only; plaintext and ciphertext
// never leave the vault boundary.
func (s *DocumentService) ListDocuments(ctx context.Context) ([]*models.DocumentRef, error) {
	return s.repomanager.Documents(s.db).List(ctx)
}

// AuditTrail returns the full ledger, verified flags attached.
func (s *DocumentService) AuditTrail(ctx context.Context) ([]*models.AuditEntry, error) {
	return s.ledger.List(ctx)
}

// Stats derives the dashboard counters by counting: the document table for
// document_count, ledger actions for the rest.
func (s *DocumentService) Stats(ctx context.Context) (*Stats, error) {
	docs, err := s.repomanager.Documents(s.db).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: counting documents: %v", common.ErrorStorageUnavailable, err)
	}

	auditRepo := s.repomanager.AuditEntries(s.db)
	byAction, err := auditRepo.CountByAction(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: counting ledger actions: %v", common.ErrorStorageUnavailable, err)
	}
	total, err := auditRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: counting ledger entries: %v", common.ErrorStorageUnavailable, err)
	}

	return &Stats{
		DocumentCount:   docs,
		AccessCount:     byAction[ledger.ActionAccess],
		ReuseEventCount: byAction[ledger.ActionReuseCheck],
		AuditEntryCount: total,
	}, nil
}

// archiveStorageKey places archived payloads under a date-partitioned prefix.
func archiveStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("archive/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *DocumentService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return s3.NewPresignClient(client), nil
}

// PresignArchivePut returns a storage key and a presigned PUT URL so a
// client can archive a sealed payload to object storage without the
// ciphertext transiting this server twice.
func (s *DocumentService) PresignArchivePut(ctx context.Context) (string, string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := archiveStorageKey()

	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}
	return key, req.URL, nil
}

// PresignArchiveGet returns a presigned GET URL for a previously archived
// payload.
func (s *DocumentService) PresignArchiveGet(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
