// Package httpapi exposes the document store and auth gateway as a JSON
// HTTP API. Handlers stay thin: decode, call a service, map the error,
// encode. All domain rules live in the services layer.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Vinithareddy09/TraceGuard/internal/logging"
	"github.com/Vinithareddy09/TraceGuard/internal/server/services"
)

type Server struct {
	address   string
	logger    logging.Logger
	users     *services.UserService
	documents *services.DocumentService
}

func NewServer(address string, l logging.Logger, us *services.UserService, ds *services.DocumentService) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "httpapi"),
		users:     us,
		documents: ds,
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /refresh", s.handleRefresh)

	mux.Handle("POST /upload", s.withAuth(s.handleUpload))
	mux.Handle("POST /access", s.withAuth(s.handleAccess))
	mux.Handle("POST /read", s.withAuth(s.handleRead))
	mux.Handle("POST /reuse_check", s.withAuth(s.handleReuseCheck))
	mux.Handle("GET /documents", s.withAuth(s.handleDocuments))
	mux.Handle("GET /audit", s.withAuth(s.handleAudit))
	mux.Handle("GET /stats", s.withAuth(s.handleStats))
	mux.Handle("POST /archive/presign", s.withAuth(s.handleArchivePresignPut))
	mux.Handle("GET /archive/presign", s.withAuth(s.handleArchivePresignGet))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
