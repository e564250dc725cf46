package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seqlab/biolapse/internal/debug"
	"github.com/seqlab/biolapse/internal/journal"
	"github.com/seqlab/biolapse/internal/store"
)

// Server exposes a read-only status API over the session state and the
// capture journal. It never drives the hardware: captures keep coming from
// cron-spawned invocations while the server runs.
type Server struct {
	store      *store.Store
	journal    *journal.Journal
	httpServer *http.Server
}

// NewServer builds the status server on addr.
func NewServer(addr string, st *store.Store, j *journal.Journal) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		store:   st,
		journal: j,
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}

	engine.GET("/health", s.handleHealth)
	engine.GET("/api/session", s.handleSession)
	engine.GET("/api/captures", s.handleCaptures)
	engine.GET("/api/captures/latest/image", s.handleLatestImage)

	return s
}

// Handler returns the underlying HTTP handler (used by tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		debug.Info("Status server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
