package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vidstats/vidstats/internal/analyzer"
	"github.com/vidstats/vidstats/internal/config"
	"github.com/vidstats/vidstats/internal/service"
)

type Server struct {
	cfg      *config.Config
	http     *http.Server
	store    *service.Store
	analyzer *analyzer.Analyzer
}

// New wires the HTTP surface around an already-constructed store and
// analyzer. The same analyzer instance should back every transport so
// all questions queue behind one gate. The analyzer may be nil when no
// model is configured; the ask endpoint is then not registered.
func New(cfg *config.Config, store *service.Store, an *analyzer.Analyzer) *Server {
	s := &Server{cfg: cfg, store: store, analyzer: an}

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.setupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) Run(ctx context.Context) error {
	log.Info().Str("addr", s.http.Addr).Msg("http server listening")

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
