package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/legalhold/custodian/internal/config"
	"github.com/legalhold/custodian/pkg/lifecycle"
)

// httpServer binds the listener into the lifecycle: serve on Start,
// drain with a deadline when shutdown begins.
type httpServer struct {
	inner           *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler, logger *slog.Logger) *httpServer {
	return &httpServer{
		inner: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeoutDuration(),
			WriteTimeout: cfg.WriteTimeoutDuration(),
		},
		logger:          logger.With("system", "http"),
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}
}

func (s *httpServer) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown(func() {
		<-lc.Context().Done()

		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.inner.Shutdown(ctx); err != nil {
			s.logger.Error("listener drain failed", "error", err)
			return
		}
		s.logger.Info("listener drained")
	})

	go func() {
		s.logger.Info("listening", "addr", s.inner.Addr)
		err := s.inner.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("listener failed", "error", err)
		}
	}()

	return nil
}
