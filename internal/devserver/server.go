package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/store"
)

// Server runs the development notifications service.
type Server struct {
	cfg    model.DevServerConfig
	store  store.Store
	gen    *Generator
	engine *gin.Engine
	log    *zap.Logger
}

// New assembles a server over s. The engine is ready to serve once New
// returns; call Run to listen on cfg.Addr.
func New(cfg model.DevServerConfig, s store.Store, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	reg := prometheus.NewRegistry()
	gen := NewGenerator(uint64(time.Now().UnixNano()))
	handler := NewHandler(s, gen, NewMetrics(reg), logger)

	return &Server{
		cfg:    cfg,
		store:  s,
		gen:    gen,
		engine: NewRouter(handler, cfg.Token, reg, logger),
		log:    logger,
	}
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Seed fills an empty store with cfg.Seed backdated notifications.
func (s *Server) Seed(ctx context.Context) error {
	if s.cfg.Seed <= 0 {
		return nil
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	created, err := s.store.CreateNotifications(ctx, s.gen.Backfill(s.cfg.Seed))
	if err != nil {
		return fmt.Errorf("seeding notifications: %w", err)
	}
	s.log.Info("seeded notifications", zap.Int("count", len(created)))
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("devserver listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving on %s: %w", s.cfg.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down devserver: %w", err)
		}
		return nil
	})
	return g.Wait()
}
