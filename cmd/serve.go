package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mathtrail/mathtrail/internal/config"
	"github.com/mathtrail/mathtrail/internal/factgen"
	"github.com/mathtrail/mathtrail/internal/logger"
	"github.com/mathtrail/mathtrail/internal/mastery"
	"github.com/mathtrail/mathtrail/internal/qcache"
	"github.com/mathtrail/mathtrail/internal/server"
	"github.com/mathtrail/mathtrail/internal/session"
	"github.com/mathtrail/mathtrail/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the practice engine HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// runServe opens the store, wires the session service, and serves HTTP
// until interrupted.
func runServe(cmd *cobra.Command) error {
	// A missing .env is fine; env vars may come from anywhere.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	tracker := mastery.NewTracker(st.MasteryRepo())
	gen := factgen.New(rand.NewSource(time.Now().UnixNano()))
	cache := qcache.New(cfg.Cache.Capacity, cfg.Cache.TTL)
	svc := session.NewService(tracker, gen, st.CatalogRepo(), cache, log)

	// Periodic sweep keeps expired seen-sets from pinning memory between
	// lookups.
	sched := gocron.NewScheduler(time.UTC)
	if _, err := sched.Every(cfg.Cache.SweepInterval).Do(func() {
		removed := cache.Sweep()
		if removed > 0 {
			log.Debug("cache sweep", zap.Int("removed", removed))
		}
	}); err != nil {
		return fmt.Errorf("schedule cache sweep: %w", err)
	}
	sched.StartAsync()
	defer sched.Stop()

	router := server.NewRouter(server.NewHandler(svc, log), log)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.ListenAddr), zap.String("db", dbPath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
