package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/notifeed/internal/devserver"
	"github.com/nhle/notifeed/internal/store"
)

var devserverFlags struct {
	addr string
	db   string
}

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local notifications service for development",
	Long: "devserver serves the notifications API from a SQLite database, seeded\n" +
		"with sample notifications on first start. Requests need the bearer\n" +
		"token from devserver.token.",
	Args: cobra.NoArgs,
	RunE: runDevserver,
}

func init() {
	f := devserverCmd.Flags()
	f.StringVar(&devserverFlags.addr, "addr", "", "Listen address (default: devserver.addr)")
	f.StringVar(&devserverFlags.db, "db", "", "SQLite path (default: devserver.db_path)")
}

func runDevserver(cmd *cobra.Command, _ []string) error {
	cfg := env.cfg.DevServer
	if devserverFlags.addr != "" {
		cfg.Addr = devserverFlags.addr
	}
	if devserverFlags.db != "" {
		cfg.DBPath = devserverFlags.db
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	s, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := devserver.New(cfg, s, env.log)
	if err := srv.Seed(ctx); err != nil {
		return err
	}
	return srv.Run(ctx)
}
