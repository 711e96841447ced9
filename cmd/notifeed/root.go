package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/notifeed/internal/app"
	"github.com/nhle/notifeed/internal/credential"
	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/logging"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/remote"
)

// version is set at build time via -ldflags.
var version = "dev"

// tokenEnv overrides the keyring token when set.
const tokenEnv = "NOTIFEED_TOKEN"

var rootFlags struct {
	configPath string
	verbose    bool
}

// env is what every subcommand shares once flags are parsed.
var env struct {
	cfg   *model.AppConfig
	log   *zap.Logger
	creds *credential.Store
	auth  credential.Authenticator
}

var rootCmd = &cobra.Command{
	Use:   "notifeed",
	Short: "Read and manage notifications from the terminal",
	Long: "notifeed shows the notification feed of a remote service, filters it by\n" +
		"type and read state, and marks notifications as read.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPostRun: func(*cobra.Command, []string) {
		if env.log != nil {
			_ = env.log.Sync()
		}
	},
	RunE: runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", model.DefaultConfigPath(), "Config file path")
	pf.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Also log to stderr (not in the interactive view)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(readAllCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(devserverCmd)
	rootCmd.Version = version
	rootCmd.PersistentPreRunE = prepare
}

// logsToConsole reports whether cmd also logs to stderr. The interactive
// view owns the terminal, so the root command never does.
func logsToConsole(cmd *cobra.Command, verbose bool) bool {
	if cmd == devserverCmd {
		return true
	}
	return verbose && cmd.HasParent()
}

// prepare loads config, the logger, and the credential chain.
func prepare(cmd *cobra.Command, _ []string) error {
	cfg, err := model.LoadConfig(rootFlags.configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		File:    cfg.Log.File,
		Level:   cfg.Log.Level,
		Console: logsToConsole(cmd, rootFlags.verbose),
	})
	if err != nil {
		return err
	}

	var fallback credential.Authenticator
	creds, err := credential.Open(model.ConfigDir())
	if err != nil {
		logger.Warn("keyring unavailable", zap.Error(err))
	} else {
		fallback = credential.NewKeyringAuthenticator(creds)
	}

	env.cfg = cfg
	env.log = logger
	env.creds = creds
	env.auth = credential.FromEnv(tokenEnv, fallback)
	return nil
}

// saveConfig writes cfg to the active config file.
func saveConfig(cfg *model.AppConfig) error {
	return model.SaveConfig(rootFlags.configPath, cfg)
}

func newClient() *remote.Client {
	return remote.NewClient(env.cfg.Server.BaseURL, env.auth,
		remote.WithTimeout(env.cfg.Server.Timeout()),
		remote.WithMaxRetries(env.cfg.Server.MaxRetries),
		remote.WithLogger(env.log),
	)
}

func newController(opts ...feed.Option) *feed.Controller {
	return feed.New(newClient(), append([]feed.Option{feed.WithLogger(env.log)}, opts...)...)
}

func runTUI(_ *cobra.Command, _ []string) error {
	env.log.Info("starting interactive feed", zap.String("base_url", env.cfg.Server.BaseURL))

	m := app.New(app.Deps{
		Config:     env.cfg,
		ConfigPath: rootFlags.configPath,
		Creds:      env.creds,
		Auth:       env.auth,
		Logger:     env.log,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running interactive feed: %w", err)
	}
	return nil
}
