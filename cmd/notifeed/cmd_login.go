package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/notifeed/internal/credential"
	"github.com/nhle/notifeed/internal/ui/setup"
)

var loginFlags struct {
	url   string
	token string
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the service URL and API token",
	Long: "login checks the token against the service, stores it in the system\n" +
		"keyring, and saves the URL to the config file. Without --token the\n" +
		"token is prompted for.",
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	f := loginCmd.Flags()
	f.StringVar(&loginFlags.url, "url", "", "Service base URL (default: current config)")
	f.StringVar(&loginFlags.token, "token", "", "API token (prompted when empty)")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if env.creds == nil {
		return errors.New("no keyring available to store the token")
	}

	s := setup.Settings{
		BaseURL: strings.TrimRight(firstNonEmpty(loginFlags.url, env.cfg.Server.BaseURL), "/"),
		Token:   strings.TrimSpace(loginFlags.token),
	}
	if s.Token == "" {
		err := huh.NewInput().
			Title("API token for " + s.BaseURL).
			EchoMode(huh.EchoModePassword).
			Value(&s.Token).
			Run()
		if err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
		s.Token = strings.TrimSpace(s.Token)
	}
	if s.Token == "" {
		return errors.New("token is required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), env.cfg.Server.Timeout())
	defer cancel()
	if err := setup.ProbeService(ctx, s); err != nil {
		return fmt.Errorf("checking %s: %w", s.BaseURL, err)
	}

	if err := env.creds.Set(credential.TokenKey, s.Token); err != nil {
		return err
	}
	cfg := *env.cfg
	cfg.Server.BaseURL = s.BaseURL
	if err := saveConfig(&cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s.\n", s.BaseURL)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if env.creds == nil {
		return errors.New("no keyring available")
	}
	if err := env.creds.Delete(credential.TokenKey); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
