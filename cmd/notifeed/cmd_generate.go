package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Ask the service to create new notifications",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctrl := newController()
	ctx, cancel := context.WithTimeout(cmd.Context(), 3*env.cfg.Server.Timeout())
	defer cancel()

	if err := ctrl.Refresh(ctx); err != nil {
		return fmt.Errorf("%s: %w", ctrl.Snapshot().Err, err)
	}
	before := len(ctrl.Snapshot().Roster)

	notice, err := ctrl.GenerateDynamic(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", notice.Text, err)
	}

	snap := ctrl.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d new, %d unread.\n",
		notice.Text, len(snap.Roster)-before, snap.UnreadCount())
	return nil
}
