package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/notifeed/internal/model"
)

var readCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark one notification as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

var readAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	Args:  cobra.NoArgs,
	RunE:  runReadAll,
}

func runRead(cmd *cobra.Command, args []string) error {
	ctrl := newController()
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*env.cfg.Server.Timeout())
	defer cancel()

	if err := ctrl.Refresh(ctx); err != nil {
		return fmt.Errorf("%s: %w", ctrl.Snapshot().Err, err)
	}
	notice, err := ctrl.MarkAsRead(ctx, model.ID(args[0]))
	if err != nil {
		return fmt.Errorf("%s: %w", notice.Text, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s. %d unread.\n", notice.Text, ctrl.UnreadCount())
	return nil
}

func runReadAll(cmd *cobra.Command, _ []string) error {
	ctrl := newController()
	ctx, cancel := context.WithTimeout(cmd.Context(), env.cfg.Server.Timeout())
	defer cancel()

	notice, err := ctrl.MarkAllAsRead(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", notice.Text, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), notice.Text+".")
	return nil
}
