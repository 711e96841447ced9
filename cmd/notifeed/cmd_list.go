package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/theme"
)

var listFlags struct {
	typ    string
	unread bool
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the notification feed",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	f := listCmd.Flags()
	f.StringVarP(&listFlags.typ, "type", "t", "", "Only this type (animal, plant, weather, medical)")
	f.BoolVarP(&listFlags.unread, "unread", "u", false, "Only unread notifications")
}

func runList(cmd *cobra.Command, _ []string) error {
	filter := model.Filter{Type: model.Type(listFlags.typ), UnreadOnly: listFlags.unread}
	if err := filter.Validate(); err != nil {
		return err
	}

	ctrl := newController(feed.WithFilter(filter))
	ctx, cancel := context.WithTimeout(cmd.Context(), env.cfg.Server.Timeout())
	defer cancel()
	if err := ctrl.Refresh(ctx); err != nil {
		return fmt.Errorf("%s: %w", ctrl.Snapshot().Err, err)
	}

	printRoster(cmd.OutOrStdout(), ctrl.Snapshot(), time.Now())
	return nil
}

// printRoster writes the roster as a table followed by the unread count.
func printRoster(w io.Writer, snap feed.Snapshot, now time.Time) {
	if len(snap.Roster) == 0 {
		fmt.Fprintf(w, "No notifications (%s).\n", snap.Filter.Label())
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorSubtle)).
		Headers("", "ID", "TYPE", "TITLE", "WHEN")

	for _, n := range snap.Roster {
		mark := " "
		if !n.Read {
			mark = "●"
		}
		t.Row(mark, string(n.ID), theme.ForType(n.Type).Title, n.Title, feed.FormatDate(n.CreatedAt, now))
	}

	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%d unread of %d (%s)\n", snap.UnreadCount(), len(snap.Roster), snap.Filter.Label())
}
