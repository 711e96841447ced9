package store

import (
	"context"
	"errors"

	"github.com/nhle/notifeed/internal/model"
)

// ErrNotFound is returned when a notification id does not exist.
var ErrNotFound = errors.New("notification not found")

// Store defines the persistence interface behind the development server.
type Store interface {
	// ListNotifications returns notifications matching the filter,
	// newest first.
	ListNotifications(ctx context.Context, filter model.Filter) ([]model.Notification, error)

	// CreateNotifications inserts a batch, assigning ids where missing.
	CreateNotifications(ctx context.Context, items []model.Notification) ([]model.Notification, error)

	// MarkRead marks one notification as read and reports whether it was
	// unread before. Unknown ids yield ErrNotFound.
	MarkRead(ctx context.Context, id model.ID) (bool, error)

	// MarkAllRead marks every notification as read and reports how many
	// changed.
	MarkAllRead(ctx context.Context) (int64, error)

	// Count returns the total number of notifications.
	Count(ctx context.Context) (int, error)
}
