package remote

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nhle/notifeed/internal/model"
)

// List fetches the roster for a query target, in server order.
func (c *Client) List(ctx context.Context, target model.QueryTarget) ([]model.Notification, error) {
	var items []model.Notification
	if err := c.Get(ctx, target.Path(), &items); err != nil {
		return nil, fmt.Errorf("listing %s notifications: %w", target.Kind, err)
	}
	if items == nil {
		items = []model.Notification{}
	}
	return items, nil
}

// MarkRead marks a single notification as read.
func (c *Client) MarkRead(ctx context.Context, id model.ID) error {
	path := "/notifications/" + url.PathEscape(string(id)) + "/read"
	if err := c.Put(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// MarkAllRead marks every notification of the caller as read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.Put(ctx, "/notifications/read-all", nil, nil); err != nil {
		return fmt.Errorf("marking all notifications as read: %w", err)
	}
	return nil
}

// GenerateDynamic asks the service to synthesise new notifications.
// The response body, if any, is ignored.
func (c *Client) GenerateDynamic(ctx context.Context) error {
	if err := c.Post(ctx, "/notifications/generate-dynamic", nil, nil); err != nil {
		return fmt.Errorf("generating notifications: %w", err)
	}
	return nil
}
