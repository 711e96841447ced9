// Package feed holds the notification feed controller: the view state of
// one feed page and the commands that change it.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/notifeed/internal/model"
	"github.com/nhle/notifeed/internal/remote"
)

var (
	// ErrUnknownNotification is returned when a command names an id that is
	// not in the current roster.
	ErrUnknownNotification = errors.New("notification not in roster")

	// ErrBusy is returned when a generation request is already pending.
	ErrBusy = errors.New("generation already in progress")

	// ErrSuperseded is returned by RunFetch when a newer fetch was started
	// before this one completed. Its result has been discarded.
	ErrSuperseded = errors.New("fetch superseded by a newer request")
)

// User-facing messages. Failures of any kind collapse to one of these.
const (
	msgFetchFailed    = "Failed to load notifications"
	msgSessionExpired = "session expired, run `notifeed login`"
)

// API is the remote notifications service as seen by the controller.
type API interface {
	List(ctx context.Context, target model.QueryTarget) ([]model.Notification, error)
	MarkRead(ctx context.Context, id model.ID) error
	MarkAllRead(ctx context.Context) error
	GenerateDynamic(ctx context.Context) error
}

// Status is the state of the page. Exactly one holds at a time.
type Status int

const (
	StatusLoading Status = iota
	StatusError
	StatusReady
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Snapshot is a copy of the controller state. It is safe to keep and read
// after the controller has moved on.
type Snapshot struct {
	Filter     model.Filter
	Status     Status
	Err        string
	Roster     []model.Notification
	Generating bool
}

// UnreadCount returns the number of unread notifications in the roster.
func (s Snapshot) UnreadCount() int {
	n := 0
	for _, item := range s.Roster {
		if !item.Read {
			n++
		}
	}
	return n
}

// Ticket identifies one fetch started by StartFetch.
type Ticket struct {
	seq    uint64
	target model.QueryTarget
}

// Target returns the query target the fetch will request.
func (t Ticket) Target() model.QueryTarget { return t.target }

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for fetch and mutation failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithFilter sets the initial filter. Invalid filters are ignored.
func WithFilter(f model.Filter) Option {
	return func(c *Controller) {
		if f.Validate() == nil {
			c.filter = f
		}
	}
}

// Controller owns the roster, filter, and status of one feed page.
// All methods are safe for concurrent use; blocking calls hold no lock
// while waiting on the service.
type Controller struct {
	api API
	log *zap.Logger

	mu         sync.Mutex
	filter     model.Filter
	status     Status
	errMsg     string
	roster     []model.Notification
	generating bool
	seq        uint64
}

// New creates a controller in the Loading state with an empty roster.
// The first fetch is started by the caller (StartFetch or Refresh).
func New(api API, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		log:    zap.NewNop(),
		status: StatusLoading,
		roster: []model.Notification{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	roster := make([]model.Notification, len(c.roster))
	copy(roster, c.roster)
	return Snapshot{
		Filter:     c.filter,
		Status:     c.status,
		Err:        c.errMsg,
		Roster:     roster,
		Generating: c.generating,
	}
}

// UnreadCount returns the number of unread notifications in the roster.
func (c *Controller) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Roster: c.roster}.UnreadCount()
}

// Generating reports whether a generation request is pending.
func (c *Controller) Generating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generating
}

// StartFetch moves the page to Loading, clears any previous error, and
// reserves a sequence number for a new fetch of the current filter.
func (c *Controller) StartFetch() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startFetchLocked()
}

func (c *Controller) startFetchLocked() Ticket {
	c.seq++
	c.status = StatusLoading
	c.errMsg = ""
	return Ticket{seq: c.seq, target: model.ResolveTarget(c.filter)}
}

// RunFetch performs the request reserved by StartFetch. The roster is
// replaced only when t is still the newest fetch; otherwise the result is
// dropped and ErrSuperseded returned. On failure the previous roster is
// kept and the page moves to Error.
func (c *Controller) RunFetch(ctx context.Context, t Ticket) error {
	items, err := c.api.List(ctx, t.target)

	c.mu.Lock()
	defer c.mu.Unlock()

	if t.seq != c.seq {
		c.log.Debug("discarding stale fetch",
			zap.Uint64("seq", t.seq),
			zap.Uint64("latest", c.seq),
		)
		return ErrSuperseded
	}

	if err != nil {
		c.status = StatusError
		c.errMsg = fetchErrorMessage(err)
		c.log.Warn("fetching notifications failed",
			zap.Stringer("target", t.target.Kind),
			zap.Error(err),
		)
		return err
	}

	c.roster = dedupe(items)
	c.status = StatusReady
	c.errMsg = ""
	return nil
}

// Refresh fetches the roster for the current filter.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.RunFetch(ctx, c.StartFetch())
}

// SetFilter replaces the filter and starts a fetch for it. The returned
// ticket must be passed to RunFetch.
func (c *Controller) SetFilter(f model.Filter) (Ticket, error) {
	if err := f.Validate(); err != nil {
		return Ticket{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	return c.startFetchLocked(), nil
}

// MarkAsRead marks one notification as read on the service and, once the
// service confirms, in the roster.
func (c *Controller) MarkAsRead(ctx context.Context, id model.ID) (Notice, error) {
	c.mu.Lock()
	found := indexOf(c.roster, id) >= 0
	c.mu.Unlock()
	if !found {
		return errorNotice("Notification no longer in the list"),
			fmt.Errorf("marking %s as read: %w", id, ErrUnknownNotification)
	}

	if err := c.api.MarkRead(ctx, id); err != nil {
		c.log.Warn("marking notification read failed",
			zap.String("id", string(id)),
			zap.Error(err),
		)
		return errorNotice("Failed to mark notification as read"), err
	}

	c.mu.Lock()
	c.roster = markRead(c.roster, id)
	c.mu.Unlock()

	return successNotice("Notification marked as read"), nil
}

// MarkAllAsRead marks every notification as read on the service and, once
// the service confirms, in the roster.
func (c *Controller) MarkAllAsRead(ctx context.Context) (Notice, error) {
	if err := c.api.MarkAllRead(ctx); err != nil {
		c.log.Warn("marking all notifications read failed", zap.Error(err))
		return errorNotice("Failed to mark all notifications as read"), err
	}

	c.mu.Lock()
	c.roster = markAllRead(c.roster)
	c.mu.Unlock()

	return successNotice("All notifications marked as read"), nil
}

// GenerateDynamic asks the service for new notifications and then refetches
// the roster. While the request is pending Snapshot().Generating is true.
// The returned error covers generation only; the refetch outcome is
// reflected in the status.
func (c *Controller) GenerateDynamic(ctx context.Context) (Notice, error) {
	c.mu.Lock()
	if c.generating {
		c.mu.Unlock()
		return Notice{}, ErrBusy
	}
	c.generating = true
	c.mu.Unlock()

	err := c.api.GenerateDynamic(ctx)

	c.mu.Lock()
	c.generating = false
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("generating notifications failed", zap.Error(err))
		return errorNotice("Failed to generate notifications"), err
	}

	if ferr := c.Refresh(ctx); ferr != nil && !errors.Is(ferr, ErrSuperseded) {
		return successNotice("New notifications generated, but reloading failed"), nil
	}
	return successNotice("New notifications generated"), nil
}

// fetchErrorMessage turns any fetch failure into the banner text.
func fetchErrorMessage(err error) string {
	if remote.IsAuthError(err) {
		return msgFetchFailed + ": " + msgSessionExpired
	}
	return msgFetchFailed
}
