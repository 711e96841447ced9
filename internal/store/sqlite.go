package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/nhle/notifeed/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// notificationRow is the database shape of a notification.
type notificationRow struct {
	ID        string    `db:"id"`
	Type      string    `db:"type"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

func (r notificationRow) toModel() model.Notification {
	return model.Notification{
		ID:        model.ID(r.ID),
		Type:      model.ParseType(r.Type),
		Title:     r.Title,
		Message:   r.Message,
		Read:      r.Read,
		CreatedAt: r.CreatedAt,
	}
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// An in-memory database exists per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// ListNotifications returns notifications matching the filter, newest first.
func (s *SQLiteStore) ListNotifications(
	ctx context.Context,
	filter model.Filter,
) ([]model.Notification, error) {
	var (
		where []string
		args  []any
	)
	if filter.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(filter.Type))
	}
	if filter.UnreadOnly {
		where = append(where, "read = 0")
	}

	query := "SELECT id, type, title, message, read, created_at FROM notifications"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}

	items := make([]model.Notification, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toModel())
	}
	return items, nil
}

// CreateNotifications inserts a batch in one transaction. Missing ids are
// filled with UUIDs and a zero CreatedAt becomes the current time.
func (s *SQLiteStore) CreateNotifications(
	ctx context.Context,
	items []model.Notification,
) ([]model.Notification, error) {
	if len(items) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	created := make([]model.Notification, 0, len(items))
	for _, n := range items {
		if n.ID == "" {
			n.ID = model.ID(uuid.New().String())
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		n.CreatedAt = n.CreatedAt.UTC()
		n.Type = model.ParseType(string(n.Type))

		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO notifications (id, type, title, message, read, created_at)
			VALUES (:id, :type, :title, :message, :read, :created_at)`,
			notificationRow{
				ID:        string(n.ID),
				Type:      string(n.Type),
				Title:     n.Title,
				Message:   n.Message,
				Read:      n.Read,
				CreatedAt: n.CreatedAt,
			},
		)
		if err != nil {
			return nil, fmt.Errorf("inserting notification %s: %w", n.ID, err)
		}
		created = append(created, n)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing notifications: %w", err)
	}
	return created, nil
}

// MarkRead marks a single notification as read and reports whether it was
// unread before.
func (s *SQLiteStore) MarkRead(ctx context.Context, id model.ID) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ? AND read = 0", string(id),
	)
	if err != nil {
		return false, fmt.Errorf("marking notification %s as read: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	if n > 0 {
		return true, nil
	}

	var exists int
	if err := s.db.GetContext(ctx, &exists,
		"SELECT COUNT(*) FROM notifications WHERE id = ?", string(id),
	); err != nil {
		return false, fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	if exists == 0 {
		return false, fmt.Errorf("marking notification %s as read: %w", id, ErrNotFound)
	}
	return false, nil
}

// MarkAllRead marks every unread notification as read.
func (s *SQLiteStore) MarkAllRead(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET read = 1 WHERE read = 0")
	if err != nil {
		return 0, fmt.Errorf("marking all notifications as read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("marking all notifications as read: %w", err)
	}
	return n, nil
}

// Count returns the total number of notifications.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM notifications"); err != nil {
		return 0, fmt.Errorf("counting notifications: %w", err)
	}
	return n, nil
}
