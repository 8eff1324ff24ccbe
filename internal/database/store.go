package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the persistence operations required by the ingestion
// pipeline, the retention scheduler, and the maintenance tasks. It must be
// safe for concurrent use.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveMessage inserts a new message record and sets its ID.
	SaveMessage(ctx context.Context, message *Message) error

	// DeleteMessagesBefore deletes all messages with created_at strictly
	// before cutoff and returns the number of deleted rows.
	DeleteMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// RunMaintenance performs database maintenance (VACUUM).
	RunMaintenance(ctx context.Context) error
}

// sqlxStore implements Store using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store backed by sqlx. It requires a connected
// sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveMessage inserts a new message record.
func (s *sqlxStore) SaveMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("cannot save nil message")
	}
	if message.Author == "" {
		return fmt.Errorf("message must have a non-empty author")
	}
	if message.CreatedAt.IsZero() {
		return fmt.Errorf("message must have a non-zero created_at")
	}

	query := `
        INSERT INTO messages (author, channel, text, classification, translation, created_at)
        VALUES (:author, :channel, :text, :classification, :translation, :created_at);
    `

	result, err := s.db.NamedExecContext(ctx, query, message)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message", "author", message.Author, "channel", message.Channel, "error", err)
		return fmt.Errorf("failed to save message from %q: %w", message.Author, err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		message.ID = id
	} else {
		// Not fatal, the row is persisted either way.
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving message",
			"author", message.Author, "error", err)
	}

	s.logger.DebugContext(ctx, "Message saved",
		"message_id", message.ID, "author", message.Author, "channel", message.Channel)
	return nil
}

// DeleteMessagesBefore deletes all messages older than cutoff. Records with
// created_at equal to or after the cutoff are never touched.
func (s *sqlxStore) DeleteMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE created_at < ?`, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting messages before cutoff", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to delete messages before %s: %w", cutoff, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		s.logger.WarnContext(ctx, "Could not get deleted row count", "cutoff", cutoff, "error", err)
		return 0, nil
	}

	s.logger.DebugContext(ctx, "Deleted messages before cutoff", "cutoff", cutoff, "count", deleted)
	return deleted, nil
}

// RunMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed.")
	return nil
}
