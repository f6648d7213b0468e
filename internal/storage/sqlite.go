package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"repost_bot/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// PublishRecord is one entry of the durable publish history.
type PublishRecord struct {
	MessageID   int
	Chars       int
	PublishedAt time.Time
}

// SQLite is the history archive: successful publications and RSS items
// already handed to the pipeline. Pipeline state itself lives in the
// plain-text stores; this database only answers status queries and keeps
// RSS polling from resubmitting old items.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// RecordPublish appends a successful publication to the history.
func (s *SQLite) RecordPublish(ctx context.Context, messageID, chars int) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO publish_history (message_id, chars, published_at) VALUES (?, ?, ?)`,
		messageID, chars, now,
	)
	if err != nil {
		return fmt.Errorf("insert publish record: %w", err)
	}
	return nil
}

// LastPublish returns the most recent publication, or nil when none exists.
func (s *SQLite) LastPublish(ctx context.Context) (*PublishRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT message_id, chars, published_at FROM publish_history ORDER BY id DESC LIMIT 1`,
	)
	var r PublishRecord
	var at string
	if err := row.Scan(&r.MessageID, &r.Chars, &at); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan publish record: %w", err)
	}
	r.PublishedAt, _ = time.Parse(timeLayout, at)
	return &r, nil
}

// CountPublished returns the lifetime number of recorded publications.
func (s *SQLite) CountPublished(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM publish_history`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count publish history: %w", err)
	}
	return count, nil
}

// MarkSeen records that an RSS item has been handed to the pipeline.
func (s *SQLite) MarkSeen(ctx context.Context, feedURL, guid string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO rss_seen (feed_url, guid) VALUES (?, ?)`,
		feedURL, guid,
	)
	if err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// IsSeen checks whether an RSS item has already been handed to the pipeline.
func (s *SQLite) IsSeen(ctx context.Context, feedURL, guid string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rss_seen WHERE feed_url = ? AND guid = ?`,
		feedURL, guid,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check seen: %w", err)
	}
	return count > 0, nil
}
