package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestArchive(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestArchivePublishHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestArchive(t)

	last, err := s.LastPublish(ctx)
	if err != nil {
		t.Fatalf("last publish: %v", err)
	}
	if last != nil {
		t.Fatalf("expected no publish record, got %+v", last)
	}

	before := time.Now().UTC().Add(-time.Second)

	if err := s.RecordPublish(ctx, 101, 42); err != nil {
		t.Fatalf("record publish: %v", err)
	}
	if err := s.RecordPublish(ctx, 102, 7); err != nil {
		t.Fatalf("record publish: %v", err)
	}

	last, err = s.LastPublish(ctx)
	if err != nil {
		t.Fatalf("last publish: %v", err)
	}
	if last == nil {
		t.Fatal("expected a publish record")
	}
	if diff := cmp.Diff(102, last.MessageID); diff != "" {
		t.Errorf("message id (-want +got):\n%s", diff)
	}
	if last.PublishedAt.Before(before) {
		t.Errorf("published at %v is before test start %v", last.PublishedAt, before)
	}

	count, err := s.CountPublished(ctx)
	if err != nil {
		t.Fatalf("count published: %v", err)
	}
	if diff := cmp.Diff(2, count); diff != "" {
		t.Errorf("count (-want +got):\n%s", diff)
	}
}

func TestArchiveSeenItems(t *testing.T) {
	ctx := context.Background()
	s := newTestArchive(t)

	seen, err := s.IsSeen(ctx, "https://example.com/rss", "guid-1")
	if err != nil {
		t.Fatalf("is seen: %v", err)
	}
	if seen {
		t.Error("unseen item reported as seen")
	}

	if err := s.MarkSeen(ctx, "https://example.com/rss", "guid-1"); err != nil {
		t.Fatalf("mark seen: %v", err)
	}
	// Marking twice must not fail.
	if err := s.MarkSeen(ctx, "https://example.com/rss", "guid-1"); err != nil {
		t.Fatalf("mark seen twice: %v", err)
	}

	seen, err = s.IsSeen(ctx, "https://example.com/rss", "guid-1")
	if err != nil {
		t.Fatalf("is seen: %v", err)
	}
	if !seen {
		t.Error("marked item not reported as seen")
	}

	// Same GUID under another feed is independent.
	seen, err = s.IsSeen(ctx, "https://other.example.com/rss", "guid-1")
	if err != nil {
		t.Fatalf("is seen: %v", err)
	}
	if seen {
		t.Error("seen state leaked across feeds")
	}
}
