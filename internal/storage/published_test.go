package storage

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestPublished(t *testing.T) (*FilePublished, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "published.txt")
	p, err := OpenFilePublished(path)
	if err != nil {
		t.Fatalf("open published: %v", err)
	}
	return p, path
}

func TestPublishedAddAndContains(t *testing.T) {
	p, _ := newTestPublished(t)

	if err := p.Add("первая запись"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !p.Contains("первая запись") {
		t.Error("added text not found")
	}
	if p.Contains("другая запись") {
		t.Error("missing text reported as present")
	}
}

func TestPublishedAddDuplicateIsNoop(t *testing.T) {
	p, _ := newTestPublished(t)

	for range 3 {
		if err := p.Add("одна и та же запись"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if diff := cmp.Diff(1, p.Len()); diff != "" {
		t.Errorf("length after duplicate adds (-want +got):\n%s", diff)
	}
}

func TestPublishedDurableReload(t *testing.T) {
	p, path := newTestPublished(t)

	entries := []string{"запись один", "запись два 👀", "entry three"}
	for _, e := range entries {
		if err := p.Add(e); err != nil {
			t.Fatalf("add %q: %v", e, err)
		}
	}

	reloaded, err := OpenFilePublished(path)
	if err != nil {
		t.Fatalf("reload published: %v", err)
	}
	if diff := cmp.Diff(entries, reloaded.All()); diff != "" {
		t.Errorf("reloaded entries mismatch (-want +got):\n%s", diff)
	}
	for _, e := range entries {
		if !reloaded.Contains(e) {
			t.Errorf("reloaded set missing %q", e)
		}
	}
}

func TestPublishedRejectsNewline(t *testing.T) {
	p, _ := newTestPublished(t)
	if err := p.Add("строка\nс переносом"); err == nil {
		t.Error("expected error for text containing a newline")
	}
	if diff := cmp.Diff(0, p.Len()); diff != "" {
		t.Errorf("length after rejected add (-want +got):\n%s", diff)
	}
}
