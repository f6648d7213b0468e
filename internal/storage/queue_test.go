package storage

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestQueue(t *testing.T) (*FileQueue, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queue.txt")
	q, err := OpenFileQueue(path)
	if err != nil {
		t.Fatalf("open queue: %v", err)
	}
	return q, path
}

func TestQueueFIFO(t *testing.T) {
	q, _ := newTestQueue(t)

	for _, item := range []string{"first", "second", "third"} {
		if err := q.Enqueue(item); err != nil {
			t.Fatalf("enqueue %q: %v", item, err)
		}
	}

	head, ok, err := q.DequeueFront()
	if err != nil || !ok {
		t.Fatalf("dequeue: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff("first", head); diff != "" {
		t.Errorf("head mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(2, q.Len()); diff != "" {
		t.Errorf("length mismatch (-want +got):\n%s", diff)
	}
}

func TestQueueDequeueEmpty(t *testing.T) {
	q, _ := newTestQueue(t)
	_, ok, err := q.DequeueFront()
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if ok {
		t.Error("dequeue on empty queue reported an item")
	}
}

func TestQueueRequeueFrontRestoresHead(t *testing.T) {
	q, _ := newTestQueue(t)
	for _, item := range []string{"a", "b"} {
		if err := q.Enqueue(item); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}

	head, _, err := q.DequeueFront()
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if err := q.RequeueFront(head); err != nil {
		t.Fatalf("requeue: %v", err)
	}

	if diff := cmp.Diff([]string{"a", "b"}, q.Items()); diff != "" {
		t.Errorf("order after requeue (-want +got):\n%s", diff)
	}
}

func TestQueueDurableReload(t *testing.T) {
	q, path := newTestQueue(t)

	// A mixed mutation sequence; the file must reproduce the exact
	// in-memory order afterwards.
	steps := []func() error{
		func() error { return q.Enqueue("один\n\nс переносами") },
		func() error { return q.Enqueue("два 👀") },
		func() error { _, _, err := q.DequeueFront(); return err },
		func() error { return q.Enqueue("три") },
		func() error { return q.RequeueFront("ноль") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	reloaded, err := OpenFileQueue(path)
	if err != nil {
		t.Fatalf("reload queue: %v", err)
	}
	if diff := cmp.Diff(q.Items(), reloaded.Items()); diff != "" {
		t.Errorf("reloaded order mismatch (-mem +disk):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ноль", "два 👀", "три"}, reloaded.Items()); diff != "" {
		t.Errorf("expected order (-want +got):\n%s", diff)
	}
}

func TestQueueDurableReloadWithDashTail(t *testing.T) {
	q, path := newTestQueue(t)

	// A markdown horizontal rule at the end of an item must not fuse
	// with the on-disk joiner into an extra separator occurrence.
	items := []string{"первый пост\n\n---", "второй пост", "---\n\nтретий пост"}
	for _, item := range items {
		if err := q.Enqueue(item); err != nil {
			t.Fatalf("enqueue %q: %v", item, err)
		}
	}

	reloaded, err := OpenFileQueue(path)
	if err != nil {
		t.Fatalf("reload queue: %v", err)
	}
	if diff := cmp.Diff(q.Items(), reloaded.Items()); diff != "" {
		t.Errorf("reloaded order mismatch (-mem +disk):\n%s", diff)
	}
	want := []string{"первый пост", "второй пост", "---\n\nтретий пост"}
	if diff := cmp.Diff(want, reloaded.Items()); diff != "" {
		t.Errorf("expected items (-want +got):\n%s", diff)
	}
}

func TestQueueEnqueueSanitizes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"surrounding whitespace", "  пост  ", "пост"},
		{"dash tail", "пост\n\n---", "пост"},
		{"repeated dash tail", "пост\n\n---\n\n---", "пост"},
		{"mid-text dashes kept", "тире --- в середине", "тире --- в середине"},
		{"dash line without blank line kept", "пост\n---", "пост\n---"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := newTestQueue(t)
			if err := q.Enqueue(tt.in); err != nil {
				t.Fatalf("enqueue: %v", err)
			}
			if diff := cmp.Diff([]string{tt.want}, q.Items()); diff != "" {
				t.Errorf("stored item (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQueueRejectsBlankItem(t *testing.T) {
	q, _ := newTestQueue(t)
	for _, in := range []string{"", "   \n\t ", "\n\n---"} {
		if err := q.Enqueue(in); err == nil {
			t.Errorf("Enqueue(%q) expected error", in)
		}
	}
	if diff := cmp.Diff(0, q.Len()); diff != "" {
		t.Errorf("queue length (-want +got):\n%s", diff)
	}
}

func TestQueueRejectsSeparator(t *testing.T) {
	q, _ := newTestQueue(t)
	if err := q.Enqueue("bad" + Separator + "item"); err == nil {
		t.Error("expected error for item containing the separator")
	}
	if diff := cmp.Diff(0, q.Len()); diff != "" {
		t.Errorf("queue length after rejected enqueue (-want +got):\n%s", diff)
	}
}

func TestQueueMissingFileIsEmpty(t *testing.T) {
	q, err := OpenFileQueue(filepath.Join(t.TempDir(), "queue.txt"))
	if err != nil {
		t.Fatalf("open queue: %v", err)
	}
	if diff := cmp.Diff(0, q.Len()); diff != "" {
		t.Errorf("length (-want +got):\n%s", diff)
	}
}
