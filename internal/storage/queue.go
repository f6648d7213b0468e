package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Separator delimits queue items in the durable file. Items must not
// contain it verbatim.
const Separator = "\n\n---\n\n"

// FileQueue implements Queue backed by a single plain-text file that is
// fully rewritten on every mutation. Acceptable because expected queue
// sizes are tens of items.
type FileQueue struct {
	mu    sync.Mutex
	path  string
	items []string
}

// OpenFileQueue loads the queue from path. A missing file yields an
// empty queue.
func OpenFileQueue(path string) (*FileQueue, error) {
	q := &FileQueue{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return q, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read queue file: %w", err)
	}
	for _, block := range strings.Split(string(data), Separator) {
		if block = strings.TrimSpace(block); block != "" {
			q.items = append(q.items, block)
		}
	}
	return q, nil
}

// Enqueue appends an item at the tail and persists before returning.
// The item is stored in sanitized form; see sanitizeItem.
func (q *FileQueue) Enqueue(text string) error {
	text = sanitizeItem(text)
	if text == "" {
		return fmt.Errorf("queue item is empty")
	}
	if strings.Contains(text, Separator) {
		return fmt.Errorf("queue item contains the separator sequence")
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, text)
	if err := q.sync(); err != nil {
		q.items = q.items[:len(q.items)-1]
		return err
	}
	return nil
}

// DequeueFront removes and returns the head item. The second return
// value is false when the queue is empty.
func (q *FileQueue) DequeueFront() (string, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false, nil
	}
	head := q.items[0]
	q.items = q.items[1:]
	if err := q.sync(); err != nil {
		q.items = append([]string{head}, q.items...)
		return "", false, err
	}
	return head, true, nil
}

// RequeueFront puts an item back at the head, restoring its position
// after a failed or out-of-window publish attempt.
func (q *FileQueue) RequeueFront(text string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append([]string{text}, q.items...)
	if err := q.sync(); err != nil {
		q.items = q.items[1:]
		return err
	}
	return nil
}

// Len returns the number of queued items.
func (q *FileQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns a copy of the queue in publication order.
func (q *FileQueue) Items() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	cp := make([]string, len(q.items))
	copy(cp, q.items)
	return cp
}

func (q *FileQueue) sync() error {
	return writeFileAtomic(q.path, []byte(strings.Join(q.items, Separator)))
}

// sanitizeItem makes text safe for the joined on-disk format. Reload
// trims every block, so the stored form must be trim-stable, and a bare
// "---" tail after a blank line would fuse with the joiner into an extra
// separator occurrence, splitting the file at the wrong offset.
func sanitizeItem(text string) string {
	text = strings.TrimSpace(text)
	for strings.HasSuffix(text, "\n\n---") {
		text = strings.TrimSpace(strings.TrimSuffix(text, "---"))
	}
	return text
}

// writeFileAtomic writes data to a temporary file in the target
// directory and renames it over path, so a crash mid-write cannot
// truncate the canonical file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
