package storage

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// FilePublished implements PublishedSet backed by a plain-text file with
// one normalized text per line. The set only grows; unbounded growth is
// accepted at human-scale content velocity.
type FilePublished struct {
	mu    sync.Mutex
	path  string
	set   map[string]struct{}
	order []string
}

// OpenFilePublished loads the published set from path. A missing file
// yields an empty set.
func OpenFilePublished(path string) (*FilePublished, error) {
	p := &FilePublished{path: path, set: make(map[string]struct{})}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read published file: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if _, ok := p.set[line]; ok {
			continue
		}
		p.set[line] = struct{}{}
		p.order = append(p.order, line)
	}
	return p, nil
}

// Add inserts a normalized text and persists before returning. The
// normalizer guarantees the text carries no newline, so one-line-per-entry
// holds without escaping. Adding an existing member is a no-op.
func (p *FilePublished) Add(text string) error {
	if strings.ContainsRune(text, '\n') {
		return fmt.Errorf("published text contains a newline")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.set[text]; ok {
		return nil
	}
	p.set[text] = struct{}{}
	p.order = append(p.order, text)
	if err := p.sync(); err != nil {
		delete(p.set, text)
		p.order = p.order[:len(p.order)-1]
		return err
	}
	return nil
}

// Contains reports exact membership.
func (p *FilePublished) Contains(text string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.set[text]
	return ok
}

// All returns a copy of every recorded text. Scan order is immaterial to
// the deduplicator; insertion order is used.
func (p *FilePublished) All() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := make([]string, len(p.order))
	copy(cp, p.order)
	return cp
}

// Len returns the number of recorded texts.
func (p *FilePublished) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}

func (p *FilePublished) sync() error {
	var b strings.Builder
	for _, line := range p.order {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return writeFileAtomic(p.path, []byte(b.String()))
}
