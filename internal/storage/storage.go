// Package storage defines the persistence interfaces and their
// implementations: the durable publication queue, the durable published
// set, and the SQLite history archive.
package storage

// Queue is an ordered, persisted sequence of rewritten items awaiting
// publication. Order is strictly FIFO; every mutation is durable before
// the call returns.
type Queue interface {
	Enqueue(text string) error
	DequeueFront() (string, bool, error)
	RequeueFront(text string) error
	Len() int
}

// PublishedSet is the persisted, append-only collection of normalized
// texts already admitted. It backs the deduplicator.
type PublishedSet interface {
	Add(text string) error
	Contains(text string) bool
	All() []string
	Len() int
}
