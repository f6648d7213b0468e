// Package dedup detects exact and near-duplicate texts against a corpus
// of previously admitted content.
package dedup

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultThreshold is the partial-ratio score at or above which two texts
// are considered duplicates.
const DefaultThreshold = 85

// Corpus is the read surface the deduplicator needs from the published set.
type Corpus interface {
	Contains(text string) bool
	All() []string
}

// IsDuplicate reports whether candidate is an exact member of the corpus
// or scores at least threshold against any member on the partial-ratio
// scale (100 = one string contained in the other as a contiguous-edit
// match, 0 = no overlap). The scan short-circuits on the first match.
func IsDuplicate(candidate string, corpus Corpus, threshold int) bool {
	if corpus.Contains(candidate) {
		return true
	}
	for _, old := range corpus.All() {
		if score(candidate, old) >= threshold {
			return true
		}
	}
	return false
}

// score computes the partial ratio for one pair. A panic inside the
// similarity library for a malformed pair must not abort the whole scan,
// so it is converted to a non-match.
func score(a, b string) (n int) {
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	return fuzzy.PartialRatio(a, b)
}
