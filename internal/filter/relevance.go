package filter

import (
	"strings"
	"unicode/utf8"
)

// minRelevantLength is the shortest text (in runes) worth sending to the
// external classifier.
const minRelevantLength = 30

// Relevant is the local relevance gate: true iff the lower-cased text
// contains at least one configured keyword and is long enough to be worth
// an external classification call.
func (r *Rules) Relevant(text string) bool {
	low := strings.ToLower(text)
	if utf8.RuneCountInString(low) < minRelevantLength {
		return false
	}
	for _, k := range r.Keywords {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}
