package filter

import (
	"regexp"
	"strings"
)

var (
	linkRe    = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|t\.me/\S+)`)
	mentionRe = regexp.MustCompile(`@\w+`)
	hashtagRe = regexp.MustCompile(`#[\p{L}0-9_]+`)
	spaceRe   = regexp.MustCompile(`\s+`)
)

// Normalizer strips links, mentions, hashtags, and promotional phrases
// from raw message text.
type Normalizer struct {
	rules *Rules
}

// NewNormalizer creates a Normalizer using the given rule set.
func NewNormalizer(rules *Rules) *Normalizer {
	return &Normalizer{rules: rules}
}

// Normalize returns the cleaned form of raw: URL-like tokens, @-mentions,
// #-hashtags, and every ad-lexicon match removed, whitespace runs collapsed
// to a single space, trimmed. Deterministic and idempotent. An empty result
// means the message carried nothing but boilerplate.
//
// The output never contains a newline, which keeps the line-oriented
// published store format safe.
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	t := linkRe.ReplaceAllString(raw, "")
	t = mentionRe.ReplaceAllString(t, "")
	t = hashtagRe.ReplaceAllString(t, "")
	for _, re := range n.rules.adRes {
		t = re.ReplaceAllString(t, "$1")
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(t, " "))
}
