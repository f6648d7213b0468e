// Package pipeline implements the content admission path: normalization,
// relevance filtering, deduplication, rewrite, and durable queuing.
package pipeline

import (
	"context"
	"log/slog"
	"strings"

	"repost_bot/internal/dedup"
	"repost_bot/internal/filter"
	"repost_bot/internal/storage"
)

// Inbound is one raw message from a monitored source. It lives only for
// the duration of a single admission cycle.
type Inbound struct {
	Text      string
	Source    string
	Forwarded bool
}

// Classifier is the external relevance-classification capability.
type Classifier interface {
	ClassifyRelevance(ctx context.Context, text string) (bool, error)
}

// Rewriter is the external paraphrase capability.
type Rewriter interface {
	Rewrite(ctx context.Context, text, signature string) (string, error)
}

// Counters receives admission outcomes; the scheduler state implements it.
type Counters interface {
	IncFiltered()
}

// Pipeline drives one inbound message through admission.
type Pipeline struct {
	normalizer *filter.Normalizer
	rules      *filter.Rules
	queue      storage.Queue
	published  storage.PublishedSet
	classifier Classifier
	rewriter   Rewriter
	counters   Counters
	threshold  int
	signature  string
	skipFwd    bool
	log        *slog.Logger
}

// Options configures a Pipeline.
type Options struct {
	Rules               *filter.Rules
	Queue               storage.Queue
	Published           storage.PublishedSet
	Classifier          Classifier
	Rewriter            Rewriter
	Counters            Counters
	SimilarityThreshold int
	Signature           string
	SkipForwards        bool
	Log                 *slog.Logger
}

// New creates a Pipeline.
func New(o Options) *Pipeline {
	threshold := o.SimilarityThreshold
	if threshold == 0 {
		threshold = dedup.DefaultThreshold
	}
	return &Pipeline{
		normalizer: filter.NewNormalizer(o.Rules),
		rules:      o.Rules,
		queue:      o.Queue,
		published:  o.Published,
		classifier: o.Classifier,
		rewriter:   o.Rewriter,
		counters:   o.Counters,
		threshold:  threshold,
		signature:  o.Signature,
		skipFwd:    o.SkipForwards,
		log:        o.Log,
	}
}

// Handle runs the admission sequence for one message. Every rejection and
// failure is terminal for the message and logged; Handle never brings the
// process down.
func (p *Pipeline) Handle(ctx context.Context, msg Inbound) {
	if p.skipFwd && msg.Forwarded {
		p.log.Debug("skipping forwarded message", "source", msg.Source)
		return
	}

	if strings.TrimSpace(msg.Text) == "" {
		return
	}

	normalized := p.normalizer.Normalize(msg.Text)
	if normalized == "" {
		p.log.Debug("empty text after normalization", "source", msg.Source)
		return
	}

	if dedup.IsDuplicate(normalized, p.published, p.threshold) {
		p.log.Info("duplicate dropped", "source", msg.Source)
		return
	}

	if !p.rules.Relevant(normalized) {
		p.counters.IncFiltered()
		p.log.Info("rejected by local relevance gate", "source", msg.Source)
		return
	}

	relevant, err := p.classifier.ClassifyRelevance(ctx, normalized)
	if err != nil {
		// Fail closed: a classifier failure is a negative verdict.
		p.counters.IncFiltered()
		p.log.Error("classifier error, dropping message", "source", msg.Source, "error", err)
		return
	}
	if !relevant {
		p.counters.IncFiltered()
		p.log.Info("rejected by classifier", "source", msg.Source)
		return
	}

	rewritten, err := p.rewriter.Rewrite(ctx, normalized, p.signature)
	if err != nil {
		// Fail soft: publish the normalized text with the signature.
		p.log.Error("rewrite error, using fallback", "source", msg.Source, "error", err)
		rewritten = normalized + "\n\n" + p.signature
	}
	rewritten = strings.ReplaceAll(rewritten, storage.Separator, "\n---\n")

	// Enqueue before recording the original: a crash between the two at
	// worst re-admits a published original, never loses a queued item.
	if err := p.queue.Enqueue(rewritten); err != nil {
		p.log.Error("enqueue failed, dropping message", "source", msg.Source, "error", err)
		return
	}
	if err := p.published.Add(normalized); err != nil {
		p.log.Error("record published original failed", "source", msg.Source, "error", err)
	}

	p.log.Info("message admitted", "source", msg.Source, "queue_len", p.queue.Len())
}
