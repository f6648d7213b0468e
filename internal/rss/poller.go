package rss

import (
	"context"
	"log/slog"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/mmcdole/gofeed"

	"repost_bot/internal/pipeline"
)

// Handler receives converted feed items; the admission pipeline implements it.
type Handler interface {
	Handle(ctx context.Context, msg pipeline.Inbound)
}

// SeenStore tracks which feed items were already handed to the pipeline.
type SeenStore interface {
	MarkSeen(ctx context.Context, feedURL, guid string) error
	IsSeen(ctx context.Context, feedURL, guid string) (bool, error)
}

// Poller periodically fetches the configured feeds and submits unseen
// items to the pipeline.
type Poller struct {
	feeds   []string
	fetcher *Fetcher
	seen    SeenStore
	handler Handler
	conv    *md.Converter
	log     *slog.Logger
	tick    time.Duration
}

// NewPoller creates a Poller checking feeds every tick.
func NewPoller(feeds []string, fetcher *Fetcher, seen SeenStore, handler Handler,
	tick time.Duration, log *slog.Logger) *Poller {
	return &Poller{
		feeds:   feeds,
		fetcher: fetcher,
		seen:    seen,
		handler: handler,
		conv:    md.NewConverter("", true, nil),
		log:     log,
		tick:    tick,
	}
}

// Run starts the polling loop, blocking until ctx is cancelled. With no
// feeds configured it returns immediately.
func (p *Poller) Run(ctx context.Context) {
	if len(p.feeds) == 0 {
		return
	}

	p.checkAll(ctx)

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.checkAll(ctx)
		}
	}
}

func (p *Poller) checkAll(ctx context.Context) {
	for _, url := range p.feeds {
		if ctx.Err() != nil {
			return
		}
		p.processFeed(ctx, url)
	}
}

func (p *Poller) processFeed(ctx context.Context, url string) {
	feed, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		p.log.Error("fetch feed", "url", url, "error", err)
		return
	}

	for _, item := range feed.Items {
		guid := ItemGUID(item)
		seen, err := p.seen.IsSeen(ctx, url, guid)
		if err != nil {
			p.log.Error("check seen", "url", url, "guid", guid, "error", err)
			continue
		}
		if seen {
			continue
		}

		p.handler.Handle(ctx, pipeline.Inbound{
			Text:   p.itemText(item),
			Source: url,
		})

		if err := p.seen.MarkSeen(ctx, url, guid); err != nil {
			p.log.Error("mark seen", "url", url, "guid", guid, "error", err)
		}
	}
}

// itemText joins the item title and its description converted from HTML.
func (p *Poller) itemText(item *gofeed.Item) string {
	desc := item.Description
	if converted, err := p.conv.ConvertString(desc); err == nil {
		desc = converted
	}
	parts := []string{strings.TrimSpace(item.Title), strings.TrimSpace(desc)}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}
