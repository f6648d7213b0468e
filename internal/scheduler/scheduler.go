// Package scheduler runs the throttled, time-windowed publication loop.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"repost_bot/internal/storage"
)

// ErrQueueEmpty is returned by ForcePublish when there is nothing to publish.
var ErrQueueEmpty = errors.New("queue is empty")

// Publisher is the external delivery capability. A returned error is a
// transient transport failure: the item is requeued and retried on the
// next cycle.
type Publisher interface {
	Publish(ctx context.Context, text string) (messageID int, err error)
}

// Archive records successful publications durably. Optional.
type Archive interface {
	RecordPublish(ctx context.Context, messageID, chars int) error
}

// Scheduler dequeues and publishes one item per cycle, respecting the
// daily publication window and the pause flag.
type Scheduler struct {
	queue     storage.Queue
	publisher Publisher
	archive   Archive
	state     *State
	log       *slog.Logger

	interval  time.Duration
	startHour int
	endHour   int
	loc       *time.Location

	startDelay time.Duration
	now        func() time.Time
}

// New creates a Scheduler. loc determines the wall clock used for the
// publication window check.
func New(queue storage.Queue, publisher Publisher, archive Archive, state *State,
	interval time.Duration, startHour, endHour int, loc *time.Location, log *slog.Logger) *Scheduler {
	return &Scheduler{
		queue:     queue,
		publisher: publisher,
		archive:   archive,
		state:     state,
		log:       log,
		interval:  interval,
		startHour: startHour,
		endHour:   endHour,
		loc:       loc,
		// Small random start delay so a restart doesn't publish instantly.
		startDelay: time.Duration(1+rand.IntN(8)) * time.Second,
		now:        time.Now,
	}
}

// Run starts the publish loop, blocking until ctx is cancelled. A cycle
// in progress finishes before Run returns; pause only suspends
// publishing, never the timer.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(s.startDelay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.cycle(ctx)
			timer.Reset(s.nextInterval())
		}
	}
}

// nextInterval is the configured base interval plus a bounded random
// offset, so publication timing is not fully deterministic.
func (s *Scheduler) nextInterval() time.Duration {
	d := s.interval + time.Duration(rand.IntN(181)-60)*time.Second
	if d <= 0 {
		d = time.Second
	}
	return d
}

func (s *Scheduler) cycle(ctx context.Context) {
	if s.state.Paused() {
		s.log.Info("paused, skipping publish cycle")
		return
	}

	item, ok, err := s.queue.DequeueFront()
	if err != nil {
		s.log.Error("dequeue failed", "error", err)
		return
	}
	if !ok {
		s.log.Debug("queue empty")
		return
	}

	if hour := s.now().In(s.loc).Hour(); hour < s.startHour || hour >= s.endHour {
		if err := s.queue.RequeueFront(item); err != nil {
			s.log.Error("requeue after window check failed", "error", err)
			return
		}
		s.log.Info("outside publication window, deferring", "hour", hour)
		return
	}

	_ = s.publish(ctx, item)
}

// ForcePublish publishes the current queue head immediately, bypassing
// the interval and the publication window.
func (s *Scheduler) ForcePublish(ctx context.Context) error {
	item, ok, err := s.queue.DequeueFront()
	if err != nil {
		return err
	}
	if !ok {
		return ErrQueueEmpty
	}
	return s.publish(ctx, item)
}

func (s *Scheduler) publish(ctx context.Context, item string) error {
	messageID, err := s.publisher.Publish(ctx, item)
	if err != nil {
		if rqErr := s.queue.RequeueFront(item); rqErr != nil {
			s.log.Error("requeue after failed publish failed", "error", rqErr)
		}
		s.log.Error("publish failed, item requeued", "error", err)
		return err
	}

	s.state.RecordPublish(messageID, s.now().In(s.loc))
	if s.archive != nil {
		if err := s.archive.RecordPublish(ctx, messageID, len(item)); err != nil {
			s.log.Error("archive publish record failed", "error", err)
		}
	}
	s.log.Info("published from queue", "message_id", messageID, "queue_len", s.queue.Len())
	return nil
}
