// Package bot hosts the Telegram transport: source-channel ingestion,
// owner commands, and publishing to the target channel.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"repost_bot/internal/config"
	"repost_bot/internal/pipeline"
	"repost_bot/internal/scheduler"
	"repost_bot/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is the Telegram client: it feeds source messages into the
// admission pipeline, serves owner commands, and implements
// scheduler.Publisher for the publish loop.
type Bot struct {
	api     telegramAPI
	cfg     *config.Config
	pipe    *pipeline.Pipeline
	state   *scheduler.State
	sched   *scheduler.Scheduler
	queue   storage.Queue
	archive *storage.SQLite
	limiter *rate.Limiter
	log     *slog.Logger
}

// New creates a Bot with the given Telegram token.
func New(cfg *config.Config, pipe *pipeline.Pipeline, state *scheduler.State,
	queue storage.Queue, archive *storage.SQLite, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:     api,
		cfg:     cfg,
		pipe:    pipe,
		state:   state,
		queue:   queue,
		archive: archive,
		// Telegram allows roughly 20 messages per second.
		limiter: rate.NewLimiter(rate.Every(50*time.Millisecond), 1),
		log:     log,
	}, nil
}

// AttachScheduler wires the publish loop so /forcepost can reach it.
func (b *Bot) AttachScheduler(s *scheduler.Scheduler) {
	b.sched = s
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if post := update.ChannelPost; post != nil && b.cfg.IsSource(post.Chat.ID) {
		b.ingest(ctx, post)
		return
	}

	msg := update.Message
	if msg == nil {
		return
	}

	if b.cfg.IsSource(msg.Chat.ID) {
		b.ingest(ctx, msg)
		return
	}

	if msg.IsCommand() {
		if msg.From == nil || !b.cfg.IsOwner(msg.From.ID) {
			return
		}
		b.handleCommand(ctx, msg)
	}
}

func (b *Bot) ingest(ctx context.Context, msg *tgbotapi.Message) {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	b.pipe.Handle(ctx, pipeline.Inbound{
		Text:      text,
		Source:    strconv.FormatInt(msg.Chat.ID, 10),
		Forwarded: msg.ForwardDate != 0,
	})
}

// Publish implements scheduler.Publisher: a rate-limited send to the
// target channel. Returns the Telegram message ID of the sent post.
func (b *Bot) Publish(ctx context.Context, text string) (int, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(b.cfg.TargetChatID, text)
	msg.DisableWebPagePreview = true
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send to target: %w", err)
	}
	return sent.MessageID, nil
}

// NotifyOwner sends a short message to the configured owner, if any.
func (b *Bot) NotifyOwner(text string) {
	if b.cfg.OwnerID == 0 {
		return
	}
	b.reply(b.cfg.OwnerID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}
