package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"repost_bot/internal/scheduler"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	chatID := msg.Chat.ID

	b.log.Debug("owner command", "cmd", cmd, "chat_id", chatID)

	switch cmd {
	case "status":
		b.handleStatus(ctx, chatID)
	case "pause":
		b.state.Pause()
		b.reply(chatID, "⏸ Publishing paused. Ingestion keeps running.")
	case "resume":
		b.state.Resume()
		b.reply(chatID, "▶️ Publishing resumed.")
	case "stats":
		snap := b.state.Snapshot()
		b.reply(chatID, FormatStats(snap, b.queue.Len()))
	case "forcepost":
		b.handleForcePost(ctx, chatID)
	default:
		b.reply(chatID, "Commands: /status /pause /resume /stats /forcepost")
	}
}

func (b *Bot) handleStatus(ctx context.Context, chatID int64) {
	snap := b.state.Snapshot()

	lifetime := -1
	if b.archive != nil {
		n, err := b.archive.CountPublished(ctx)
		if err != nil {
			b.log.Error("count published", "error", err)
		} else {
			lifetime = n
		}
	}

	b.reply(chatID, FormatStatus(snap, b.queue.Len(), lifetime))
}

func (b *Bot) handleForcePost(ctx context.Context, chatID int64) {
	if b.sched == nil {
		b.reply(chatID, "Publisher is not running.")
		return
	}
	err := b.sched.ForcePublish(ctx)
	switch {
	case errors.Is(err, scheduler.ErrQueueEmpty):
		b.reply(chatID, "Queue is empty.")
	case err != nil:
		b.reply(chatID, fmt.Sprintf("Force post failed: %v", err))
	default:
		b.reply(chatID, "✅ Force post published.")
	}
}
