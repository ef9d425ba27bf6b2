package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gemini-relay-bot/internal/platform/telegram"
)

// maxFloodWait caps how long a handler sleeps on a 429 before giving up.
const maxFloodWait = 5 * time.Second

// waitFlood sleeps out the delay of a flood-control error and reports whether
// the call should be repeated.
func waitFlood(ctx context.Context, err error) bool {
	d, ok := telegram.RetryAfter(err)
	if !ok || d > maxFloodWait {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, body string, markup *tgbotapi.InlineKeyboardMarkup) (int, error) {
	id, err := b.messenger.SendMessage(ctx, chatID, body, markup)
	if err != nil && waitFlood(ctx, err) {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("Flood control hit, resending")
		id, err = b.messenger.SendMessage(ctx, chatID, body, markup)
	}
	return id, err
}

func (b *Bot) editMessage(ctx context.Context, chatID int64, messageID int, body string, markup *tgbotapi.InlineKeyboardMarkup) error {
	err := b.messenger.EditMessage(ctx, chatID, messageID, body, markup)
	if err != nil && waitFlood(ctx, err) {
		b.log.Warn().Err(err).Int64("chat_id", chatID).Msg("Flood control hit, editing again")
		err = b.messenger.EditMessage(ctx, chatID, messageID, body, markup)
	}
	return err
}
