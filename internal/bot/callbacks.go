package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.ensureOwner(ctx, cb.From); err != nil {
		b.ack(cb, "Not your planner.")
		return nil
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(data, cbDismissPrefix):
		b.ack(cb, "Dismissed")
		id := strings.TrimPrefix(data, cbDismissPrefix)
		if err := b.session.Dismiss(ctx, id); err != nil {
			b.log.Errorw("dismiss failed", "reminder", id, "err", err)
			return b.sendText(chatID, "Something went wrong dismissing that alarm.")
		}
		return nil
	case strings.HasPrefix(data, cbSnoozePrefix):
		id := strings.TrimPrefix(data, cbSnoozePrefix)
		if err := b.session.Snooze(ctx, id); err != nil {
			b.ack(cb, "")
			b.log.Errorw("snooze failed", "reminder", id, "err", err)
			return b.sendText(chatID, "Something went wrong snoozing that alarm.")
		}
		b.ack(cb, fmt.Sprintf("Snoozed for %d min", int(b.config.SnoozeFor.Minutes())))
		return nil
	case strings.HasPrefix(data, cbCompletePrefix):
		b.ack(cb, "")
		return b.completeTask(ctx, chatID, strings.TrimPrefix(data, cbCompletePrefix))
	case strings.HasPrefix(data, cbDeleteTaskPrefix):
		b.ack(cb, "")
		return b.deleteTask(ctx, chatID, strings.TrimPrefix(data, cbDeleteTaskPrefix))
	case strings.HasPrefix(data, cbToggleRemPrefix):
		b.ack(cb, "")
		id := strings.TrimPrefix(data, cbToggleRemPrefix)
		rem, err := b.reminderSvc.Toggle(ctx, id)
		if err != nil {
			return b.sendText(chatID, fmt.Sprintf("Couldn't update the reminder: %s", escape(err.Error())))
		}
		if rem.Enabled {
			return b.sendText(chatID, fmt.Sprintf("🔔 Reminder at %s enabled.", rem.Time))
		}
		return b.sendText(chatID, fmt.Sprintf("🔕 Reminder at %s disabled.", rem.Time))
	case strings.HasPrefix(data, cbDeleteRemPrefix):
		b.ack(cb, "")
		id := strings.TrimPrefix(data, cbDeleteRemPrefix)
		if err := b.reminderSvc.Delete(ctx, id); err != nil {
			return b.sendText(chatID, fmt.Sprintf("Couldn't delete the reminder: %s", escape(err.Error())))
		}
		return b.sendText(chatID, "🗑 Reminder deleted.")
	default:
		b.ack(cb, "")
		return nil
	}
}

// ack answers the callback query so the client stops showing a spinner.
func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.log.Warnw("callback ack", "err", err)
	}
}
