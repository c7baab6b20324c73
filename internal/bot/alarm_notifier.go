package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"focus-planner/internal/model"
)

// alarmMessage remembers the delivered alarm so it can be torn down.
type alarmMessage struct {
	chatID    int64
	messageID int
}

// ShowAlarm implements alarm.Notifier: the active alarm is a message with
// snooze/dismiss buttons in the owner's chat. Sound and vibration flags map
// to a loud notification; without either the message arrives silently.
func (b *Bot) ShowAlarm(ctx context.Context, r model.Reminder, taskName string) error {
	owner, err := b.userRepo.Owner(ctx)
	if err != nil {
		return fmt.Errorf("no owner chat to deliver the alarm: %w", err)
	}

	var body strings.Builder
	body.WriteString("⏰ <b>Reminder!</b>\n")
	body.WriteString(fmt.Sprintf("<b>%s</b>\n", escape(taskName)))
	body.WriteString(fmt.Sprintf("It's %s! Time to focus.", r.Time))
	if r.Vibration {
		body.WriteString("\n📳")
	}

	var row []tgbotapi.InlineKeyboardButton
	if r.Snooze {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("😴 Snooze (%d min)", int(b.config.SnoozeFor.Minutes())), cbSnoozePrefix+r.ID))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("✅ Dismiss", cbDismissPrefix+r.ID))

	msg := tgbotapi.NewMessage(owner.TelegramID, body.String())
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	msg.DisableNotification = !r.Sound && !r.Vibration

	sent, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("deliver alarm: %w", err)
	}

	b.mu.Lock()
	b.alarmMsgs[r.ID] = alarmMessage{chatID: sent.Chat.ID, messageID: sent.MessageID}
	b.mu.Unlock()
	return nil
}

// ClearAlarm implements alarm.Notifier. Editing the message drops the
// buttons, the chat-side analog of stopping a looping alarm sound.
func (b *Bot) ClearAlarm(ctx context.Context, reminderID string) {
	b.mu.Lock()
	ref, ok := b.alarmMsgs[reminderID]
	delete(b.alarmMsgs, reminderID)
	b.mu.Unlock()
	if !ok {
		return
	}

	edit := tgbotapi.NewEditMessageText(ref.chatID, ref.messageID, "🔕 Alarm resolved.")
	if _, err := b.api.Send(edit); err != nil {
		b.log.Warnw("clear alarm message", "reminder", reminderID, "err", err)
	}
}
