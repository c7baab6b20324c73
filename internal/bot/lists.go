package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"focus-planner/internal/alarm"
	"focus-planner/internal/model"
)

func (b *Bot) sendTaskList(ctx context.Context, chatID int64) error {
	tasks, err := b.taskSvc.ListActive(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Couldn't load tasks: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(chatID, "No open tasks. Add one with /newtask.")
	}

	// Group by category label, alphabetical.
	groups := make(map[string][]model.Task)
	var order []string
	for _, task := range tasks {
		if _, ok := groups[task.Category]; !ok {
			order = append(order, task.Category)
		}
		groups[task.Category] = append(groups[task.Category], task)
	}
	sort.Strings(order)

	var builder strings.Builder
	builder.WriteString("📋 <b>Open tasks</b>\n")
	builder.WriteString("Tap a button to complete or delete a task.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, category := range order {
		builder.WriteString(fmt.Sprintf("<b>%s</b>\n", escape(category)))
		for _, task := range groups[category] {
			builder.WriteString(formatTaskLine(task))
			buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ %s", shortTitle(task.Name, 24)), cbCompletePrefix+task.ID),
				tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeleteTaskPrefix+task.ID),
			))
		}
		builder.WriteByte('\n')
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func formatTaskLine(task model.Task) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s", priorityIcon(task.Priority), escape(task.Name)))
	if task.DueDate != nil {
		sb.WriteString(fmt.Sprintf(" · ⏰ %s", task.DueDate.Format(model.DateLayout)))
	}
	sb.WriteString(fmt.Sprintf("\n   <code>%s</code>\n", shortID(task.ID)))
	return sb.String()
}

func priorityIcon(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

// shortID shows the id prefix accepted by /complete and /delete.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (b *Bot) sendReminderList(ctx context.Context, chatID int64) error {
	reminders, err := b.reminderSvc.List(ctx)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Couldn't load reminders: %s", escape(err.Error())))
	}
	if len(reminders) == 0 {
		return b.sendText(chatID, "No reminders yet. Create one with /remind.")
	}

	var builder strings.Builder
	builder.WriteString("🔔 <b>Reminders</b>\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, rem := range reminders {
		name := alarm.UnknownTaskName
		if task, err := b.taskSvc.GetTask(ctx, rem.TaskID); err == nil {
			name = task.Name
		}

		stateIcon := "🔔"
		toggleLabel := "🔕 Disable"
		if !rem.Enabled {
			stateIcon = "🔕"
			toggleLabel = "🔔 Enable"
		}

		builder.WriteString(fmt.Sprintf("%s <b>%s</b> · %s · %s\n", stateIcon, rem.Time, repeatLabel(&rem), escape(shortTitle(name, 30))))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggleLabel, cbToggleRemPrefix+rem.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeleteRemPrefix+rem.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(msg)
	return err
}

func (b *Bot) completeTask(ctx context.Context, chatID int64, taskID string) error {
	task, err := b.taskSvc.ToggleComplete(ctx, taskID)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Couldn't update the task: %s", escape(err.Error())))
	}
	if !task.Completed {
		return b.sendText(chatID, fmt.Sprintf("↩️ \"%s\" reopened.", escape(task.Name)))
	}
	return b.sendText(chatID, fmt.Sprintf("✅ \"%s\" done. Nice.", escape(task.Name)))
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, taskID string) error {
	task, err := b.taskSvc.GetTask(ctx, taskID)
	if err != nil {
		return b.sendText(chatID, taskLookupError(err))
	}
	if err := b.taskSvc.DeleteTask(ctx, taskID); err != nil {
		return b.sendText(chatID, fmt.Sprintf("Couldn't delete the task: %s", escape(err.Error())))
	}
	b.log.Infow("task deleted", "task", taskID)
	return b.sendText(chatID, fmt.Sprintf("🗑 \"%s\" deleted together with its reminders.", escape(task.Name)))
}
