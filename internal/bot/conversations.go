package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"focus-planner/internal/model"
	"focus-planner/internal/service"
)

type conversationStage int

const (
	stageTaskName conversationStage = iota
	stageTaskDescription
	stageTaskCategory
	stageTaskDueDate
	stageTaskPriority

	stageReminderTask
	stageReminderTime
	stageReminderRepeat
	stageReminderDays
	stageReminderSilent
	stageReminderSnooze
)

type conversationState struct {
	stage       conversationStage
	task        service.TaskInput
	reminder    service.ReminderInput
	taskChoices []string // task ids offered in the reminder dialog, by number
}

func (b *Bot) startNewTaskConversation(msg *tgbotapi.Message) error {
	b.setConversation(msg.From.ID, &conversationState{stage: stageTaskName})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New task.\n<b>Step 1:</b> what should I call it?", cancelKeyboard())
}

func (b *Bot) startReminderConversation(ctx context.Context, msg *tgbotapi.Message) error {
	tasks, err := b.taskSvc.ListActive(ctx)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Couldn't load tasks: %s", escape(err.Error())))
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "No open tasks to remind about. Add one with /newtask first.")
	}

	state := &conversationState{stage: stageReminderTask}
	var builder strings.Builder
	builder.WriteString("⏰ New reminder.\n<b>Step 1:</b> which task? Reply with a number.\n\n")
	for i, task := range tasks {
		state.taskChoices = append(state.taskChoices, task.ID)
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, escape(shortTitle(task.Name, 40))))
	}

	b.setConversation(msg.From.ID, state)
	return b.sendWithReplyMarkup(msg.Chat.ID, strings.TrimSpace(builder.String()), cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTaskName:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The task needs a name. Try again.", cancelKeyboard())
		}
		state.task.Name = text
		state.stage = stageTaskDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Add a short description (or hit Skip).", skipKeyboard())
	case stageTaskDescription:
		if !isSkipInput(text) {
			state.task.Description = text
		}
		state.stage = stageTaskCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 Pick a category or type your own (Skip works too).", categoryKeyboard())
	case stageTaskCategory:
		if !isSkipInput(text) {
			state.task.Category = text
		}
		state.stage = stageTaskDueDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "📅 Due date as <code>2026-09-15</code> (or Skip).", skipKeyboard())
	case stageTaskDueDate:
		if !isSkipInput(text) {
			parsed, err := time.ParseInLocation(model.DateLayout, text, time.Local)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "I can't read that date. Use <code>2026-09-15</code> or Skip.", skipKeyboard())
			}
			state.task.DueDate = &parsed
		}
		state.stage = stageTaskPriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "🚦 How urgent is it?", priorityKeyboard())
	case stageTaskPriority:
		priority, ok := parsePriority(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Pick low, medium or high.", priorityKeyboard())
		}
		state.task.Priority = priority
		err := b.finishTaskCreation(ctx, msg.Chat.ID, state.task)
		b.clearConversation(msg.From.ID)
		return err

	case stageReminderTask:
		index, err := strconv.Atoi(text)
		if err != nil || index < 1 || index > len(state.taskChoices) {
			return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("Reply with a number between 1 and %d.", len(state.taskChoices)), cancelKeyboard())
		}
		state.reminder.TaskID = state.taskChoices[index-1]
		state.stage = stageReminderTime
		return b.sendWithReplyMarkup(msg.Chat.ID, "🕘 What time? Use 24-hour <code>HH:MM</code>, e.g. <code>09:30</code>.", cancelKeyboard())
	case stageReminderTime:
		hour, minute, err := model.ParseClock(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "That's not an HH:MM time. Try <code>09:30</code>.", cancelKeyboard())
		}
		state.reminder.Time = fmt.Sprintf("%02d:%02d", hour, minute)
		state.stage = stageReminderRepeat
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 How often?", repeatKeyboard())
	case stageReminderRepeat:
		repeat, ok := parseRepeat(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Pick one of the buttons: Once, Every day or Custom days.", repeatKeyboard())
		}
		state.reminder.Repeat = repeat
		if repeat == model.RepeatCustom {
			state.stage = stageReminderDays
			return b.sendWithReplyMarkup(msg.Chat.ID, "📆 Which days? List them like <code>Mon Wed Fri</code>.", cancelKeyboard())
		}
		state.stage = stageReminderSilent
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔕 Deliver silently?", yesNoKeyboard())
	case stageReminderDays:
		days, err := parseDays(text)
		if err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, fmt.Sprintf("I can't read that (%s). Try something like <code>Mon Wed Fri</code>.", escape(err.Error())), cancelKeyboard())
		}
		state.reminder.Days = days
		state.stage = stageReminderSilent
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔕 Deliver silently?", yesNoKeyboard())
	case stageReminderSilent:
		silent, ok := parseYesNo(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Yes or No, please.", yesNoKeyboard())
		}
		state.reminder.Sound = !silent
		state.reminder.Vibration = !silent
		state.stage = stageReminderSnooze
		return b.sendWithReplyMarkup(msg.Chat.ID, "😴 Allow snoozing?", yesNoKeyboard())
	case stageReminderSnooze:
		snooze, ok := parseYesNo(text)
		if !ok {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Yes or No, please.", yesNoKeyboard())
		}
		state.reminder.Snooze = snooze
		err := b.finishReminderCreation(ctx, msg.Chat.ID, state.reminder)
		b.clearConversation(msg.From.ID)
		return err

	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Dialog reset. Start over with /newtask or /remind.")
	}
}

func (b *Bot) finishTaskCreation(ctx context.Context, chatID int64, input service.TaskInput) error {
	task, err := b.taskSvc.CreateTask(ctx, input)
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Couldn't save the task: %s", escape(err.Error())))
	}

	b.log.Infow("task created", "task", task.ID, "priority", task.Priority)

	var summary strings.Builder
	summary.WriteString("✅ <b>Task saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Name:</b> %s\n", escape(task.Name)))
	if task.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Description:</b> %s\n", escape(task.Description)))
	}
	summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", escape(task.Category)))
	summary.WriteString(fmt.Sprintf("• <b>Priority:</b> %s\n", priorityLabel(task.Priority)))
	if task.DueDate != nil {
		summary.WriteString(fmt.Sprintf("• <b>Due:</b> %s\n", task.DueDate.Format(model.DateLayout)))
	}
	summary.WriteString("\nSet a reminder for it with /remind.")

	return b.sendTextWithRemove(chatID, strings.TrimSpace(summary.String()))
}

func (b *Bot) finishReminderCreation(ctx context.Context, chatID int64, input service.ReminderInput) error {
	rem, err := b.reminderSvc.CreateReminder(ctx, input)
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Couldn't save the reminder: %s", escape(err.Error())))
	}

	b.log.Infow("reminder created", "reminder", rem.ID, "time", rem.Time, "repeat", rem.Repeat)

	var summary strings.Builder
	summary.WriteString("⏰ <b>Reminder set</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Time:</b> %s\n", rem.Time))
	summary.WriteString(fmt.Sprintf("• <b>Repeat:</b> %s\n", repeatLabel(rem)))
	if !rem.Sound {
		summary.WriteString("• 🔕 silent\n")
	}
	if rem.Snooze {
		summary.WriteString("• 😴 snooze allowed\n")
	}

	return b.sendTextWithRemove(chatID, strings.TrimSpace(summary.String()))
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}
