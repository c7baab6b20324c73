package bot

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"focus-planner/internal/model"
	"focus-planner/internal/service"
)

const (
	btnSkip   = "⏭️ Skip"
	btnCancel = "⏪ Cancel"
	btnYes    = "Yes"
	btnNo     = "No"

	btnRepeatOnce   = "Once"
	btnRepeatDaily  = "Every day"
	btnRepeatCustom = "Custom days"
)

// Category suggestions offered in the new-task dialog; free-form input is
// accepted as well.
var taskCategories = []string{"Work", "Study", "Personal", "Health", "Groceries", "Finance", "Other"}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, limit int) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

func isSkipInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return text == btnSkip || lower == "skip" || lower == "-"
}

func isCancelInput(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	return text == btnCancel || lower == "cancel"
}

func parseYesNo(text string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case strings.ToLower(btnYes), "y", "yes":
		return true, true
	case strings.ToLower(btnNo), "n", "no":
		return false, true
	}
	return false, false
}

func parsePriority(text string) (model.Priority, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(lower, "low"):
		return model.PriorityLow, true
	case strings.Contains(lower, "medium"):
		return model.PriorityMedium, true
	case strings.Contains(lower, "high"):
		return model.PriorityHigh, true
	}
	return "", false
}

func parseRepeat(text string) (model.RepeatPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case strings.ToLower(btnRepeatOnce), "once", "none":
		return model.RepeatNone, true
	case strings.ToLower(btnRepeatDaily), "daily":
		return model.RepeatDaily, true
	case strings.ToLower(btnRepeatCustom), "custom":
		return model.RepeatCustom, true
	}
	return "", false
}

var dayAliases = map[string]int{
	"sun": 0, "sunday": 0,
	"mon": 1, "monday": 1,
	"tue": 2, "tues": 2, "tuesday": 2,
	"wed": 3, "wednesday": 3,
	"thu": 4, "thur": 4, "thurs": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
}

func parseDays(text string) (*model.DaySet, error) {
	var days model.DaySet
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == ' ' || r == ',' || r == ';'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no days given")
	}
	for _, field := range fields {
		index, ok := dayAliases[field]
		if !ok {
			return nil, fmt.Errorf("unknown day %q", field)
		}
		days[index] = true
	}
	return &days, nil
}

func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "🔴 high"
	case model.PriorityMedium:
		return "🟡 medium"
	default:
		return "🟢 low"
	}
}

func phaseLabel(p service.FocusPhase) string {
	switch p {
	case service.PhaseShortBreak, service.PhaseLongBreak:
		return "break"
	default:
		return "focus"
	}
}

func repeatLabel(r *model.Reminder) string {
	switch r.Repeat {
	case model.RepeatDaily:
		return "every day"
	case model.RepeatCustom:
		if r.Days != nil {
			return r.Days.String()
		}
		return "custom (no days)"
	default:
		return "once"
	}
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func yesNoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnYes),
			tgbotapi.NewKeyboardButton(btnNo),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🟢 low"),
			tgbotapi.NewKeyboardButton("🟡 medium"),
			tgbotapi.NewKeyboardButton("🔴 high"),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func repeatKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnRepeatOnce),
			tgbotapi.NewKeyboardButton(btnRepeatDaily),
			tgbotapi.NewKeyboardButton(btnRepeatCustom),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func categoryKeyboard() tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(taskCategories); i += 3 {
		end := i + 3
		if end > len(taskCategories) {
			end = len(taskCategories)
		}
		var row []tgbotapi.KeyboardButton
		for _, name := range taskCategories[i:end] {
			row = append(row, tgbotapi.NewKeyboardButton(name))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancel),
	))
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.OneTimeKeyboard = true
	return kb
}
