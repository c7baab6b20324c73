package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/jmhodges/clock"

	"focus-planner/internal/model"
	"focus-planner/internal/repository"
)

// StatsService builds human-readable agenda and productivity summaries.
type StatsService struct {
	tasks        *repository.TaskRepository
	productivity *repository.ProductivityRepository
	clk          clock.Clock
}

func NewStatsService(tasks *repository.TaskRepository, productivity *repository.ProductivityRepository, clk clock.Clock) *StatsService {
	return &StatsService{tasks: tasks, productivity: productivity, clk: clk}
}

// DailyAgenda lists the open tasks, most urgent first, together with what
// got done today so far.
func (s *StatsService) DailyAgenda(ctx context.Context) (string, error) {
	now := s.clk.Now()

	pending, err := s.tasks.ListActive(ctx)
	if err != nil {
		return "", err
	}

	sort.SliceStable(pending, func(i, j int) bool {
		switch {
		case pending[i].DueDate == nil && pending[j].DueDate == nil:
			return pending[i].CreatedAt.After(pending[j].CreatedAt)
		case pending[i].DueDate == nil:
			return false
		case pending[j].DueDate == nil:
			return true
		default:
			return pending[i].DueDate.Before(*pending[j].DueDate)
		}
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily agenda</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("Mon, 02 Jan 2006")))

	builder.WriteString("🔥 <b>Open tasks</b>\n")
	if len(pending) == 0 {
		builder.WriteString("— nothing open, enjoy the day\n")
	} else {
		for _, task := range pending {
			builder.WriteString(formatAgendaTask(task, now))
		}
	}

	today := now.Format(model.DateLayout)
	rows, err := s.productivity.ListRange(ctx, today, today)
	if err != nil {
		return "", err
	}
	builder.WriteString("\n📈 <b>Today so far</b>\n")
	if len(rows) == 0 {
		builder.WriteString("— no completed tasks or focus time yet\n")
	} else {
		builder.WriteString(fmt.Sprintf("✅ %d tasks · ⏱ %d focus min\n", rows[0].CompletedTasks, rows[0].FocusMinutes))
	}

	return strings.TrimSpace(builder.String()), nil
}

// WeeklySummary aggregates the last seven days of productivity counters.
func (s *StatsService) WeeklySummary(ctx context.Context) (string, error) {
	now := s.clk.Now()
	from := now.AddDate(0, 0, -6)

	rows, err := s.productivity.ListRange(ctx, from.Format(model.DateLayout), now.Format(model.DateLayout))
	if err != nil {
		return "", err
	}
	byDate := make(map[string]model.ProductivityData, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row
	}

	var builder strings.Builder
	builder.WriteString("📊 <b>Last 7 days</b>\n\n")

	var totalTasks, totalMinutes int
	for day := from; !day.After(now); day = day.AddDate(0, 0, 1) {
		key := day.Format(model.DateLayout)
		row := byDate[key]
		totalTasks += row.CompletedTasks
		totalMinutes += row.FocusMinutes
		builder.WriteString(fmt.Sprintf("%s · ✅ %d · ⏱ %d min\n", day.Format("Mon 02.01"), row.CompletedTasks, row.FocusMinutes))
	}

	builder.WriteString(fmt.Sprintf("\n<b>Total:</b> %d tasks · %d focus minutes", totalTasks, totalMinutes))
	return builder.String(), nil
}

func formatAgendaTask(task model.Task, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	switch task.Priority {
	case model.PriorityHigh:
		icon = "🔴"
	case model.PriorityMedium:
		icon = "🟡"
	}

	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Name))))
	if task.Category != "" {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(task.Category)))
	}

	if task.DueDate != nil {
		d := task.DueDate.In(now.Location())
		endOfDue := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 0, now.Location())
		if now.After(endOfDue) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s — <b>overdue</b>", d.Format(model.DateLayout)))
		} else {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s", d.Format(model.DateLayout)))
		}
	}

	sb.WriteByte('\n')
	return sb.String()
}
