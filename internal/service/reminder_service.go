package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"focus-planner/internal/model"
	"focus-planner/internal/repository"
)

// ReminderInput represents data required to create a reminder.
type ReminderInput struct {
	TaskID    string
	Time      string // HH:MM
	Repeat    model.RepeatPolicy
	Days      *model.DaySet
	Sound     bool
	Vibration bool
	Snooze    bool
}

// ReminderService wraps reminder CRUD and validation. Scheduling decisions
// live in the alarm package; this service only gatekeeps what gets stored.
type ReminderService struct {
	reminders *repository.ReminderRepository
	tasks     *repository.TaskRepository
}

func NewReminderService(reminders *repository.ReminderRepository, tasks *repository.TaskRepository) *ReminderService {
	return &ReminderService{reminders: reminders, tasks: tasks}
}

func (s *ReminderService) CreateReminder(ctx context.Context, input ReminderInput) (*model.Reminder, error) {
	if _, _, err := model.ParseClock(input.Time); err != nil {
		return nil, err
	}
	if !model.ValidRepeat(input.Repeat) {
		return nil, fmt.Errorf("unknown repeat policy %q", input.Repeat)
	}
	if input.Repeat == model.RepeatCustom {
		if input.Days == nil || !input.Days.Any() {
			return nil, fmt.Errorf("custom repeat needs at least one selected day")
		}
	} else {
		input.Days = nil
	}
	if _, err := s.tasks.FindByID(ctx, input.TaskID); err != nil {
		return nil, fmt.Errorf("look up task %q: %w", input.TaskID, err)
	}

	rem := model.Reminder{
		ID:        uuid.NewString(),
		TaskID:    input.TaskID,
		Time:      input.Time,
		Sound:     input.Sound,
		Vibration: input.Vibration,
		Snooze:    input.Snooze,
		Repeat:    input.Repeat,
		Days:      input.Days,
		Enabled:   true,
	}

	if err := s.reminders.Create(ctx, &rem); err != nil {
		return nil, err
	}
	return &rem, nil
}

func (s *ReminderService) List(ctx context.Context) ([]model.Reminder, error) {
	return s.reminders.ListAll(ctx)
}

func (s *ReminderService) Get(ctx context.Context, id string) (*model.Reminder, error) {
	return s.reminders.FindByID(ctx, id)
}

// Toggle flips the enabled gate. The fired watermark is kept as is, so
// re-enabling a dismissed one-shot does not make it fire again.
func (s *ReminderService) Toggle(ctx context.Context, id string) (*model.Reminder, error) {
	rem, err := s.reminders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rem.Enabled = !rem.Enabled
	if err := s.reminders.Save(ctx, rem); err != nil {
		return nil, err
	}
	return rem, nil
}

func (s *ReminderService) Delete(ctx context.Context, id string) error {
	return s.reminders.Delete(ctx, id)
}
