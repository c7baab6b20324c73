// Package alarm decides when reminders fire and drives the snooze/dismiss
// state machine around the single active alarm.
package alarm

import (
	"context"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"focus-planner/internal/model"
)

// UnknownTaskName is displayed when a reminder outlives its task.
const UnknownTaskName = "Unknown task"

const defaultSnooze = 5 * time.Minute

// ReminderStore is the engine's view of reminder persistence. All writes
// the engine performs go through Save with the transitions defined on
// Dismiss and Snooze.
type ReminderStore interface {
	ListEnabled(ctx context.Context) ([]model.Reminder, error)
	FindByID(ctx context.Context, id string) (*model.Reminder, error)
	Save(ctx context.Context, r *model.Reminder) error
}

// TaskDirectory resolves task names for display. Lookup only; a missing
// task is not an error to the engine.
type TaskDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Task, error)
}

// Notifier renders the single active alarm and tears it down again.
// ShowAlarm failures are logged and do not demote the alarm; ClearAlarm is
// best effort and must always be safe to call.
type Notifier interface {
	ShowAlarm(ctx context.Context, r model.Reminder, taskName string) error
	ClearAlarm(ctx context.Context, reminderID string)
}

// Scheduler registers and removes the recurring evaluation tick.
type Scheduler interface {
	ScheduleEveryMinute(job func()) (cron.EntryID, error)
	Remove(id cron.EntryID)
}

// Session owns the polling tick and the at-most-one-active-alarm policy.
// The active reminder id is an explicit field, not a side channel: at any
// instant at most one reminder is presented, and everything else due stays
// queued implicitly by being re-evaluated on the next tick.
type Session struct {
	store    ReminderStore
	tasks    TaskDirectory
	notifier Notifier
	sched    Scheduler
	clk      clock.Clock
	log      *zap.SugaredLogger

	snoozeFor   time.Duration
	tickTimeout time.Duration

	mu       sync.Mutex
	activeID string
	entryID  cron.EntryID
	started  bool
}

// NewSession wires an alarm session. snoozeFor <= 0 falls back to the
// classic 5 minutes.
func NewSession(store ReminderStore, tasks TaskDirectory, notifier Notifier, sched Scheduler, clk clock.Clock, log *zap.SugaredLogger, snoozeFor time.Duration) *Session {
	if snoozeFor <= 0 {
		snoozeFor = defaultSnooze
	}
	return &Session{
		store:       store,
		tasks:       tasks,
		notifier:    notifier,
		sched:       sched,
		clk:         clk,
		log:         log,
		snoozeFor:   snoozeFor,
		tickTimeout: 30 * time.Second,
	}
}

// Start registers the once-per-minute evaluation tick.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("alarm session already started")
	}
	id, err := s.sched.ScheduleEveryMinute(s.tickJob)
	if err != nil {
		return errors.Wrap(err, "schedule alarm tick")
	}
	s.entryID = id
	s.started = true
	return nil
}

// Stop releases the polling tick and clears any active alarm. The timer and
// the notification handle are acquired together in Start and released
// together here, on every shutdown path.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.started {
		s.sched.Remove(s.entryID)
		s.started = false
	}
	active := s.activeID
	s.activeID = ""
	s.mu.Unlock()

	if active != "" {
		ctx, cancel := context.WithTimeout(context.Background(), s.tickTimeout)
		defer cancel()
		s.notifier.ClearAlarm(ctx, active)
	}
}

// Active returns the id of the reminder currently shown, or "".
func (s *Session) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *Session) tickJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.tickTimeout)
	defer cancel()
	if err := s.Tick(ctx); err != nil {
		// Evaluation problems never escape the loop; worst case is a
		// silently skipped occurrence.
		s.log.Errorw("alarm tick failed", "err", err)
	}
}

// Tick evaluates the reminder pool once and, if no alarm is currently
// active, promotes the first due reminder and triggers its side effects.
func (s *Session) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID != "" {
		// The active alarm blocks further promotion; whatever else is due
		// will be picked up once it resolves.
		return nil
	}

	reminders, err := s.store.ListEnabled(ctx)
	if err != nil {
		return errors.Wrap(err, "list reminders")
	}

	due := DueReminders(s.clk.Now(), reminders)
	if len(due) == 0 {
		return nil
	}

	next := due[0]
	s.activeID = next.ID
	if len(due) > 1 {
		s.log.Infow("more reminders due behind the active alarm", "active", next.ID, "waiting", len(due)-1)
	}

	if err := s.notifier.ShowAlarm(ctx, next, s.taskName(ctx, next.TaskID)); err != nil {
		// The notification surface stays authoritative: the alarm is
		// active even when delivery of the loud part failed.
		s.log.Warnw("alarm notification failed", "reminder", next.ID, "err", err)
	}
	return nil
}

// Dismiss resolves the active alarm. One-shot reminders are disabled for
// good; repeating ones stay armed for their next occurrence. Side effects
// are torn down unconditionally, before the store write.
func (s *Session) Dismiss(ctx context.Context, reminderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID != reminderID {
		s.log.Debugw("dismiss for non-active reminder ignored", "reminder", reminderID)
		return nil
	}
	s.notifier.ClearAlarm(ctx, reminderID)
	s.activeID = ""

	r, err := s.store.FindByID(ctx, reminderID)
	if err != nil {
		return errors.Wrap(err, "load reminder")
	}

	now := s.clk.Now()
	r.TriggeredAt = &now
	r.Enabled = r.Repeat != model.RepeatNone
	if err := s.store.Save(ctx, r); err != nil {
		return errors.Wrap(err, "save dismissed reminder")
	}
	s.log.Infow("reminder dismissed", "reminder", r.ID, "repeat", r.Repeat, "enabled", r.Enabled)
	return nil
}

// Snooze re-arms the active alarm a few minutes out by rewriting its
// nominal HH:MM schedule and clearing the fired watermark so same-day
// suppression does not block the new time. A snoozed repeating reminder's
// permanent schedule shifts with it.
func (s *Session) Snooze(ctx context.Context, reminderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID != reminderID {
		s.log.Debugw("snooze for non-active reminder ignored", "reminder", reminderID)
		return nil
	}

	r, err := s.store.FindByID(ctx, reminderID)
	if err != nil {
		s.notifier.ClearAlarm(ctx, reminderID)
		s.activeID = ""
		return errors.Wrap(err, "load reminder")
	}
	if !r.Snooze {
		return errors.Errorf("reminder %s does not allow snoozing", reminderID)
	}
	s.notifier.ClearAlarm(ctx, reminderID)
	s.activeID = ""

	r.Time = model.FormatClock(s.clk.Now().Add(s.snoozeFor))
	r.TriggeredAt = nil
	if err := s.store.Save(ctx, r); err != nil {
		return errors.Wrap(err, "save snoozed reminder")
	}
	s.log.Infow("reminder snoozed", "reminder", r.ID, "until", r.Time)
	return nil
}

func (s *Session) taskName(ctx context.Context, taskID string) string {
	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil || t == nil {
		return UnknownTaskName
	}
	return t.Name
}
