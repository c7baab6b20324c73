package alarm_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"focus-planner/internal/alarm"
	"focus-planner/internal/model"
)

type fakeStore struct {
	order     []string
	reminders map[string]*model.Reminder
	listErr   error
}

func newFakeStore(reminders ...*model.Reminder) *fakeStore {
	s := &fakeStore{reminders: make(map[string]*model.Reminder)}
	for _, r := range reminders {
		s.order = append(s.order, r.ID)
		s.reminders[r.ID] = r
	}
	return s
}

func (s *fakeStore) ListEnabled(ctx context.Context) ([]model.Reminder, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Reminder
	for _, id := range s.order {
		if r := s.reminders[id]; r.Enabled {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeStore) FindByID(ctx context.Context, id string) (*model.Reminder, error) {
	r, ok := s.reminders[id]
	if !ok {
		return nil, fmt.Errorf("reminder %s not found", id)
	}
	copied := *r
	return &copied, nil
}

func (s *fakeStore) Save(ctx context.Context, r *model.Reminder) error {
	copied := *r
	s.reminders[r.ID] = &copied
	return nil
}

type fakeTasks struct {
	tasks map[string]*model.Task
}

func (f *fakeTasks) FindByID(ctx context.Context, id string) (*model.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s not found", id)
	}
	return t, nil
}

type shownAlarm struct {
	reminderID string
	taskName   string
}

type fakeNotifier struct {
	shown   []shownAlarm
	cleared []string
	showErr error
}

func (f *fakeNotifier) ShowAlarm(ctx context.Context, r model.Reminder, taskName string) error {
	f.shown = append(f.shown, shownAlarm{reminderID: r.ID, taskName: taskName})
	return f.showErr
}

func (f *fakeNotifier) ClearAlarm(ctx context.Context, reminderID string) {
	f.cleared = append(f.cleared, reminderID)
}

type fakeScheduler struct {
	scheduled int
	removed   []cron.EntryID
}

func (f *fakeScheduler) ScheduleEveryMinute(job func()) (cron.EntryID, error) {
	f.scheduled++
	return cron.EntryID(f.scheduled), nil
}

func (f *fakeScheduler) Remove(id cron.EntryID) {
	f.removed = append(f.removed, id)
}

type fixture struct {
	session  *alarm.Session
	store    *fakeStore
	notifier *fakeNotifier
	sched    *fakeScheduler
	clk      clock.FakeClock
}

func newFixture(t *testing.T, reminders ...*model.Reminder) *fixture {
	t.Helper()

	store := newFakeStore(reminders...)
	tasks := &fakeTasks{tasks: map[string]*model.Task{
		"task-1": {ID: "task-1", Name: "Write report"},
	}}
	notifier := &fakeNotifier{}
	sched := &fakeScheduler{}

	clk := clock.NewFake()
	clk.Set(monday9)

	session := alarm.NewSession(store, tasks, notifier, sched, clk, zap.NewNop().Sugar(), 5*time.Minute)
	return &fixture{session: session, store: store, notifier: notifier, sched: sched, clk: clk}
}

func TestTickPromotesFirstDueOnly(t *testing.T) {
	first := baseReminder(model.RepeatDaily)
	first.ID = "first"
	second := baseReminder(model.RepeatDaily)
	second.ID = "second"

	f := newFixture(t, &first, &second)
	ctx := context.Background()

	require.NoError(t, f.session.Tick(ctx))
	assert.Equal(t, "first", f.session.Active())
	require.Len(t, f.notifier.shown, 1)
	assert.Equal(t, "first", f.notifier.shown[0].reminderID)
	assert.Equal(t, "Write report", f.notifier.shown[0].taskName)

	// The active alarm blocks any further promotion.
	require.NoError(t, f.session.Tick(ctx))
	assert.Equal(t, "first", f.session.Active())
	assert.Len(t, f.notifier.shown, 1)
}

func TestQueuedReminderPromotedAfterResolve(t *testing.T) {
	first := baseReminder(model.RepeatDaily)
	first.ID = "first"
	second := baseReminder(model.RepeatDaily)
	second.ID = "second"

	f := newFixture(t, &first, &second)
	ctx := context.Background()

	require.NoError(t, f.session.Tick(ctx))
	require.NoError(t, f.session.Dismiss(ctx, "first"))
	assert.Equal(t, "", f.session.Active())

	// Still inside the same minute: the second reminder gets its turn,
	// while the dismissed one is held back by its fresh watermark.
	require.NoError(t, f.session.Tick(ctx))
	assert.Equal(t, "second", f.session.Active())
}

func TestDismissOneShotRetiresForever(t *testing.T) {
	r := baseReminder(model.RepeatNone)
	f := newFixture(t, &r)
	ctx := context.Background()

	require.NoError(t, f.session.Tick(ctx))
	require.Equal(t, r.ID, f.session.Active())

	require.NoError(t, f.session.Dismiss(ctx, r.ID))
	assert.Equal(t, "", f.session.Active())
	assert.Equal(t, []string{r.ID}, f.notifier.cleared)

	saved := f.store.reminders[r.ID]
	assert.False(t, saved.Enabled, "one-shot must be disabled by dismiss")
	require.NotNil(t, saved.TriggeredAt)
	assert.Equal(t, monday9, *saved.TriggeredAt)

	// It never comes back, on any future day.
	for day := 1; day <= 3; day++ {
		f.clk.Set(monday9.AddDate(0, 0, day))
		require.NoError(t, f.session.Tick(ctx))
		assert.Equal(t, "", f.session.Active())
	}
}

func TestDismissRepeatingStaysArmed(t *testing.T) {
	r := baseReminder(model.RepeatDaily)
	f := newFixture(t, &r)
	ctx := context.Background()

	require.NoError(t, f.session.Tick(ctx))
	require.NoError(t, f.session.Dismiss(ctx, r.ID))

	saved := f.store.reminders[r.ID]
	assert.True(t, saved.Enabled, "dismiss must not disable a repeating reminder")

	// Due again at the same time the next day.
	f.clk.Set(monday9.AddDate(0, 0, 1))
	require.NoError(t, f.session.Tick(ctx))
	assert.Equal(t, r.ID, f.session.Active())
}

func TestSnoozeRearmsFiveMinutesOut(t *testing.T) {
	fired := monday9.AddDate(0, 0, -1)
	r := baseReminder(model.RepeatDaily)
	r.Snooze = true
	r.TriggeredAt = &fired

	f := newFixture(t, &r)
	ctx := context.Background()

	require.NoError(t, f.session.Tick(ctx))
	require.NoError(t, f.session.Snooze(ctx, r.ID))
	assert.Equal(t, "", f.session.Active())
	assert.Equal(t, []string{r.ID}, f.notifier.cleared)

	saved := f.store.reminders[r.ID]
	assert.Equal(t, "09:05", saved.Time, "nominal schedule shifts with the snooze")
	assert.Nil(t, saved.TriggeredAt, "watermark cleared so the rearmed time can fire")

	// Five minutes later the alarm raises again.
	f.clk.Add(5 * time.Minute)
	require.NoError(t, f.session.Tick(ctx))
	assert.Equal(t, r.ID, f.session.Active())
}

func TestSnoozeRejectedWithoutCapability(t *testing.T) {
	r := baseReminder(model.RepeatDaily)
	r.Snooze = false
	f := newFixture(t, &r)
	ctx := context.Background()

	require.NoError(t, f.session.Tick(ctx))
	assert.Error(t, f.session.Snooze(ctx, r.ID))
	assert.Equal(t, r.ID, f.session.Active(), "alarm stays active when snooze is not allowed")
	assert.Empty(t, f.notifier.cleared)
}

func TestNotifierFailureKeepsAlarmActive(t *testing.T) {
	r := baseReminder(model.RepeatDaily)
	f := newFixture(t, &r)
	f.notifier.showErr = fmt.Errorf("delivery blocked")

	require.NoError(t, f.session.Tick(context.Background()))
	assert.Equal(t, r.ID, f.session.Active(), "the surface stays authoritative even when delivery fails")
}

func TestMissingTaskGetsPlaceholderName(t *testing.T) {
	r := baseReminder(model.RepeatDaily)
	r.TaskID = "gone"
	f := newFixture(t, &r)
	ctx := context.Background()

	require.NoError(t, f.session.Tick(ctx))
	require.Len(t, f.notifier.shown, 1)
	assert.Equal(t, alarm.UnknownTaskName, f.notifier.shown[0].taskName)

	// Dismiss still works without the task.
	require.NoError(t, f.session.Dismiss(ctx, r.ID))
	assert.Equal(t, "", f.session.Active())
}

func TestStaleResponsesIgnored(t *testing.T) {
	r := baseReminder(model.RepeatNone)
	f := newFixture(t, &r)
	ctx := context.Background()

	require.NoError(t, f.session.Dismiss(ctx, "other"))
	require.NoError(t, f.session.Snooze(ctx, "other"))
	assert.Empty(t, f.notifier.cleared)
	assert.True(t, f.store.reminders[r.ID].Enabled)
}

func TestStartStopReleaseTickAndAlarmTogether(t *testing.T) {
	r := baseReminder(model.RepeatDaily)
	f := newFixture(t, &r)
	ctx := context.Background()

	require.NoError(t, f.session.Start())
	assert.Error(t, f.session.Start(), "double start must fail")
	assert.Equal(t, 1, f.sched.scheduled)

	require.NoError(t, f.session.Tick(ctx))
	require.Equal(t, r.ID, f.session.Active())

	f.session.Stop()
	assert.Len(t, f.sched.removed, 1)
	assert.Equal(t, []string{r.ID}, f.notifier.cleared)
	assert.Equal(t, "", f.session.Active())
}
