package alarm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"focus-planner/internal/alarm"
	"focus-planner/internal/model"
)

// Monday, 2 March 2026, 09:00 local.
var monday9 = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func baseReminder(repeat model.RepeatPolicy) model.Reminder {
	return model.Reminder{
		ID:      "rem-1",
		TaskID:  "task-1",
		Time:    "09:00",
		Repeat:  repeat,
		Enabled: true,
	}
}

func TestDueRemindersTimeMatch(t *testing.T) {
	r := baseReminder(model.RepeatDaily)

	tests := []struct {
		name string
		now  time.Time
		due  bool
	}{
		{"exact minute", monday9, true},
		{"one minute late", monday9.Add(time.Minute), false},
		{"one minute early", monday9.Add(-time.Minute), false},
		{"same minute different seconds", monday9.Add(42 * time.Second), true},
		{"wrong hour", monday9.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due := alarm.DueReminders(tt.now, []model.Reminder{r})
			assert.Equal(t, tt.due, len(due) == 1)
		})
	}
}

func TestDueRemindersDisabledNeverDue(t *testing.T) {
	r := baseReminder(model.RepeatDaily)
	r.Enabled = false

	assert.Empty(t, alarm.DueReminders(monday9, []model.Reminder{r}))
}

func TestDueRemindersOneShot(t *testing.T) {
	r := baseReminder(model.RepeatNone)
	assert.Len(t, alarm.DueReminders(monday9, []model.Reminder{r}), 1)

	// Fired yesterday: a one-shot never comes back, whatever the day.
	yesterday := monday9.AddDate(0, 0, -1)
	r.TriggeredAt = &yesterday
	assert.Empty(t, alarm.DueReminders(monday9, []model.Reminder{r}))

	// Fired a minute ago, same day: suppressed as well.
	justNow := monday9.Add(-time.Minute)
	r.TriggeredAt = &justNow
	assert.Empty(t, alarm.DueReminders(monday9, []model.Reminder{r}))
}

func TestDueRemindersSameDaySuppression(t *testing.T) {
	// A repeating reminder already fired this minute must not fire again
	// when the evaluator re-enters the same minute.
	tests := []struct {
		repeat       model.RepeatPolicy
		daysToReFire int
	}{
		{model.RepeatDaily, 1},
		{model.RepeatCustom, 7}, // Monday-only set, next occurrence a week out
	}

	for _, tt := range tests {
		r := baseReminder(tt.repeat)
		r.Days = &model.DaySet{false, true, false, false, false, false, false} // Monday
		fired := monday9
		r.TriggeredAt = &fired

		assert.Empty(t, alarm.DueReminders(monday9.Add(30*time.Second), []model.Reminder{r}), string(tt.repeat))

		// On its next scheduled day the watermark no longer matches.
		assert.Len(t, alarm.DueReminders(monday9.AddDate(0, 0, tt.daysToReFire), []model.Reminder{r}), 1, string(tt.repeat))
	}
}

func TestDueRemindersCustomDays(t *testing.T) {
	r := baseReminder(model.RepeatCustom)
	r.Days = &model.DaySet{false, true, false, true, false, false, false} // Mon, Wed

	assert.Len(t, alarm.DueReminders(monday9, []model.Reminder{r}), 1, "monday selected")
	assert.Empty(t, alarm.DueReminders(monday9.AddDate(0, 0, 1), []model.Reminder{r}), "tuesday not selected")
	assert.Len(t, alarm.DueReminders(monday9.AddDate(0, 0, 2), []model.Reminder{r}), 1, "wednesday selected")
}

func TestDueRemindersCustomWithoutDaysNeverDue(t *testing.T) {
	r := baseReminder(model.RepeatCustom)
	r.Days = nil
	assert.Empty(t, alarm.DueReminders(monday9, []model.Reminder{r}), "missing day set")

	r.Days = &model.DaySet{}
	for d := 0; d < 7; d++ {
		assert.Empty(t, alarm.DueReminders(monday9.AddDate(0, 0, d), []model.Reminder{r}), "empty day set")
	}
}

func TestDueRemindersMalformedNeverDueNeverPanics(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*model.Reminder)
	}{
		{"garbage time", func(r *model.Reminder) { r.Time = "soonish" }},
		{"hour out of range", func(r *model.Reminder) { r.Time = "24:00" }},
		{"minute out of range", func(r *model.Reminder) { r.Time = "09:60" }},
		{"unknown repeat", func(r *model.Reminder) { r.Repeat = "hourly" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := baseReminder(model.RepeatDaily)
			tt.mut(&r)
			assert.Empty(t, alarm.DueReminders(monday9, []model.Reminder{r}))
		})
	}
}

func TestDueRemindersPreservesInputOrder(t *testing.T) {
	a := baseReminder(model.RepeatDaily)
	a.ID = "a"
	b := baseReminder(model.RepeatNone)
	b.ID = "b"
	c := baseReminder(model.RepeatDaily)
	c.ID = "c"
	c.Enabled = false

	due := alarm.DueReminders(monday9, []model.Reminder{a, b, c})
	var ids []string
	for _, r := range due {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}
