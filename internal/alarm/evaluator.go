package alarm

import (
	"time"

	"focus-planner/internal/model"
)

// DueReminders filters reminders down to the subset due at now, preserving
// input order. It is pure: no side effects, no mutation of its arguments.
//
// A reminder is due when it is enabled, its HH:MM schedule matches now's
// hour and minute exactly, its repeat policy admits the current day, and it
// has not already fired on the same calendar day. Records that cannot be
// interpreted (unparseable time, custom repeat without a day set) are
// simply never due.
//
// The exact minute match assumes the caller evaluates at least once per
// minute boundary; an occurrence whose minute was never observed is
// silently skipped, with no catch-up firing.
func DueReminders(now time.Time, reminders []model.Reminder) []model.Reminder {
	var due []model.Reminder
	for _, r := range reminders {
		if isDue(now, r) {
			due = append(due, r)
		}
	}
	return due
}

func isDue(now time.Time, r model.Reminder) bool {
	if !r.Enabled {
		return false
	}

	hour, minute, err := r.Clock()
	if err != nil {
		return false
	}
	if hour != now.Hour() || minute != now.Minute() {
		return false
	}

	// A firing earlier on the same calendar day suppresses re-firing,
	// whatever the repeat policy: a second evaluation inside the same
	// minute must not raise the alarm twice. Snooze clears the watermark,
	// so a snoozed reminder still re-arms within the day.
	if r.TriggeredAt != nil && sameDay(*r.TriggeredAt, now) {
		return false
	}

	switch r.Repeat {
	case model.RepeatNone:
		// One-shot reminders fire exactly once, ever.
		return r.TriggeredAt == nil
	case model.RepeatDaily:
		return true
	case model.RepeatCustom:
		return r.Days != nil && r.Days.Active(now.Weekday())
	default:
		return false
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
