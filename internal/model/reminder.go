package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RepeatPolicy governs how often a reminder fires.
type RepeatPolicy string

const (
	RepeatNone   RepeatPolicy = "none"
	RepeatDaily  RepeatPolicy = "daily"
	RepeatCustom RepeatPolicy = "custom"
)

// ValidRepeat reports whether p is one of the known policies.
func ValidRepeat(p RepeatPolicy) bool {
	switch p {
	case RepeatNone, RepeatDaily, RepeatCustom:
		return true
	}
	return false
}

// DaySet marks the selected days of week for a custom repeat, Sunday first.
type DaySet [7]bool

// Active reports whether the given weekday is selected.
func (d DaySet) Active(day time.Weekday) bool {
	return d[int(day)]
}

// Any reports whether at least one day is selected.
func (d DaySet) Any() bool {
	for _, on := range d {
		if on {
			return true
		}
	}
	return false
}

func (d DaySet) String() string {
	names := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	var picked []string
	for i, on := range d {
		if on {
			picked = append(picked, names[i])
		}
	}
	return strings.Join(picked, ", ")
}

// Reminder schedules an alarm for a task at a wall-clock time of day.
// The JSON shape is the persisted record format and must stay stable.
type Reminder struct {
	ID          string       `json:"id" gorm:"primaryKey"`
	TaskID      string       `json:"taskId" gorm:"index"`
	Time        string       `json:"time"` // HH:MM, 24-hour
	Sound       bool         `json:"sound"`
	Vibration   bool         `json:"vibration"`
	Snooze      bool         `json:"snooze"`
	Repeat      RepeatPolicy `json:"repeat"`
	Days        *DaySet      `json:"days,omitempty" gorm:"serializer:json"`
	Enabled     bool         `json:"enabled"`
	TriggeredAt *time.Time   `json:"triggeredAt,omitempty"`

	// Storage-only creation stamp, keeps listings in insertion order.
	CreatedAt time.Time `json:"-"`
}

// Clock parses the reminder's HH:MM schedule.
func (r *Reminder) Clock() (hour, minute int, err error) {
	return ParseClock(r.Time)
}

// ParseClock validates an HH:MM time-of-day string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// FormatClock renders a wall-clock instant as an HH:MM schedule string.
func FormatClock(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
