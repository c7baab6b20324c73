package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-planner/internal/model"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		hour    int
		minute  int
		wantErr bool
	}{
		{in: "09:00", hour: 9, minute: 0},
		{in: "9:30", hour: 9, minute: 30},
		{in: "23:59", hour: 23, minute: 59},
		{in: "00:00", hour: 0, minute: 0},
		{in: "24:00", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "-1:00", wantErr: true},
		{in: "0900", wantErr: true},
		{in: "aa:bb", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hour, minute, err := model.ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.minute, minute)
		})
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	at := time.Date(2026, time.March, 2, 7, 5, 42, 0, time.UTC)
	s := model.FormatClock(at)
	assert.Equal(t, "07:05", s)

	hour, minute, err := model.ParseClock(s)
	require.NoError(t, err)
	assert.Equal(t, 7, hour)
	assert.Equal(t, 5, minute)
}

func TestDaySet(t *testing.T) {
	var d model.DaySet
	assert.False(t, d.Any())
	assert.Equal(t, "", d.String())

	d[time.Monday] = true
	d[time.Friday] = true
	assert.True(t, d.Any())
	assert.True(t, d.Active(time.Monday))
	assert.False(t, d.Active(time.Sunday))
	assert.Equal(t, "Mon, Fri", d.String())
}
