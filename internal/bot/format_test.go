package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDays(t *testing.T) {
	days, err := parseDays("Mon Wed Fri")
	require.NoError(t, err)
	assert.True(t, days.Active(time.Monday))
	assert.True(t, days.Active(time.Wednesday))
	assert.True(t, days.Active(time.Friday))
	assert.False(t, days.Active(time.Sunday))

	days, err = parseDays("monday, tuesday; SAT")
	require.NoError(t, err)
	assert.True(t, days.Active(time.Monday))
	assert.True(t, days.Active(time.Tuesday))
	assert.True(t, days.Active(time.Saturday))
}

func TestParseDaysErrors(t *testing.T) {
	_, err := parseDays("   ")
	assert.EqualError(t, err, "no days given")

	_, err = parseDays("mon funday")
	assert.EqualError(t, err, `unknown day "funday"`)
}
