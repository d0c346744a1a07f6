package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeadline(t *testing.T) {
	start := time.Unix(1000, 0)

	var zero Deadline
	assert.False(t, zero.Armed())
	assert.False(t, zero.Passed(start))
	assert.Equal(t, time.Duration(0), zero.TimeLeft(start))

	d := In(start, 5*time.Second)
	assert.True(t, d.Armed())
	assert.False(t, d.Passed(start.Add(4*time.Second)))
	assert.True(t, d.Passed(start.Add(5*time.Second)))
	assert.True(t, d.Passed(start.Add(time.Minute)))
	assert.Equal(t, 3*time.Second, d.TimeLeft(start.Add(2*time.Second)))
	assert.Equal(t, time.Duration(0), d.TimeLeft(start.Add(6*time.Second)))

	d.Clear()
	assert.False(t, d.Passed(start.Add(time.Minute)))
}
