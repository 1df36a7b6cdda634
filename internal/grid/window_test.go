package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	w := NewWindow(time.Date(2025, 6, 1, 18, 45, 0, 0, time.UTC), 0)
	assert.Equal(t, DefaultDays, w.Days)
	assert.Equal(t, start, w.Start)
	assert.Equal(t, day(21), w.End())
	assert.Len(t, w.Dates(), 21)
	assert.Equal(t, 0, w.Index(start))
	assert.Equal(t, 20, w.Index(day(20)))
	assert.Equal(t, -1, w.Index(day(21)))
	assert.Equal(t, -1, w.Index(day(-1)))
}

func TestNavigator(t *testing.T) {
	today := start.Add(10 * time.Hour)
	n := NewNavigator(21, func() time.Time { return today })

	assert.Equal(t, start, n.Window().Start)
	assert.Equal(t, day(7), n.Forward().Start)
	assert.Equal(t, day(14), n.Forward().Start)
	assert.Equal(t, day(7), n.Back().Start)
	assert.Equal(t, start, n.Today().Start)
	assert.Equal(t, day(-7), n.Back().Start)

	today = today.AddDate(0, 0, 3)
	assert.Equal(t, day(3), n.Today().Start)
	assert.Equal(t, 21, n.Window().Days)
}
