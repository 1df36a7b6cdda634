// Package grid lays reservations out on the staff occupancy calendar: one
// row per unit, one column per day, and each stay drawn as a bar.
package grid

import (
	"time"

	"github.com/iliyamo/cabin-booking/internal/booking"
)

const (
	// DefaultDays is the width of the calendar.
	DefaultDays = 21
	// Step is how far Forward and Back move the window.
	Step = 7
)

// Window is a run of consecutive calendar days starting at Start.
type Window struct {
	Start time.Time
	Days  int
}

// NewWindow returns a window of days days starting at start.  A
// non-positive days falls back to DefaultDays.
func NewWindow(start time.Time, days int) Window {
	if days <= 0 {
		days = DefaultDays
	}
	return Window{Start: booking.Day(start), Days: days}
}

// End is the first day after the window.
func (w Window) End() time.Time { return w.Start.AddDate(0, 0, w.Days) }

// Dates lists the visible days.
func (w Window) Dates() []time.Time {
	out := make([]time.Time, w.Days)
	for i := range out {
		out[i] = w.Start.AddDate(0, 0, i)
	}
	return out
}

// Index returns the column of day d, or -1 when d is outside the window.
func (w Window) Index(d time.Time) int {
	d = booking.Day(d)
	if d.Before(w.Start) || !d.Before(w.End()) {
		return -1
	}
	return int(d.Sub(w.Start).Hours() / 24)
}

// Navigator holds the window a staff member is looking at.
type Navigator struct {
	window Window
	today  func() time.Time
}

// NewNavigator starts at today.  today is called again on every Today().
func NewNavigator(days int, today func() time.Time) *Navigator {
	if today == nil {
		today = time.Now
	}
	return &Navigator{window: NewWindow(today(), days), today: today}
}

func (n *Navigator) Window() Window { return n.window }

func (n *Navigator) Forward() Window {
	n.window.Start = n.window.Start.AddDate(0, 0, Step)
	return n.window
}

func (n *Navigator) Back() Window {
	n.window.Start = n.window.Start.AddDate(0, 0, -Step)
	return n.window
}

// Today moves the window back to start on the current day.
func (n *Navigator) Today() Window {
	n.window.Start = booking.Day(n.today())
	return n.window
}
