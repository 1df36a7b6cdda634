package booking

import (
	"time"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// Stage is the lifecycle state of a reservation as a closed set of
// variants.  Each variant carries only the fields that are meaningful in
// that state, so an in-house stay always has an arrival time and a
// pending one never has a rating.
type Stage interface {
	Name() string
	stage()
}

// Pending awaits staff confirmation.
type Pending struct{}

// Confirmed is sold but the guest has not arrived.
type Confirmed struct{}

// InHouse is a checked-in stay.
type InHouse struct {
	CheckedInAt time.Time
}

// Completed is a checked-out stay.
type Completed struct {
	CheckedInAt  time.Time
	CheckedOutAt time.Time
	Rating       *int
	Feedback     string
}

// Cancelled no longer occupies any night.
type Cancelled struct{}

func (Pending) Name() string   { return "pending" }
func (Confirmed) Name() string { return "confirmed" }
func (InHouse) Name() string   { return "checked in" }
func (Completed) Name() string { return "completed" }
func (Cancelled) Name() string { return "cancelled" }

func (Pending) stage()   {}
func (Confirmed) stage() {}
func (InHouse) stage()   {}
func (Completed) stage() {}
func (Cancelled) stage() {}

// StageOf derives the variant from the stored record.
func StageOf(r model.Reservation) Stage {
	switch {
	case r.Status == model.StatusCancelled:
		return Cancelled{}
	case r.CheckedOutAt != nil || r.Status == model.StatusCompleted:
		c := Completed{Rating: r.Rating, Feedback: r.Feedback}
		if r.CheckedInAt != nil {
			c.CheckedInAt = *r.CheckedInAt
		}
		if r.CheckedOutAt != nil {
			c.CheckedOutAt = *r.CheckedOutAt
		}
		return c
	case r.CheckedInAt != nil:
		return InHouse{CheckedInAt: *r.CheckedInAt}
	case r.Status == model.StatusConfirmed:
		return Confirmed{}
	default:
		return Pending{}
	}
}
