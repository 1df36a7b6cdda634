package booking

import (
	"errors"
	"sort"
	"time"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// DateSet is the set of nights a unit cannot be sold for.  Besides the
// explicit dates taken by reservations, every date before Before is
// implicitly blocked so nothing can be booked in the past.
type DateSet struct {
	Before time.Time
	dates  map[time.Time]struct{}
}

// Contains reports whether the night d is blocked.
func (s DateSet) Contains(d time.Time) bool {
	d = Day(d)
	if !s.Before.IsZero() && d.Before(s.Before) {
		return true
	}
	_, ok := s.dates[d]
	return ok
}

// Dates returns the explicitly blocked nights in ascending order.  Past
// dates covered only by Before are not listed.
func (s DateSet) Dates() []time.Time {
	out := make([]time.Time, 0, len(s.dates))
	for d := range s.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Len returns the number of explicitly blocked nights.
func (s DateSet) Len() int { return len(s.dates) }

// NewDateSet builds a set from a list of blocked nights, for example one
// received from the occupancy endpoint.
func NewDateSet(before time.Time, dates []time.Time) DateSet {
	s := DateSet{dates: make(map[time.Time]struct{}, len(dates))}
	if !before.IsZero() {
		s.Before = Day(before)
	}
	for _, d := range dates {
		s.dates[Day(d)] = struct{}{}
	}
	return s
}

// CheckNights is CheckRange against a set that is already known: nil when
// every night of [checkIn, checkOut) is free.
func (s DateSet) CheckNights(unitID uint64, checkIn, checkOut time.Time) error {
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return err
	}
	for _, n := range nights {
		if s.Contains(n) {
			return &UnavailableRangeError{UnitID: unitID, Night: n}
		}
	}
	return nil
}

// Availability answers which nights are free per unit.  It is built from
// a snapshot of reservations and is not updated afterwards; callers build
// a fresh one per request.
type Availability struct {
	today  time.Time
	byUnit map[uint64][]model.Reservation
}

// NewAvailability indexes reservations by unit.  Cancelled reservations
// are ignored.  today is truncated to a calendar day.
func NewAvailability(reservations []model.Reservation, today time.Time) *Availability {
	a := &Availability{today: Day(today), byUnit: make(map[uint64][]model.Reservation)}
	for _, r := range reservations {
		if !r.Active() {
			continue
		}
		a.byUnit[r.UnitID] = append(a.byUnit[r.UnitID], r)
	}
	return a
}

// BlockedDates returns the union of the occupied nights of every active
// reservation on the unit, plus the implicit past bound.
func (a *Availability) BlockedDates(unitID uint64) DateSet {
	set := DateSet{Before: a.today, dates: make(map[time.Time]struct{})}
	for _, r := range a.byUnit[unitID] {
		nights, err := Nights(r.CheckIn, r.CheckOut)
		if err != nil {
			// malformed rows occupy nothing
			continue
		}
		for _, n := range nights {
			set.dates[n] = struct{}{}
		}
	}
	return set
}

// IsRangeAvailable is true iff no night of [checkIn, checkOut) is blocked.
func (a *Availability) IsRangeAvailable(unitID uint64, checkIn, checkOut time.Time) (bool, error) {
	err := a.CheckRange(unitID, checkIn, checkOut)
	if err == nil {
		return true, nil
	}
	var unavailable *UnavailableRangeError
	if errors.As(err, &unavailable) {
		return false, nil
	}
	return false, err
}

// CheckRange returns nil when the stay can be sold, an
// *UnavailableRangeError naming the first blocked night otherwise, or an
// *InvalidRangeError for a malformed range.
func (a *Availability) CheckRange(unitID uint64, checkIn, checkOut time.Time) error {
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return err
	}
	blocked := a.BlockedDates(unitID)
	for _, n := range nights {
		if blocked.Contains(n) {
			return &UnavailableRangeError{UnitID: unitID, Night: n, ConflictID: a.conflictOn(unitID, n)}
		}
	}
	return nil
}

func (a *Availability) conflictOn(unitID uint64, night time.Time) uint64 {
	for _, r := range a.byUnit[unitID] {
		if Overlaps(r.CheckIn, r.CheckOut, night, night.AddDate(0, 0, 1)) {
			return r.ID
		}
	}
	return 0
}
