// Package wizard drives the public reservation flow: pick a cabin, pick
// dates, pick guests, leave contact details, submit.  A Session holds one
// visitor's selection and talks to the booking API through Backend.
package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/cabin-booking/internal/apiclient"
	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/model"
)

// Backend is the booking API.  *apiclient.Client implements it.
type Backend interface {
	Units(ctx context.Context) ([]model.Unit, error)
	Occupancy(ctx context.Context, unitID uint64) (apiclient.Occupancy, error)
	Quote(ctx context.Context, p apiclient.QuoteParams) (booking.Quote, error)
	CreateReservation(ctx context.Context, req apiclient.ReservationRequest) (*model.Reservation, error)
}

var (
	// ErrAvailabilityUnknown blocks Submit when the unit's occupancy could
	// not be loaded.  The earlier steps stay usable.
	ErrAvailabilityUnknown = errors.New("availability could not be confirmed")
	// ErrStaleQuote is returned by RecomputeQuote when the selection
	// changed while the quote was in flight.  The result was dropped.
	ErrStaleQuote = errors.New("selection changed while quoting")
	// ErrIncomplete is returned by Submit before every step is filled in.
	ErrIncomplete = errors.New("reservation is incomplete")
	// ErrSubmitted is returned once the session has produced a reservation.
	ErrSubmitted = errors.New("reservation already submitted")
)

// Step is the first step of the flow that still needs input.
type Step int

const (
	StepUnit Step = iota
	StepDates
	StepGuests
	StepContact
	StepReview
	StepDone
)

var stepNames = [...]string{"unit", "dates", "guests", "contact", "review", "done"}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return "unknown"
	}
	return stepNames[s]
}

// Selection is the input a quote depends on.
type Selection struct {
	UnitID   uint64
	CheckIn  time.Time
	CheckOut time.Time
	Adults   int
	Children int
}

// Equal compares calendar dates with time.Equal.
func (s Selection) Equal(o Selection) bool {
	return s.UnitID == o.UnitID && s.CheckIn.Equal(o.CheckIn) && s.CheckOut.Equal(o.CheckOut) &&
		s.Adults == o.Adults && s.Children == o.Children
}

func (s Selection) hasDates() bool { return !s.CheckIn.IsZero() && !s.CheckOut.IsZero() }

// Contact is what the guest tells us about themselves.
type Contact struct {
	Name  string
	Phone string
	Email string
	Notes string
}

// Session is safe for concurrent use: a quote may be in flight while the
// visitor keeps changing the selection.
type Session struct {
	api Backend

	mu          sync.Mutex
	units       map[uint64]model.Unit
	sel         Selection
	contact     Contact
	blocked     *booking.DateSet
	occErr      error
	quote       *booking.Quote
	quoteErr    error
	reservation *model.Reservation
}

func NewSession(api Backend) *Session {
	if api == nil {
		panic("nil backend passed to wizard.NewSession")
	}
	return &Session{api: api, sel: Selection{Adults: 1}}
}

// LoadUnits fetches the cabins on offer.
func (s *Session) LoadUnits(ctx context.Context) ([]model.Unit, error) {
	units, err := s.api.Units(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = make(map[uint64]model.Unit, len(units))
	for _, u := range units {
		s.units[u.ID] = u
	}
	return units, nil
}

// SelectUnit picks a cabin and loads its occupancy.  Dates and the quote
// are cleared; a party that does not fit the new cabin is reset to one
// adult.  When occupancy cannot be loaded the error is returned but
// the unit stays selected; Submit then fails with ErrAvailabilityUnknown.
func (s *Session) SelectUnit(ctx context.Context, unitID uint64) error {
	s.mu.Lock()
	unit, ok := s.units[unitID]
	if !ok {
		s.mu.Unlock()
		return &booking.ValidationError{Field: "unit_id", Reason: "is not on offer"}
	}
	adults, children, err := booking.Guests(unit, s.sel.Adults, s.sel.Children)
	if err != nil {
		adults, children = 1, 0
	}
	s.sel = Selection{UnitID: unitID, Adults: adults, Children: children}
	s.blocked, s.occErr = nil, nil
	s.clearQuote()
	s.mu.Unlock()

	occ, err := s.api.Occupancy(ctx, unitID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel.UnitID != unitID {
		return nil
	}
	if err != nil {
		s.occErr = err
		return err
	}
	set := occ.DateSet()
	s.blocked = &set
	return nil
}

// ReloadOccupancy retries a failed occupancy fetch for the selected unit.
func (s *Session) ReloadOccupancy(ctx context.Context) error {
	s.mu.Lock()
	unitID := s.sel.UnitID
	s.mu.Unlock()
	if unitID == 0 {
		return ErrIncomplete
	}
	occ, err := s.api.Occupancy(ctx, unitID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel.UnitID != unitID {
		return nil
	}
	if err != nil {
		s.occErr = err
		return err
	}
	set := occ.DateSet()
	s.blocked, s.occErr = &set, nil
	return nil
}

// Blocked returns the unit's blocked nights, or ErrAvailabilityUnknown.
func (s *Session) Blocked() (booking.DateSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blocked == nil {
		return booking.DateSet{}, ErrAvailabilityUnknown
	}
	return *s.blocked, nil
}

// SetDates records the stay.  The range must be well formed; when
// occupancy is known it must also be free.  With unknown occupancy the
// dates are accepted and checked by the server on submit.
func (s *Session) SetDates(checkIn, checkOut time.Time) error {
	in, out := booking.Day(checkIn), booking.Day(checkOut)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel.UnitID == 0 {
		return ErrIncomplete
	}
	if _, err := booking.NightCount(in, out); err != nil {
		return err
	}
	if s.blocked != nil {
		if err := s.blocked.CheckNights(s.sel.UnitID, in, out); err != nil {
			return err
		}
	}
	if !s.sel.CheckIn.Equal(in) || !s.sel.CheckOut.Equal(out) {
		s.sel.CheckIn, s.sel.CheckOut = in, out
		s.clearQuote()
	}
	return nil
}

// SetGuests records the party.  Units that do not take children get
// children = 0.
func (s *Session) SetGuests(adults, children int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit, ok := s.units[s.sel.UnitID]
	if !ok {
		return ErrIncomplete
	}
	a, c, err := booking.Guests(unit, adults, children)
	if err != nil {
		return err
	}
	if s.sel.Adults != a || s.sel.Children != c {
		s.sel.Adults, s.sel.Children = a, c
		s.clearQuote()
	}
	return nil
}

// SetContact records the guest's details.  Name and phone are required.
func (s *Session) SetContact(c Contact) error {
	c.Name, c.Phone = strings.TrimSpace(c.Name), strings.TrimSpace(c.Phone)
	c.Email, c.Notes = strings.TrimSpace(c.Email), strings.TrimSpace(c.Notes)
	if c.Name == "" {
		return &booking.ValidationError{Field: "name", Reason: "is required"}
	}
	if c.Phone == "" {
		return &booking.ValidationError{Field: "phone", Reason: "is required"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contact = c
	return nil
}

// Selection returns the current selection.
func (s *Session) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// RecomputeQuote prices the current selection.  Callers invoke it after
// each input change.  The response is applied only if the selection it
// was computed for is still the current one; otherwise it is discarded
// and ErrStaleQuote is returned.  A failed quote leaves the price empty.
func (s *Session) RecomputeQuote(ctx context.Context) (booking.Quote, error) {
	s.mu.Lock()
	snap := s.sel
	s.mu.Unlock()
	if snap.UnitID == 0 || !snap.hasDates() {
		return booking.Quote{}, ErrIncomplete
	}

	q, err := s.api.Quote(ctx, apiclient.QuoteParams{
		UnitID: snap.UnitID, CheckIn: snap.CheckIn, CheckOut: snap.CheckOut,
		Adults: snap.Adults, Children: snap.Children,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sel.Equal(snap) {
		return booking.Quote{}, ErrStaleQuote
	}
	if err != nil {
		s.quote, s.quoteErr = nil, err
		return booking.Quote{}, err
	}
	s.quote, s.quoteErr = &q, nil
	return q, nil
}

// Quote returns the price of the current selection, if known.
func (s *Session) Quote() (*booking.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quote == nil {
		return nil, s.quoteErr
	}
	q := *s.quote
	return &q, nil
}

func (s *Session) clearQuote() { s.quote, s.quoteErr = nil, nil }

// Step reports the first step still missing input.  A missing price does
// not hold the visitor back.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.reservation != nil:
		return StepDone
	case s.sel.UnitID == 0:
		return StepUnit
	case !s.sel.hasDates():
		return StepDates
	case s.sel.Adults < 1:
		return StepGuests
	case s.contact.Name == "" || s.contact.Phone == "":
		return StepContact
	default:
		return StepReview
	}
}

// CanSubmit reports why Submit would be refused, or nil.
func (s *Session) CanSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmit()
}

func (s *Session) canSubmit() error {
	switch {
	case s.reservation != nil:
		return ErrSubmitted
	case s.sel.UnitID == 0, !s.sel.hasDates(), s.contact.Name == "", s.contact.Phone == "":
		return ErrIncomplete
	case s.blocked == nil:
		return ErrAvailabilityUnknown
	}
	return nil
}

// Submit sends the reservation request once.  A conflict reported by the
// server comes back as *booking.UnavailableRangeError, the same as a
// conflict found locally; the blocked dates are then reloaded so the
// visitor can pick again.  Nothing is retried.
func (s *Session) Submit(ctx context.Context) (*model.Reservation, error) {
	s.mu.Lock()
	if err := s.canSubmit(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := s.blocked.CheckNights(s.sel.UnitID, s.sel.CheckIn, s.sel.CheckOut); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	sel, contact := s.sel, s.contact
	s.mu.Unlock()

	res, err := s.api.CreateReservation(ctx, apiclient.ReservationRequest{
		UnitID:   sel.UnitID,
		CheckIn:  sel.CheckIn.Format(booking.DateLayout),
		CheckOut: sel.CheckOut.Format(booking.DateLayout),
		Adults:   sel.Adults,
		Children: sel.Children,
		Name:     contact.Name,
		Phone:    contact.Phone,
		Email:    contact.Email,
		Notes:    contact.Notes,
	})
	if err != nil {
		var unavailable *booking.UnavailableRangeError
		if errors.As(err, &unavailable) {
			unavailable.UnitID = sel.UnitID
			_ = s.ReloadOccupancy(ctx)
		}
		return nil, err
	}

	s.mu.Lock()
	s.reservation = res
	s.mu.Unlock()
	return res, nil
}

// Reset forgets everything but the unit list.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel = Selection{Adults: 1}
	s.contact = Contact{}
	s.blocked, s.occErr = nil, nil
	s.reservation = nil
	s.clearQuote()
}
