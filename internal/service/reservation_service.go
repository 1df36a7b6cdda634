// Package service holds the operations that combine the booking rules
// with storage: quoting against live availability, atomic booking, the
// reservation lifecycle and calendar sync.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/logger"
	"github.com/iliyamo/cabin-booking/internal/model"
	"github.com/iliyamo/cabin-booking/internal/queue"
	"github.com/iliyamo/cabin-booking/internal/repository"
)

// UnitStore is the part of repository.UnitRepo the services use.
type UnitStore interface {
	List(ctx context.Context) ([]model.Unit, error)
	GetByID(ctx context.Context, id uint64) (*model.Unit, error)
}

// ClientStore is the part of repository.ClientRepo the services use.
type ClientStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Client, error)
	FindOrCreate(ctx context.Context, c *model.Client) (*model.Client, error)
}

// ReservationStore is the part of repository.ReservationRepo the
// services use.  Create must be atomic with respect to overlapping
// bookings of the same unit.
type ReservationStore interface {
	Create(ctx context.Context, r *model.Reservation, entry model.AuditEntry) error
	Mutate(ctx context.Context, id uint64, fn func(*model.Reservation) ([]model.AuditEntry, error)) (*model.Reservation, error)
	ListActiveByUnit(ctx context.Context, unitID uint64, from time.Time) ([]model.Reservation, error)
}

// StayRequest is a candidate stay.
type StayRequest struct {
	UnitID   uint64
	CheckIn  time.Time
	CheckOut time.Time
	Adults   int
	Children int
}

// BookingRequest creates a reservation.  When ClientID is zero the client
// is looked up by Client.Phone and created if new.
type BookingRequest struct {
	StayRequest
	ClientID uint64
	Client   model.Client
	Status   string
	Origin   string
	Notes    string
	Actor    string
}

// Patch is a partial staff update.  Nil fields are left alone.
type Patch struct {
	Status      *string
	DepositPaid *bool
	FullPaid    *bool
	Rating      *int
	Feedback    *string
	Notes       *string
}

// ReservationService applies the booking rules on top of the stores.
type ReservationService struct {
	units        UnitStore
	clients      ClientStore
	reservations ReservationStore
	events       Publisher
	log          logger.Logger
	loc          *time.Location

	// Clock returns the current instant.  Defaults to time.Now.
	Clock func() time.Time
}

// NewReservationService wires the service.  loc is the business time
// zone used to decide what "today" is; nil means UTC.
func NewReservationService(units UnitStore, clients ClientStore, reservations ReservationStore, events Publisher, log logger.Logger, loc *time.Location) *ReservationService {
	if units == nil || clients == nil || reservations == nil {
		panic("nil store passed to NewReservationService")
	}
	if events == nil {
		events = NopPublisher{}
	}
	if log == nil {
		log = logger.Nop
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ReservationService{
		units: units, clients: clients, reservations: reservations,
		events: events, log: log, loc: loc, Clock: time.Now,
	}
}

// Today is the current calendar date in the business time zone.
func (s *ReservationService) Today() time.Time {
	return booking.Day(s.Clock().In(s.loc))
}

func (s *ReservationService) availability(ctx context.Context, unitID uint64, today time.Time) (*booking.Availability, error) {
	rs, err := s.reservations.ListActiveByUnit(ctx, unitID, today)
	if err != nil {
		return nil, err
	}
	return booking.NewAvailability(rs, today), nil
}

// BlockedDates returns the nights of the unit that cannot be sold.
func (s *ReservationService) BlockedDates(ctx context.Context, unitID uint64) (booking.DateSet, error) {
	if _, err := s.units.GetByID(ctx, unitID); err != nil {
		return booking.DateSet{}, err
	}
	today := s.Today()
	av, err := s.availability(ctx, unitID, today)
	if err != nil {
		return booking.DateSet{}, err
	}
	return av.BlockedDates(unitID), nil
}

// Quote prices a stay after checking that every night is free.
func (s *ReservationService) Quote(ctx context.Context, req StayRequest) (booking.Quote, error) {
	unit, err := s.units.GetByID(ctx, req.UnitID)
	if err != nil {
		return booking.Quote{}, err
	}
	if _, err := booking.NightCount(req.CheckIn, req.CheckOut); err != nil {
		return booking.Quote{}, err
	}
	av, err := s.availability(ctx, unit.ID, s.Today())
	if err != nil {
		return booking.Quote{}, err
	}
	if err := av.CheckRange(unit.ID, req.CheckIn, req.CheckOut); err != nil {
		return booking.Quote{}, err
	}
	return booking.QuoteStay(*unit, req.CheckIn, req.CheckOut, req.Adults, req.Children)
}

// Book creates a reservation priced by the server.  The pre-flight
// availability check gives a precise error early; the store repeats the
// overlap check under lock, and a conflict found there is reported the
// same way.
func (s *ReservationService) Book(ctx context.Context, req BookingRequest) (*model.Reservation, error) {
	status := req.Status
	if status == "" {
		status = model.StatusPending
	}
	if status != model.StatusPending && status != model.StatusConfirmed {
		return nil, &booking.ValidationError{Field: "status", Reason: "must be pending or confirmed"}
	}
	origin := req.Origin
	if origin == "" {
		origin = model.OriginDirect
	}
	if origin != model.OriginDirect && origin != model.OriginExternal {
		return nil, &booking.ValidationError{Field: "origin", Reason: "must be direct or external"}
	}

	unit, err := s.units.GetByID(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}
	quote, err := booking.QuoteStay(*unit, req.CheckIn, req.CheckOut, req.Adults, req.Children)
	if err != nil {
		return nil, err
	}

	// channel imports may describe stays that already started
	today := s.Today()
	if origin == model.OriginExternal {
		today = time.Time{}
	}
	av, err := s.availability(ctx, unit.ID, today)
	if err != nil {
		return nil, err
	}
	if err := av.CheckRange(unit.ID, quote.CheckIn, quote.CheckOut); err != nil {
		return nil, err
	}

	client, err := s.resolveClient(ctx, req)
	if err != nil {
		return nil, err
	}

	if origin == model.OriginExternal {
		// the channel collects the payment
		quote.TotalCents, quote.DepositCents = 0, 0
	}
	res := &model.Reservation{
		UnitID:       unit.ID,
		ClientID:     client.ID,
		CheckIn:      quote.CheckIn,
		CheckOut:     quote.CheckOut,
		Status:       status,
		Adults:       quote.Adults,
		Children:     quote.Children,
		TotalCents:   quote.TotalCents,
		DepositCents: quote.DepositCents,
		Origin:       origin,
		Notes:        strings.TrimSpace(req.Notes),
	}
	action := booking.ActionCreated
	if origin == model.OriginExternal {
		action = booking.ActionImported
	}
	entry := model.AuditEntry{
		Actor:     req.Actor,
		Action:    action,
		Details:   "status=" + status,
		CreatedAt: s.Clock().UTC(),
	}
	if err := s.reservations.Create(ctx, res, entry); err != nil {
		var overlap *repository.OverlapError
		if errors.As(err, &overlap) {
			return nil, &booking.UnavailableRangeError{UnitID: unit.ID, ConflictID: overlap.ConflictID}
		}
		if errors.Is(err, repository.ErrOverlap) {
			return nil, &booking.UnavailableRangeError{UnitID: unit.ID}
		}
		return nil, err
	}
	entry.ReservationID = res.ID
	s.log.Info("reservation %d created for unit %d (%s..%s, %s) by %s", res.ID, res.UnitID,
		res.CheckIn.Format(booking.DateLayout), res.CheckOut.Format(booking.DateLayout), res.Status, req.Actor)
	s.publish(ctx, *res, entry)
	return res, nil
}

func (s *ReservationService) resolveClient(ctx context.Context, req BookingRequest) (*model.Client, error) {
	if req.ClientID != 0 {
		return s.clients.GetByID(ctx, req.ClientID)
	}
	c := req.Client
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, &booking.ValidationError{Field: "name", Reason: "is required"}
	}
	if repository.NormalizePhone(c.Phone) == "" {
		return nil, &booking.ValidationError{Field: "phone", Reason: "is required"}
	}
	return s.clients.FindOrCreate(ctx, &c)
}

// TransitionFunc is one of the booking lifecycle moves.
type TransitionFunc func(r *model.Reservation, actor string, now time.Time) (booking.Transition, error)

// Transition runs fn on the stored reservation and persists the result
// with its audit entry.
func (s *ReservationService) Transition(ctx context.Context, id uint64, actor string, fn TransitionFunc) (*model.Reservation, error) {
	return s.mutate(ctx, id, func(r *model.Reservation, now time.Time) ([]model.AuditEntry, error) {
		tr, err := fn(r, actor, now)
		if err != nil {
			return nil, err
		}
		return []model.AuditEntry{tr.Entry}, nil
	})
}

func (s *ReservationService) Confirm(ctx context.Context, id uint64, actor string) (*model.Reservation, error) {
	return s.Transition(ctx, id, actor, booking.Confirm)
}

func (s *ReservationService) CheckIn(ctx context.Context, id uint64, actor string) (*model.Reservation, error) {
	return s.Transition(ctx, id, actor, booking.CheckIn)
}

func (s *ReservationService) CheckOut(ctx context.Context, id uint64, actor string) (*model.Reservation, error) {
	return s.Transition(ctx, id, actor, booking.CheckOut)
}

func (s *ReservationService) Cancel(ctx context.Context, id uint64, actor string) (*model.Reservation, error) {
	return s.Transition(ctx, id, actor, booking.Cancel)
}

// Update applies a partial update.  Every field that changes yields its
// own audit entry; all of them are stored atomically.  A patch that
// changes nothing writes nothing.
func (s *ReservationService) Update(ctx context.Context, id uint64, actor string, p Patch) (*model.Reservation, error) {
	return s.mutate(ctx, id, func(r *model.Reservation, now time.Time) ([]model.AuditEntry, error) {
		var entries []model.AuditEntry
		if p.Status != nil && *p.Status != r.Status {
			tr, err := booking.ApplyStatus(r, *p.Status, actor, now)
			if err != nil {
				return nil, err
			}
			entries = append(entries, tr.Entry)
		}
		if tr, ok := booking.SetPayment(r, p.DepositPaid, p.FullPaid, actor, now); ok {
			entries = append(entries, tr.Entry)
		}
		if p.Rating != nil || p.Feedback != nil {
			rating := r.Rating
			if p.Rating != nil {
				rating = p.Rating
			}
			if rating == nil {
				return nil, &booking.ValidationError{Field: "rating", Reason: "is required with feedback"}
			}
			feedback := r.Feedback
			if p.Feedback != nil {
				feedback = strings.TrimSpace(*p.Feedback)
			}
			tr, err := booking.RecordFeedback(r, *rating, feedback, actor, now)
			if err != nil {
				return nil, err
			}
			entries = append(entries, tr.Entry)
		}
		if p.Notes != nil {
			if tr, ok := booking.SetNotes(r, strings.TrimSpace(*p.Notes), actor, now); ok {
				entries = append(entries, tr.Entry)
			}
		}
		return entries, nil
	})
}

func (s *ReservationService) mutate(ctx context.Context, id uint64, fn func(*model.Reservation, time.Time) ([]model.AuditEntry, error)) (*model.Reservation, error) {
	var entries []model.AuditEntry
	res, err := s.reservations.Mutate(ctx, id, func(r *model.Reservation) ([]model.AuditEntry, error) {
		var err error
		entries, err = fn(r, s.Clock().UTC())
		return entries, err
	})
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		e.ReservationID = res.ID
		s.log.Info("reservation %d: %s by %s", res.ID, e.Action, e.Actor)
		s.publish(ctx, *res, e)
	}
	return res, nil
}

func (s *ReservationService) publish(ctx context.Context, r model.Reservation, entry model.AuditEntry) {
	if err := s.events.Publish(ctx, queue.NewReservationEvent(r, entry)); err != nil {
		s.log.Error("publish %s for reservation %d: %v", entry.Action, r.ID, err)
	}
}

// MaxStayNights is the longest stay a request may ask for.
const MaxStayNights = 365

// ParseStay reads the wire form of a stay request.
func ParseStay(unitID uint64, checkIn, checkOut string, adults, children int) (StayRequest, error) {
	in, err := booking.ParseDate(checkIn)
	if err != nil {
		return StayRequest{}, err
	}
	out, err := booking.ParseDate(checkOut)
	if err != nil {
		return StayRequest{}, err
	}
	if unitID == 0 {
		return StayRequest{}, &booking.ValidationError{Field: "unit_id", Reason: "is required"}
	}
	if n, err := booking.NightCount(in, out); err == nil && n > MaxStayNights {
		return StayRequest{}, &booking.ValidationError{Field: "check_out", Reason: fmt.Sprintf("stay is longer than %d nights", MaxStayNights)}
	}
	return StayRequest{UnitID: unitID, CheckIn: in, CheckOut: out, Adults: adults, Children: children}, nil
}
