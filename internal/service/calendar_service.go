package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/logger"
	"github.com/iliyamo/cabin-booking/internal/model"
	"github.com/iliyamo/cabin-booking/internal/repository"
)

// CalendarStore is what the calendar service reads from the reservation
// repository.
type CalendarStore interface {
	List(ctx context.Context, f repository.ReservationFilter) ([]model.ReservationDetail, error)
	ExistsExternal(ctx context.Context, unitID uint64, checkIn, checkOut time.Time) (bool, error)
}

// Channel imports are attached to this placeholder client.
var channelClient = model.Client{Name: "Channel import", Phone: "0"}

// SyncActor is the audit actor of imported reservations.
const SyncActor = "sync"

// SyncResult summarises one run of Sync.
type SyncResult struct {
	UnitID      uint64    `json:"unit_id"`
	EventsFound int       `json:"events_found"`
	Imported    int       `json:"imported"`
	Duplicates  int       `json:"duplicates"`
	Blocked     int       `json:"blocked"`
	Conflicts   int       `json:"conflicts"`
	Skipped     int       `json:"skipped"`
	SyncedAt    time.Time `json:"synced_at"`
}

// CalendarService publishes each unit's occupancy as an iCalendar feed and
// imports reservations from external channel feeds.
type CalendarService struct {
	units        UnitStore
	reservations CalendarStore
	booker       *ReservationService
	http         *http.Client
	log          logger.Logger
}

func NewCalendarService(units UnitStore, reservations CalendarStore, booker *ReservationService, client *http.Client, log logger.Logger) *CalendarService {
	if units == nil || reservations == nil || booker == nil {
		panic("nil dependency passed to NewCalendarService")
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if log == nil {
		log = logger.Nop
	}
	return &CalendarService{units: units, reservations: reservations, booker: booker, http: client, log: log}
}

// EventUID is the stable iCalendar UID of a reservation.
func EventUID(reservationID uint64) string {
	name := fmt.Sprintf("cabin-booking:reservation:%d", reservationID)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String() + "@cabin-booking"
}

// Export renders every non-cancelled reservation of the unit as an
// all-day event.  Guest details are left out since the feed is public.
func (s *CalendarService) Export(ctx context.Context, unitID uint64) (string, error) {
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return "", err
	}
	rs, err := s.reservations.List(ctx, repository.ReservationFilter{UnitID: unitID, ActiveOnly: true})
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//cabin-booking//occupancy//EN")
	cal.SetXWRCalName(unit.Name)
	for _, r := range rs {
		ev := cal.AddEvent(EventUID(r.ID))
		ev.SetDtStampTime(r.UpdatedAt.UTC())
		ev.SetAllDayStartAt(r.CheckIn)
		ev.SetAllDayEndAt(r.CheckOut)
		ev.SetSummary(fmt.Sprintf("Reserved (%s)", r.Status))
	}
	return cal.Serialize(), nil
}

// Sync downloads the unit's external feed and imports every stay not seen
// before as a confirmed external reservation.  Channel blocks ("Not
// available"), stays already over, duplicates and stays that collide with
// an existing reservation are skipped and counted.
func (s *CalendarService) Sync(ctx context.Context, unitID uint64) (SyncResult, error) {
	res := SyncResult{UnitID: unitID}
	unit, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		return res, err
	}
	if strings.TrimSpace(unit.ICalURL) == "" {
		return res, &booking.ValidationError{Field: "ical_url", Reason: "unit has no external calendar"}
	}

	cal, err := s.fetch(ctx, unit.ICalURL)
	if err != nil {
		return res, err
	}
	today := s.booker.Today()

	for _, ev := range cal.Events() {
		res.EventsFound++
		summary := ""
		if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil {
			summary = p.Value
		}
		if strings.Contains(strings.ToLower(summary), "not available") {
			res.Blocked++
			continue
		}
		in, errIn := ev.GetAllDayStartAt()
		out, errOut := ev.GetAllDayEndAt()
		if errIn != nil || errOut != nil {
			res.Skipped++
			continue
		}
		in, out = booking.Day(in), booking.Day(out)
		if !out.After(in) || !out.After(today) {
			res.Skipped++
			continue
		}

		dup, err := s.reservations.ExistsExternal(ctx, unitID, in, out)
		if err != nil {
			return res, err
		}
		if dup {
			res.Duplicates++
			continue
		}

		notes := "Imported"
		if summary != "" {
			notes += ": " + summary
		}
		_, err = s.booker.Book(ctx, BookingRequest{
			StayRequest: StayRequest{UnitID: unitID, CheckIn: in, CheckOut: out, Adults: 1},
			Client:      channelClient,
			Status:      model.StatusConfirmed,
			Origin:      model.OriginExternal,
			Notes:       notes,
			Actor:       SyncActor,
		})
		var unavailable *booking.UnavailableRangeError
		switch {
		case err == nil:
			res.Imported++
		case errors.As(err, &unavailable):
			res.Conflicts++
			s.log.Info("sync unit %d: %s..%s collides with an existing stay", unitID,
				in.Format(booking.DateLayout), out.Format(booking.DateLayout))
		default:
			return res, err
		}
	}
	res.SyncedAt = s.booker.Clock().UTC()
	s.log.Info("sync unit %d: %d events, %d imported, %d duplicates, %d conflicts",
		unitID, res.EventsFound, res.Imported, res.Duplicates, res.Conflicts)
	return res, nil
}

// SyncAll syncs every unit that has a feed.  A failing unit is logged and
// does not stop the others.
func (s *CalendarService) SyncAll(ctx context.Context) []SyncResult {
	units, err := s.units.List(ctx)
	if err != nil {
		s.log.Error("sync: list units: %v", err)
		return nil
	}
	var out []SyncResult
	for _, u := range units {
		if strings.TrimSpace(u.ICalURL) == "" {
			continue
		}
		r, err := s.Sync(ctx, u.ID)
		if err != nil {
			s.log.Error("sync unit %d: %v", u.ID, err)
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *CalendarService) fetch(ctx context.Context, url string) (*ics.Calendar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch calendar: unexpected status %d", resp.StatusCode)
	}
	cal, err := ics.ParseCalendar(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}
	return cal, nil
}
