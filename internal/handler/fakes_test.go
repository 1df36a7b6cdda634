package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/model"
	"github.com/iliyamo/cabin-booking/internal/repository"
)

type memUnits struct {
	mu    sync.Mutex
	units map[uint64]model.Unit
}

func (m *memUnits) List(context.Context) ([]model.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Unit, 0, len(m.units))
	for _, u := range m.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUnits) GetByID(_ context.Context, id uint64) (*model.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUnits) UpdateRates(_ context.Context, id uint64, weekday, weekend int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.WeekdayRateCents, u.WeekendRateCents = weekday, weekend
	m.units[id] = u
	return nil
}

func (m *memUnits) UpdateICalURL(_ context.Context, id uint64, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ICalURL = url
	m.units[id] = u
	return nil
}

type memClients struct {
	mu      sync.Mutex
	clients []model.Client
}

func (m *memClients) GetByID(_ context.Context, id uint64) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memClients) FindOrCreate(_ context.Context, c *model.Client) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	phone := repository.NormalizePhone(c.Phone)
	for _, existing := range m.clients {
		if existing.Phone == phone {
			return &existing, nil
		}
	}
	stored := *c
	stored.ID = uint64(len(m.clients) + 1)
	stored.Phone = phone
	m.clients = append(m.clients, stored)
	return &stored, nil
}

// memReservations stores reservations and their audit trail, rejecting
// overlaps the way the MySQL store does.
type memReservations struct {
	mu      sync.Mutex
	rows    []*model.Reservation
	audit   []model.AuditEntry
	clients *memClients
	units   *memUnits
}

func (m *memReservations) Create(_ context.Context, r *model.Reservation, entry model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.rows {
		if other.UnitID == r.UnitID && other.Active() && booking.Overlaps(other.CheckIn, other.CheckOut, r.CheckIn, r.CheckOut) {
			return &repository.OverlapError{ConflictID: other.ID}
		}
	}
	r.ID = uint64(len(m.rows) + 1)
	r.CreatedAt, r.UpdatedAt = entry.CreatedAt, entry.CreatedAt
	stored := *r
	m.rows = append(m.rows, &stored)
	entry.ReservationID = r.ID
	m.audit = append(m.audit, entry)
	return nil
}

func (m *memReservations) Mutate(_ context.Context, id uint64, fn func(*model.Reservation) ([]model.AuditEntry, error)) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == 0 || id > uint64(len(m.rows)) {
		return nil, repository.ErrNotFound
	}
	row := m.rows[id-1]
	work := *row
	entries, err := fn(&work)
	if err != nil {
		return nil, err
	}
	*row = work
	for _, e := range entries {
		e.ReservationID = id
		m.audit = append(m.audit, e)
	}
	return &work, nil
}

func (m *memReservations) ListActiveByUnit(_ context.Context, unitID uint64, from time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Reservation
	for _, r := range m.rows {
		if r.UnitID == unitID && r.Active() && r.CheckOut.After(from) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReservations) detail(r model.Reservation) model.ReservationDetail {
	d := model.ReservationDetail{Reservation: r}
	if c, err := m.clients.GetByID(context.Background(), r.ClientID); err == nil {
		d.ClientName, d.ClientPhone = c.Name, c.Phone
	}
	if u, err := m.units.GetByID(context.Background(), r.UnitID); err == nil {
		d.UnitName = u.Name
	}
	return d
}

func (m *memReservations) GetByID(_ context.Context, id uint64) (*model.ReservationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == 0 || id > uint64(len(m.rows)) {
		return nil, repository.ErrNotFound
	}
	d := m.detail(*m.rows[id-1])
	return &d, nil
}

func (m *memReservations) List(_ context.Context, f repository.ReservationFilter) ([]model.ReservationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ReservationDetail{}
	for _, r := range m.rows {
		switch {
		case f.Status != "" && r.Status != f.Status,
			f.UnitID != 0 && r.UnitID != f.UnitID,
			f.ActiveOnly && !r.Active(),
			!f.To.IsZero() && !r.CheckIn.Before(f.To),
			!f.From.IsZero() && !r.CheckOut.After(f.From):
			continue
		}
		out = append(out, m.detail(*r))
	}
	return out, nil
}

func (m *memReservations) ListByReservation(_ context.Context, id uint64) ([]model.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.AuditEntry{}
	for _, e := range m.audit {
		if e.ReservationID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memReservations) ExistsExternal(context.Context, uint64, time.Time, time.Time) (bool, error) {
	return false, nil
}
