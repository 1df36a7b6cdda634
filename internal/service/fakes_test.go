package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/model"
	"github.com/iliyamo/cabin-booking/internal/queue"
	"github.com/iliyamo/cabin-booking/internal/repository"
)

type memUnits map[uint64]model.Unit

func (m memUnits) List(context.Context) ([]model.Unit, error) {
	out := make([]model.Unit, 0, len(m))
	for _, u := range m {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memUnits) GetByID(_ context.Context, id uint64) (*model.Unit, error) {
	u, ok := m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type memClients struct {
	mu      sync.Mutex
	byPhone map[string]*model.Client
	nextID  uint64
}

func newMemClients() *memClients { return &memClients{byPhone: map[string]*model.Client{}} }

func (m *memClients) GetByID(_ context.Context, id uint64) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.byPhone {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memClients) FindOrCreate(_ context.Context, c *model.Client) (*model.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	phone := repository.NormalizePhone(c.Phone)
	if existing, ok := m.byPhone[phone]; ok {
		cp := *existing
		return &cp, nil
	}
	m.nextID++
	stored := *c
	stored.ID = m.nextID
	stored.Phone = phone
	m.byPhone[phone] = &stored
	cp := stored
	return &cp, nil
}

// memReservations enforces the no-overlap rule under its mutex, the way
// the MySQL store does under the unit row lock.
type memReservations struct {
	mu     sync.Mutex
	rows   map[uint64]*model.Reservation
	audit  []model.AuditEntry
	nextID uint64
}

func newMemReservations() *memReservations {
	return &memReservations{rows: map[uint64]*model.Reservation{}}
}

func (m *memReservations) Create(_ context.Context, r *model.Reservation, entry model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.rows {
		if other.UnitID == r.UnitID && other.Active() && booking.Overlaps(other.CheckIn, other.CheckOut, r.CheckIn, r.CheckOut) {
			return &repository.OverlapError{ConflictID: other.ID}
		}
	}
	m.nextID++
	r.ID = m.nextID
	r.CreatedAt, r.UpdatedAt = entry.CreatedAt, entry.CreatedAt
	stored := *r
	m.rows[r.ID] = &stored
	entry.ReservationID = r.ID
	m.audit = append(m.audit, entry)
	return nil
}

func (m *memReservations) Mutate(_ context.Context, id uint64, fn func(*model.Reservation) ([]model.AuditEntry, error)) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	work := *row
	entries, err := fn(&work)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		*row = work
		for _, e := range entries {
			e.ReservationID = id
			m.audit = append(m.audit, e)
		}
	}
	out := work
	return &out, nil
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

func (m *memReservations) List(_ context.Context, f repository.ReservationFilter) ([]model.ReservationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ReservationDetail
	for _, r := range m.rows {
		if f.UnitID != 0 && r.UnitID != f.UnitID {
			continue
		}
		if f.ActiveOnly && !r.Active() {
			continue
		}
		out = append(out, model.ReservationDetail{Reservation: *r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memReservations) ExistsExternal(_ context.Context, unitID uint64, in, out time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UnitID == unitID && r.Origin == model.OriginExternal && r.CheckIn.Equal(in) && r.CheckOut.Equal(out) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReservations) auditFor(id uint64) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.audit {
		if e.ReservationID == id {
			out = append(out, e.Action)
		}
	}
	return out
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}
