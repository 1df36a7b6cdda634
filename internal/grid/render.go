package grid

import (
	"fmt"
	"time"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/model"
)

// Kind tells what a cell shows.
type Kind int

const (
	Empty Kind = iota
	// Head is the first visible cell of a bar; it carries the span.
	Head
	// Body is covered by a bar that started further left.
	Body
)

func (k Kind) String() string {
	switch k {
	case Head:
		return "head"
	case Body:
		return "body"
	default:
		return "empty"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Category is how sure the booking is.  Confirmed stays and tentative ones
// (pending, or imported from an external channel) are drawn differently.
type Category string

const (
	Confirmed Category = "confirmed"
	Tentative Category = "tentative"
)

// CategoryOf maps a reservation to its bar category.
func CategoryOf(r model.Reservation) Category {
	if r.Origin == model.OriginExternal {
		return Tentative
	}
	switch r.Status {
	case model.StatusConfirmed, model.StatusCompleted:
		return Confirmed
	default:
		return Tentative
	}
}

// Cell is one (unit, day) square.
type Cell struct {
	Kind          Kind     `json:"kind"`
	ReservationID uint64   `json:"reservation_id,omitempty"`
	Span          int      `json:"span,omitempty"`
	Continued     bool     `json:"continued,omitempty"`
	OpenStart     bool     `json:"open_start,omitempty"`
	OpenEnd       bool     `json:"open_end,omitempty"`
	Category      Category `json:"category,omitempty"`
	Label         string   `json:"label,omitempty"`
}

// Row is the calendar line of one unit.
type Row struct {
	UnitID   uint64 `json:"unit_id"`
	UnitName string `json:"unit_name"`
	Cells    []Cell `json:"cells"`
}

// Grid is a rendered calendar.
type Grid struct {
	Start time.Time   `json:"start"`
	Days  []time.Time `json:"days"`
	Rows  []Row       `json:"rows"`
}

// Render lays the reservations out over the window.  Cancelled
// reservations and reservations of units not in units are not drawn.  If
// two stays of a unit claim the same day, the one listed first keeps it.
func Render(w Window, units []model.Unit, reservations []model.ReservationDetail) Grid {
	g := Grid{Start: w.Start, Days: w.Dates(), Rows: make([]Row, len(units))}
	rowOf := make(map[uint64]int, len(units))
	for i, u := range units {
		g.Rows[i] = Row{UnitID: u.ID, UnitName: u.Name, Cells: make([]Cell, w.Days)}
		rowOf[u.ID] = i
	}

	for _, r := range reservations {
		if !r.Active() {
			continue
		}
		i, ok := rowOf[r.UnitID]
		if !ok {
			continue
		}
		place(g.Rows[i].Cells, w, r)
	}
	return g
}

func place(cells []Cell, w Window, r model.ReservationDetail) {
	in, out := booking.Day(r.CheckIn), booking.Day(r.CheckOut)
	if !out.After(in) || !in.Before(w.End()) || !out.After(w.Start) {
		return
	}

	first := 0
	continued := in.Before(w.Start)
	if !continued {
		first = w.Index(in)
	}
	last := w.Days - 1
	openEnd := out.After(w.End())
	if !openEnd {
		last = w.Index(out.AddDate(0, 0, -1))
	}
	for c := first; c <= last; c++ {
		if cells[c].Kind != Empty {
			return
		}
	}

	cells[first] = Cell{
		Kind:          Head,
		ReservationID: r.ID,
		Span:          last - first + 1,
		Continued:     continued,
		OpenStart:     continued,
		OpenEnd:       openEnd,
		Category:      CategoryOf(r.Reservation),
		Label:         label(r),
	}
	for c := first + 1; c <= last; c++ {
		cells[c] = Cell{Kind: Body, ReservationID: r.ID}
	}
}

func label(r model.ReservationDetail) string {
	if r.ClientName != "" {
		return r.ClientName
	}
	return fmt.Sprintf("#%d", r.ID)
}

// ReservationAt resolves a click on (row, col).  Empty cells and
// coordinates outside the grid resolve to nothing.
func (g Grid) ReservationAt(row, col int) (uint64, bool) {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row].Cells) {
		return 0, false
	}
	c := g.Rows[row].Cells[col]
	if c.Kind == Empty {
		return 0, false
	}
	return c.ReservationID, true
}

// Bars returns the head cells of a row in column order.
func (r Row) Bars() []Cell {
	var out []Cell
	for _, c := range r.Cells {
		if c.Kind == Head {
			out = append(out, c)
		}
	}
	return out
}
