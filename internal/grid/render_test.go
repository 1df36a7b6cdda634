package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cabin-booking/internal/model"
)

var start = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func day(i int) time.Time { return start.AddDate(0, 0, i) }

func stay(id uint64, unit uint64, in, out int, status string) model.ReservationDetail {
	return model.ReservationDetail{
		Reservation: model.Reservation{
			ID: id, UnitID: unit, CheckIn: day(in), CheckOut: day(out),
			Status: status, Origin: model.OriginDirect,
		},
		ClientName: "Guest",
	}
}

var units = []model.Unit{{ID: 1, Name: "Cabana 1"}, {ID: 2, Name: "Cabana 2"}}

func TestBarCoversCheckInToNightBeforeCheckOut(t *testing.T) {
	g := Render(NewWindow(start, 21), units, []model.ReservationDetail{
		stay(10, 1, 5, 8, model.StatusConfirmed),
	})

	cells := g.Rows[0].Cells
	require.Len(t, cells, 21)
	assert.Equal(t, Head, cells[5].Kind)
	assert.Equal(t, 3, cells[5].Span)
	assert.False(t, cells[5].Continued)
	assert.Equal(t, Confirmed, cells[5].Category)
	assert.Equal(t, Body, cells[6].Kind)
	assert.Equal(t, Body, cells[7].Kind)
	assert.Equal(t, Empty, cells[8].Kind, "checkout day is free")
	assert.Equal(t, Empty, cells[4].Kind)

	for _, c := range g.Rows[1].Cells {
		assert.Equal(t, Empty, c.Kind)
	}
}

func TestBarStartedBeforeWindowContinuesFromDayZero(t *testing.T) {
	g := Render(NewWindow(day(3), 21), units, []model.ReservationDetail{
		stay(11, 1, 0, 6, model.StatusConfirmed),
	})

	head := g.Rows[0].Cells[0]
	assert.Equal(t, Head, head.Kind)
	assert.True(t, head.Continued)
	assert.True(t, head.OpenStart)
	assert.Equal(t, 3, head.Span)
	assert.Equal(t, uint64(11), head.ReservationID)
	assert.Equal(t, Empty, g.Rows[0].Cells[3].Kind)
}

func TestBarClippedAtWindowEnd(t *testing.T) {
	g := Render(NewWindow(start, 21), units, []model.ReservationDetail{
		stay(12, 2, 18, 30, model.StatusPending),
	})

	head := g.Rows[1].Cells[18]
	assert.Equal(t, 3, head.Span)
	assert.True(t, head.OpenEnd)
	assert.Equal(t, Tentative, head.Category)
	assert.Equal(t, Body, g.Rows[1].Cells[20].Kind)
}

func TestBarEndingOnLastVisibleNightIsClosed(t *testing.T) {
	g := Render(NewWindow(start, 21), units, []model.ReservationDetail{
		stay(13, 1, 19, 21, model.StatusConfirmed),
	})
	head := g.Rows[0].Cells[19]
	assert.Equal(t, 2, head.Span)
	assert.False(t, head.OpenEnd)
}

func TestOutOfWindowAndCancelledAreNotDrawn(t *testing.T) {
	g := Render(NewWindow(start, 21), units, []model.ReservationDetail{
		stay(1, 1, -5, 0, model.StatusConfirmed),
		stay(2, 1, 21, 25, model.StatusConfirmed),
		stay(3, 1, 2, 6, model.StatusCancelled),
		stay(4, 99, 2, 6, model.StatusConfirmed),
	})
	assert.Empty(t, g.Rows[0].Bars())
	assert.Empty(t, g.Rows[1].Bars())
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, Confirmed, CategoryOf(model.Reservation{Status: model.StatusConfirmed}))
	assert.Equal(t, Confirmed, CategoryOf(model.Reservation{Status: model.StatusCompleted}))
	assert.Equal(t, Tentative, CategoryOf(model.Reservation{Status: model.StatusPending}))
	assert.Equal(t, Tentative, CategoryOf(model.Reservation{Status: model.StatusConfirmed, Origin: model.OriginExternal}))
}

func TestReservationAt(t *testing.T) {
	g := Render(NewWindow(start, 21), units, []model.ReservationDetail{
		stay(10, 1, 5, 8, model.StatusConfirmed),
		stay(20, 2, 0, 2, model.StatusPending),
	})

	id, ok := g.ReservationAt(0, 6)
	assert.True(t, ok)
	assert.Equal(t, uint64(10), id)

	id, ok = g.ReservationAt(1, 0)
	assert.True(t, ok)
	assert.Equal(t, uint64(20), id)

	_, ok = g.ReservationAt(0, 8)
	assert.False(t, ok)
	_, ok = g.ReservationAt(5, 0)
	assert.False(t, ok)
	_, ok = g.ReservationAt(0, 21)
	assert.False(t, ok)
}

func TestLabelFallsBackToID(t *testing.T) {
	r := stay(77, 1, 1, 2, model.StatusConfirmed)
	r.ClientName = ""
	g := Render(NewWindow(start, 21), units, []model.ReservationDetail{r})
	assert.Equal(t, "#77", g.Rows[0].Cells[1].Label)
}
