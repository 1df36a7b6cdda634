package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/grid"
	"github.com/iliyamo/cabin-booking/internal/repository"
	"github.com/iliyamo/cabin-booking/internal/service"
)

// maxGridDays bounds the ?days parameter.
const maxGridDays = 92

// GridHandler renders the staff occupancy calendar.
type GridHandler struct {
	Units        service.UnitStore
	Reservations ReservationReader
	Today        func() time.Time
	Days         int
}

func NewGridHandler(units service.UnitStore, reservations ReservationReader, today func() time.Time, days int) *GridHandler {
	if units == nil || reservations == nil || today == nil {
		panic("nil dependency passed to NewGridHandler")
	}
	return &GridHandler{Units: units, Reservations: reservations, Today: today, Days: days}
}

type gridResp struct {
	grid.Grid
	Prev  string `json:"prev"`
	Next  string `json:"next"`
	Today string `json:"today"`
}

// Show handles GET /v1/admin/grid?start&days.  Without start the window
// opens on today.  prev and next are the start dates one step away.
func (h *GridHandler) Show(c echo.Context) error {
	start, err := queryDate(c, "start")
	if err != nil {
		return writeError(c, err)
	}
	today := booking.Day(h.Today())
	if start.IsZero() {
		start = today
	}
	days, err := queryInt(c, "days", h.Days)
	if err != nil {
		return writeError(c, err)
	}
	if days > maxGridDays {
		return writeError(c, &booking.ValidationError{Field: "days", Reason: "must be at most 92"})
	}
	w := grid.NewWindow(start, days)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	units, err := h.Units.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.Reservations.List(ctx, repository.ReservationFilter{From: w.Start, To: w.End(), ActiveOnly: true})
	if err != nil {
		return writeError(c, err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CheckIn.Before(list[j].CheckIn) })

	return c.JSON(http.StatusOK, gridResp{
		Grid:  grid.Render(w, units, list),
		Prev:  w.Start.AddDate(0, 0, -grid.Step).Format(booking.DateLayout),
		Next:  w.Start.AddDate(0, 0, grid.Step).Format(booking.DateLayout),
		Today: today.Format(booking.DateLayout),
	})
}
