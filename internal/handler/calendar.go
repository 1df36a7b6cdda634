package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/service"
)

// CalendarHandler exposes the per-unit iCalendar feed that channels
// subscribe to, and the manual trigger of the channel import.
type CalendarHandler struct {
	Calendar *service.CalendarService
}

func NewCalendarHandler(cal *service.CalendarService) *CalendarHandler {
	if cal == nil {
		panic("nil service passed to NewCalendarHandler")
	}
	return &CalendarHandler{Calendar: cal}
}

// Feed handles GET /v1/calendar/:file where file is "<unit id>.ics".
func (h *CalendarHandler) Feed(c echo.Context) error {
	id, err := strconv.ParseUint(strings.TrimSuffix(c.Param("file"), ".ics"), 10, 64)
	if err != nil || id == 0 {
		return writeError(c, &booking.ValidationError{Field: "unit", Reason: "must be <id>.ics"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	body, err := h.Calendar.Export(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// Sync handles POST /v1/admin/units/:id/sync.
func (h *CalendarHandler) Sync(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	res, err := h.Calendar.Sync(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
