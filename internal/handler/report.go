package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/repository"
)

// ReportReader produces the revenue report and the dashboard summary.
type ReportReader interface {
	Revenue(ctx context.Context, from, to time.Time) (*repository.RevenueReport, error)
	Stats(ctx context.Context, day time.Time) (*repository.Stats, error)
}

type ReportHandler struct {
	Reports ReportReader
	Today   func() time.Time
}

func NewReportHandler(reports ReportReader, today func() time.Time) *ReportHandler {
	if reports == nil || today == nil {
		panic("nil dependency passed to NewReportHandler")
	}
	return &ReportHandler{Reports: reports, Today: today}
}

// Revenue handles GET /v1/admin/reports/revenue?from&to.  The default
// range is the current calendar year; to is exclusive.
func (h *ReportHandler) Revenue(c echo.Context) error {
	from, err := queryDate(c, "from")
	if err != nil {
		return writeError(c, err)
	}
	to, err := queryDate(c, "to")
	if err != nil {
		return writeError(c, err)
	}
	year := booking.Day(h.Today()).Year()
	if from.IsZero() {
		from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if to.IsZero() {
		to = from.AddDate(1, 0, 0)
	}
	if !to.After(from) {
		return writeError(c, &booking.ValidationError{Field: "to", Reason: "must be after from"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	rep, err := h.Reports.Revenue(ctx, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

// Stats handles GET /v1/admin/stats: reservation counts by status, the
// client count and where each unit stands today.
func (h *ReportHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	st, err := h.Reports.Stats(ctx, booking.Day(h.Today()))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
