package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// UnitAdmin is the part of repository.UnitRepo staff use.
type UnitAdmin interface {
	List(ctx context.Context) ([]model.Unit, error)
	GetByID(ctx context.Context, id uint64) (*model.Unit, error)
	UpdateRates(ctx context.Context, id uint64, weekdayCents, weekendCents int64) error
	UpdateICalURL(ctx context.Context, id uint64, url string) error
}

// UnitHandler lets staff read units and change their rates and channel
// feeds.  OnChange runs after every successful write; the server uses it
// to purge the public unit cache.
type UnitHandler struct {
	Units    UnitAdmin
	OnChange func(ctx context.Context)
}

func NewUnitHandler(units UnitAdmin, onChange func(ctx context.Context)) *UnitHandler {
	if units == nil {
		panic("nil repository passed to NewUnitHandler")
	}
	if onChange == nil {
		onChange = func(context.Context) {}
	}
	return &UnitHandler{Units: units, OnChange: onChange}
}

// List handles GET /v1/admin/units.
func (h *UnitHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	units, err := h.Units.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, units)
}

type ratesReq struct {
	WeekdayRateCents int64 `json:"weekday_rate_cents" validate:"gt=0"`
	WeekendRateCents int64 `json:"weekend_rate_cents" validate:"gt=0"`
}

// UpdateRates handles PUT /v1/admin/units/:id/rates.  Existing
// reservations keep the total they were quoted.
func (h *UnitHandler) UpdateRates(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req ratesReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	return h.write(c, id, func(ctx context.Context) error {
		return h.Units.UpdateRates(ctx, id, req.WeekdayRateCents, req.WeekendRateCents)
	})
}

type icalReq struct {
	URL string `json:"url" validate:"omitempty,http_url,max=512"`
}

// UpdateICal handles PUT /v1/admin/units/:id/ical.  An empty url removes
// the feed.
func (h *UnitHandler) UpdateICal(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req icalReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	return h.write(c, id, func(ctx context.Context) error {
		return h.Units.UpdateICalURL(ctx, id, req.URL)
	})
}

func (h *UnitHandler) write(c echo.Context, id uint64, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		return writeError(c, err)
	}
	h.OnChange(ctx)
	u, err := h.Units.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}
