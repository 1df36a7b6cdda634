package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/middleware"
	"github.com/iliyamo/cabin-booking/internal/model"
	"github.com/iliyamo/cabin-booking/internal/service"
)

// PublicHandler serves the booking wizard: the cabin list, blocked dates,
// quotes and reservation requests.  None of these routes need a token.
type PublicHandler struct {
	Units        service.UnitStore
	Reservations *service.ReservationService
}

func NewPublicHandler(units service.UnitStore, reservations *service.ReservationService) *PublicHandler {
	if units == nil || reservations == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	return &PublicHandler{Units: units, Reservations: reservations}
}

// publicUnit is a unit without the staff-only fields.
type publicUnit struct {
	ID                 uint64 `json:"id"`
	Name               string `json:"name"`
	Number             int    `json:"number"`
	Description        string `json:"description,omitempty"`
	Capacity           int    `json:"capacity"`
	AllowsChildren     bool   `json:"allows_children"`
	WeekdayRateCents   int64  `json:"weekday_rate_cents"`
	WeekendRateCents   int64  `json:"weekend_rate_cents"`
	IncludedAdults     int    `json:"included_adults,omitempty"`
	ExtraAdultFeeCents int64  `json:"extra_adult_fee_cents,omitempty"`
}

func toPublicUnit(u model.Unit) publicUnit {
	return publicUnit{
		ID: u.ID, Name: u.Name, Number: u.Number, Description: u.Description,
		Capacity: u.Capacity, AllowsChildren: u.AllowsChildren,
		WeekdayRateCents: u.WeekdayRateCents, WeekendRateCents: u.WeekendRateCents,
		IncludedAdults: u.IncludedAdults, ExtraAdultFeeCents: u.ExtraAdultFeeCents,
	}
}

// ListUnits handles GET /v1/units.
func (h *PublicHandler) ListUnits(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	units, err := h.Units.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]publicUnit, 0, len(units))
	for _, u := range units {
		out = append(out, toPublicUnit(u))
	}
	return c.JSON(http.StatusOK, out)
}

type occupancyResp struct {
	UnitID  uint64   `json:"unit_id"`
	Today   string   `json:"today"`
	Blocked []string `json:"blocked"`
}

// Occupancy handles GET /v1/units/:id/occupancy.  Dates before Today are
// implicitly blocked and not listed.
func (h *PublicHandler) Occupancy(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	set, err := h.Reservations.BlockedDates(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	resp := occupancyResp{UnitID: id, Today: set.Before.Format(booking.DateLayout), Blocked: make([]string, 0, set.Len())}
	for _, d := range set.Dates() {
		resp.Blocked = append(resp.Blocked, d.Format(booking.DateLayout))
	}
	return c.JSON(http.StatusOK, resp)
}

// Quote handles GET /v1/quote?unit_id&checkin&checkout&adults&children.
func (h *PublicHandler) Quote(c echo.Context) error {
	unitID, err := strconv.ParseUint(c.QueryParam("unit_id"), 10, 64)
	if err != nil {
		return writeError(c, &booking.ValidationError{Field: "unit_id", Reason: "is required"})
	}
	adults, err := queryInt(c, "adults", 1)
	if err != nil {
		return writeError(c, err)
	}
	children, err := queryInt(c, "children", 0)
	if err != nil {
		return writeError(c, err)
	}
	req, err := service.ParseStay(unitID, c.QueryParam("checkin"), c.QueryParam("checkout"), adults, children)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	q, err := h.Reservations.Quote(ctx, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

type reservationReq struct {
	UnitID   uint64 `json:"unit_id" validate:"required"`
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults   int    `json:"adults" validate:"gte=0"`
	Children int    `json:"children" validate:"gte=0"`
	Name     string `json:"name" validate:"required,max=128"`
	Phone    string `json:"phone" validate:"required,max=32"`
	Email    string `json:"email" validate:"omitempty,email,max=128"`
	Notes    string `json:"notes" validate:"max=2000"`
}

func (r reservationReq) client() model.Client {
	c := model.Client{Name: r.Name, Phone: r.Phone}
	if r.Email != "" {
		email := r.Email
		c.Email = &email
	}
	return c
}

// CreateReservation handles POST /v1/reservations.  Public requests are
// always pending; staff confirm them from the back office.  The price is
// computed here, never taken from the request.
func (h *PublicHandler) CreateReservation(c echo.Context) error {
	var req reservationReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	stay, err := service.ParseStay(req.UnitID, req.CheckIn, req.CheckOut, req.Adults, req.Children)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	res, err := h.Reservations.Book(ctx, service.BookingRequest{
		StayRequest: stay,
		Client:      req.client(),
		Status:      model.StatusPending,
		Origin:      model.OriginDirect,
		Notes:       req.Notes,
		Actor:       middleware.Actor(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}
