package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/booking"
	"github.com/iliyamo/cabin-booking/internal/middleware"
	"github.com/iliyamo/cabin-booking/internal/model"
	"github.com/iliyamo/cabin-booking/internal/repository"
	"github.com/iliyamo/cabin-booking/internal/service"
)

// ReservationReader is the read side of repository.ReservationRepo.
type ReservationReader interface {
	GetByID(ctx context.Context, id uint64) (*model.ReservationDetail, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]model.ReservationDetail, error)
}

// AuditLister lists the audit trail of a reservation.
type AuditLister interface {
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.AuditEntry, error)
}

// ReservationHandler serves the staff reservation screens.  Writes go
// through the service so every change is checked and audited; reads go
// straight to the repository.
type ReservationHandler struct {
	Service *service.ReservationService
	Store   ReservationReader
	Audit   AuditLister
}

func NewReservationHandler(svc *service.ReservationService, store ReservationReader, audit AuditLister) *ReservationHandler {
	if svc == nil || store == nil || audit == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Service: svc, Store: store, Audit: audit}
}

const defaultListLimit = 200

func filterFrom(c echo.Context) (repository.ReservationFilter, error) {
	f := repository.ReservationFilter{Status: c.QueryParam("status")}
	switch f.Status {
	case "", model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted:
	default:
		return f, &booking.ValidationError{Field: "status", Reason: "is not a reservation status"}
	}
	for name, dst := range map[string]*uint64{"unit_id": &f.UnitID, "client_id": &f.ClientID} {
		if s := c.QueryParam(name); s != "" {
			n, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				return f, &booking.ValidationError{Field: name, Reason: "must be a positive integer"}
			}
			*dst = n
		}
	}
	var err error
	if f.From, err = queryDate(c, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(c, "limit", defaultListLimit); err != nil {
		return f, err
	}
	return f, nil
}

// List handles GET /v1/admin/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	f, err := filterFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Store.List(ctx, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

type reservationResp struct {
	model.ReservationDetail
	Stage string `json:"stage"`
}

// Get handles GET /v1/admin/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, reservationResp{ReservationDetail: *d, Stage: booking.StageOf(d.Reservation).Name()})
}

type staffReservationReq struct {
	UnitID   uint64 `json:"unit_id" validate:"required"`
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
	Adults   int    `json:"adults" validate:"gte=0"`
	Children int    `json:"children" validate:"gte=0"`
	ClientID uint64 `json:"client_id"`
	Name     string `json:"name" validate:"required_without=ClientID,max=128"`
	Phone    string `json:"phone" validate:"required_without=ClientID,max=32"`
	Email    string `json:"email" validate:"omitempty,email,max=128"`
	Status   string `json:"status" validate:"omitempty,oneof=pending confirmed"`
	Notes    string `json:"notes" validate:"max=2000"`
}

// Create handles POST /v1/admin/reservations.  Staff may book an existing
// client by id or pass contact details inline, and may confirm directly.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req staffReservationReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	stay, err := service.ParseStay(req.UnitID, req.CheckIn, req.CheckOut, req.Adults, req.Children)
	if err != nil {
		return writeError(c, err)
	}
	client := model.Client{Name: req.Name, Phone: req.Phone}
	if req.Email != "" {
		client.Email = &req.Email
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	res, err := h.Service.Book(ctx, service.BookingRequest{
		StayRequest: stay,
		ClientID:    req.ClientID,
		Client:      client,
		Status:      req.Status,
		Origin:      model.OriginDirect,
		Notes:       req.Notes,
		Actor:       middleware.Actor(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

type updateReq struct {
	Status      *string `json:"status" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	DepositPaid *bool   `json:"deposit_paid"`
	FullPaid    *bool   `json:"full_paid"`
	Rating      *int    `json:"rating"`
	Feedback    *string `json:"feedback" validate:"omitempty,max=2000"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
}

// Update handles PUT /v1/admin/reservations/:id.  All fields are optional
// and applied together or not at all.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req updateReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	res, err := h.Service.Update(ctx, id, middleware.Actor(c), service.Patch{
		Status:      req.Status,
		DepositPaid: req.DepositPaid,
		FullPaid:    req.FullPaid,
		Rating:      req.Rating,
		Feedback:    req.Feedback,
		Notes:       req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReservationHandler) transition(c echo.Context, fn service.TransitionFunc) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Service.Transition(ctx, id, middleware.Actor(c), fn)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// CheckIn handles POST /v1/admin/reservations/:id/check-in.
func (h *ReservationHandler) CheckIn(c echo.Context) error { return h.transition(c, booking.CheckIn) }

// CheckOut handles POST /v1/admin/reservations/:id/check-out.
func (h *ReservationHandler) CheckOut(c echo.Context) error { return h.transition(c, booking.CheckOut) }

// Cancel handles DELETE /v1/admin/reservations/:id.  The row is kept with
// status cancelled and its nights become free.
func (h *ReservationHandler) Cancel(c echo.Context) error { return h.transition(c, booking.Cancel) }

// Logs handles GET /v1/admin/reservations/:id/logs.
func (h *ReservationHandler) Logs(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Store.GetByID(ctx, id); err != nil {
		return writeError(c, err)
	}
	logs, err := h.Audit.ListByReservation(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

var exportHeader = []string{"ID", "Client", "Phone", "Unit", "Check-in", "Check-out", "Total", "Status", "Origin"}

// Export handles GET /v1/admin/reservations/export.  It accepts the same
// filters as List without the default limit.
func (h *ReservationHandler) Export(c echo.Context) error {
	f, err := filterFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	if c.QueryParam("limit") == "" {
		f.Limit = 0
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	list, err := h.Store.List(ctx, f)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="reservations.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return WriteCSV(c.Response(), list)
}

// WriteCSV writes reservations in the export layout.
func WriteCSV(w io.Writer, list []model.ReservationDetail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range list {
		if err := cw.Write([]string{
			strconv.FormatUint(r.ID, 10),
			r.ClientName,
			r.ClientPhone,
			r.UnitName,
			r.CheckIn.Format(booking.DateLayout),
			r.CheckOut.Format(booking.DateLayout),
			FormatCents(r.TotalCents),
			r.Status,
			r.Origin,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatCents renders cents as a decimal amount, e.g. 187000 as "1870.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
