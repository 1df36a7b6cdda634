package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// MessageStore is the part of repository.MessageRepo the handlers use.
type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.Message, error)
	MarkRead(ctx context.Context, id uint64) error
}

type MessageHandler struct {
	Messages MessageStore
}

func NewMessageHandler(messages MessageStore) *MessageHandler {
	if messages == nil {
		panic("nil repository passed to NewMessageHandler")
	}
	return &MessageHandler{Messages: messages}
}

type messageReq struct {
	ReservationID uint64 `json:"reservation_id" validate:"required"`
	Sender        string `json:"sender" validate:"omitempty,oneof=client system"`
	Body          string `json:"body" validate:"required,max=4000"`
}

// Create handles POST /v1/admin/messages.  Staff log what the guest wrote
// (sender client) or what was sent to them (sender system, the default).
func (h *MessageHandler) Create(c echo.Context) error {
	var req messageReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	m := model.Message{ReservationID: req.ReservationID, Sender: req.Sender, Body: strings.TrimSpace(req.Body)}
	if m.Sender == "" {
		m.Sender = model.SenderSystem
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Messages.Create(ctx, &m); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// List handles GET /v1/admin/reservations/:id/messages, oldest first.
func (h *MessageHandler) List(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	list, err := h.Messages.ListByReservation(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// MarkRead handles PUT /v1/admin/messages/:id/read.
func (h *MessageHandler) MarkRead(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Messages.MarkRead(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
