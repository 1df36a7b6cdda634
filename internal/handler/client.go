package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/model"
)

// ClientAdmin is the part of repository.ClientRepo the back office uses.
type ClientAdmin interface {
	Create(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id uint64) (*model.Client, error)
	Search(ctx context.Context, q string, limit int) ([]model.Client, error)
	Update(ctx context.Context, c *model.Client) error
	Delete(ctx context.Context, id uint64) error
}

type ClientHandler struct {
	Clients ClientAdmin
}

func NewClientHandler(clients ClientAdmin) *ClientHandler {
	if clients == nil {
		panic("nil repository passed to NewClientHandler")
	}
	return &ClientHandler{Clients: clients}
}

type clientReq struct {
	Name  string `json:"name" validate:"required,max=128"`
	Phone string `json:"phone" validate:"required,max=32"`
	Email string `json:"email" validate:"omitempty,email,max=128"`
}

func (r clientReq) model() model.Client {
	c := model.Client{Name: strings.TrimSpace(r.Name), Phone: strings.TrimSpace(r.Phone)}
	if e := strings.TrimSpace(r.Email); e != "" {
		c.Email = &e
	}
	return c
}

// List handles GET /v1/admin/clients?q&limit.  q matches names ignoring
// accents and case, and phone numbers by digits.
func (h *ClientHandler) List(c echo.Context) error {
	limit, err := queryInt(c, "limit", 100)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	list, err := h.Clients.Search(ctx, c.QueryParam("q"), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Get handles GET /v1/admin/clients/:id.
func (h *ClientHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	cl, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, cl)
}

// Create handles POST /v1/admin/clients.  A phone already on file is a
// conflict.
func (h *ClientHandler) Create(c echo.Context) error {
	var req clientReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	cl := req.model()
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Clients.Create(ctx, &cl); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, cl)
}

// Update handles PUT /v1/admin/clients/:id.
func (h *ClientHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var req clientReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	cl := req.model()
	cl.ID = id
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Clients.Update(ctx, &cl); err != nil {
		return writeError(c, err)
	}
	updated, err := h.Clients.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/admin/clients/:id.  Clients with reservations
// cannot be deleted.
func (h *ClientHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Clients.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
