package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/handler"
	"github.com/iliyamo/cabin-booking/internal/middleware"
	"github.com/iliyamo/cabin-booking/internal/model"
)

var staffRoles = []string{model.RoleAdmin, model.RoleStaff}

// Admin bundles the back-office handlers.
type Admin struct {
	Reservations *handler.ReservationHandler
	Grid         *handler.GridHandler
	Units        *handler.UnitHandler
	Clients      *handler.ClientHandler
	Messages     *handler.MessageHandler
	Reports      *handler.ReportHandler
	Calendar     *handler.CalendarHandler
}

// RegisterAdmin registers the staff endpoints under /v1/admin.  All routes
// require a valid JWT; rates, channel feeds and reports are admin only.
func RegisterAdmin(e *echo.Echo, h Admin, jwtSecret string) {
	g := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret), middleware.RequireRole(staffRoles...))
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	// ---- Reservations ----
	g.GET("/reservations", h.Reservations.List)
	g.GET("/reservations/export", h.Reservations.Export)
	g.POST("/reservations", h.Reservations.Create)
	g.GET("/reservations/:id", h.Reservations.Get)
	g.PUT("/reservations/:id", h.Reservations.Update)
	g.DELETE("/reservations/:id", h.Reservations.Cancel)
	g.POST("/reservations/:id/check-in", h.Reservations.CheckIn)
	g.POST("/reservations/:id/check-out", h.Reservations.CheckOut)
	g.GET("/reservations/:id/logs", h.Reservations.Logs)
	g.GET("/reservations/:id/messages", h.Messages.List)

	g.GET("/grid", h.Grid.Show)

	// ---- Units ----
	g.GET("/units", h.Units.List)
	g.PUT("/units/:id/rates", h.Units.UpdateRates, adminOnly)
	g.PUT("/units/:id/ical", h.Units.UpdateICal, adminOnly)
	g.POST("/units/:id/sync", h.Calendar.Sync)

	// ---- Clients ----
	g.GET("/clients", h.Clients.List)
	g.POST("/clients", h.Clients.Create)
	g.GET("/clients/:id", h.Clients.Get)
	g.PUT("/clients/:id", h.Clients.Update)
	g.DELETE("/clients/:id", h.Clients.Delete)

	// ---- Messages ----
	g.POST("/messages", h.Messages.Create)
	g.PUT("/messages/:id/read", h.Messages.MarkRead)

	// ---- Reports ----
	g.GET("/stats", h.Reports.Stats)
	g.GET("/reports/revenue", h.Reports.Revenue, adminOnly)
}
