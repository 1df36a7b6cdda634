package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/handler"
)

// RegisterPublic registers the booking wizard endpoints under /v1.  limit
// is applied to every route; cache only to the unit listing, whose
// content changes when staff edit rates.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, limit, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", limit)
	g.GET("/units", p.ListUnits, cache)
	g.GET("/units/:id/occupancy", p.Occupancy)
	g.GET("/quote", p.Quote)
	g.POST("/reservations", p.CreateReservation)
}
