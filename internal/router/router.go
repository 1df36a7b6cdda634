package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cabin-booking/internal/handler"
	"github.com/iliyamo/cabin-booking/internal/middleware"
)

// RegisterRoutes registers routes that need neither a token nor rate
// limiting: the health check and the public calendar feeds channels poll.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, cal *handler.CalendarHandler) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/v1/calendar/:file", cal.Feed)
}

// RegisterAuth registers staff login under /v1/auth and the session
// lookup under the protected /v1/admin prefix.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	e.POST("/v1/auth/login", a.Login)

	g := e.Group("/v1/admin", middleware.JWTAuth(jwtSecret), middleware.RequireRole(staffRoles...))
	g.GET("/me", a.Me)
}
