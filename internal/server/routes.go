package server

import (
	"net/http"

	"github.com/OFFIS-RIT/kiwi-persona/internal/server/middleware"
	"github.com/OFFIS-RIT/kiwi-persona/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Ranking routes
	apiRoutes.POST("/rank", routes.RankHandler, middleware.RequirePermission(middleware.PermissionRankRun))
	apiRoutes.POST("/rank/jobs", routes.EnqueueRankHandler, middleware.RequirePermission(middleware.PermissionRankEnqueue))
}
