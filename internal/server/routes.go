package server

import (
	"github.com/semgraph/semgraph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	graphRoutes := e.Group("/graph")

	// Read routes
	graphRoutes.GET("/full", routes.GetFullGraphHandler)
	graphRoutes.GET("/nodes", routes.GetNodesHandler)
	graphRoutes.GET("/nodes/:id", routes.GetNodeHandler)
	graphRoutes.GET("/nodes/:id/neighbors", routes.GetNeighborsHandler)
	graphRoutes.GET("/edges", routes.GetEdgesHandler)

	// Query and build routes
	graphRoutes.POST("/query", routes.QueryGraphHandler)
	graphRoutes.POST("/build", routes.BuildGraphHandler)
}
