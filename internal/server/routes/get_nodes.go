package routes

import (
	"net/http"

	"github.com/semgraph/semgraph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// GetNodesHandler lists nodes with optional topic and group filters.
func GetNodesHandler(c echo.Context) error {
	type getNodesParams struct {
		Topic string `query:"topic"`
		Group *int   `query:"group"`
		Limit int    `query:"limit" validate:"omitempty,min=1,max=1000"`
	}

	params := new(getNodesParams)
	if err := c.Bind(params); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "Invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "Limit must be between 1 and 1000")
	}

	store := c.(*middleware.AppContext).App.Store
	return c.JSON(http.StatusOK, store.GetNodes(params.Topic, params.Group, params.Limit))
}

// GetNodeHandler returns a single node by ID.
func GetNodeHandler(c echo.Context) error {
	type getNodeParams struct {
		ID string `param:"id" validate:"required"`
	}

	params := new(getNodeParams)
	if err := c.Bind(params); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "Invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "Node ID is required")
	}

	store := c.(*middleware.AppContext).App.Store
	node, err := store.GetNode(params.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, node)
}

// GetNeighborsHandler returns nodes reachable from a node within max_depth hops.
func GetNeighborsHandler(c echo.Context) error {
	type getNeighborsParams struct {
		ID       string `param:"id" validate:"required"`
		MaxDepth *int   `query:"max_depth" validate:"omitempty"`
	}

	params := new(getNeighborsParams)
	if err := c.Bind(params); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "Invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "Node ID is required")
	}

	maxDepth := 1
	if params.MaxDepth != nil {
		maxDepth = *params.MaxDepth
	}
	if maxDepth < 1 || maxDepth > 3 {
		return jsonDetail(c, http.StatusBadRequest, "max_depth must be between 1 and 3")
	}

	store := c.(*middleware.AppContext).App.Store
	neighborhood, err := store.GetNeighbors(params.ID, maxDepth)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, neighborhood)
}
