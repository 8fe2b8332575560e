package routes

import (
	"net/http"

	"github.com/semgraph/semgraph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// GetEdgesHandler lists edges, optionally restricted to a node and a
// minimum similarity weight.
func GetEdgesHandler(c echo.Context) error {
	type getEdgesParams struct {
		NodeID        string  `query:"node_id"`
		MinSimilarity float64 `query:"min_similarity" validate:"min=0,max=1"`
		Limit         int     `query:"limit" validate:"omitempty,min=1,max=1000"`
	}

	params := new(getEdgesParams)
	if err := c.Bind(params); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "Invalid request params")
	}
	if err := c.Validate(params); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "min_similarity must be between 0 and 1 and limit between 1 and 1000")
	}

	store := c.(*middleware.AppContext).App.Store
	return c.JSON(http.StatusOK, store.GetEdges(params.NodeID, params.MinSimilarity, params.Limit))
}
