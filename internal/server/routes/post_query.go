package routes

import (
	"net/http"

	"github.com/semgraph/semgraph/internal/server/middleware"
	"github.com/semgraph/semgraph/pkg/graph"

	"github.com/labstack/echo/v4"
)

// QueryGraphHandler extracts a subgraph for a set of node IDs or a topic.
// Without either it falls back to the full graph.
func QueryGraphHandler(c echo.Context) error {
	type queryGraphBody struct {
		NodeIDs          []string `json:"node_ids"`
		Topic            string   `json:"topic"`
		IncludeNeighbors bool     `json:"include_neighbors"`
		MaxDepth         int      `json:"max_depth" validate:"omitempty,min=1,max=3"`
	}

	body := new(queryGraphBody)
	if err := c.Bind(body); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(body); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "max_depth must be between 1 and 3")
	}

	store := c.(*middleware.AppContext).App.Store
	result := store.Query(graph.QueryParams{
		NodeIDs:          body.NodeIDs,
		Topic:            body.Topic,
		IncludeNeighbors: body.IncludeNeighbors,
		MaxDepth:         body.MaxDepth,
	})
	return c.JSON(http.StatusOK, result)
}
