package routes

import (
	"net/http"

	"github.com/semgraph/semgraph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// GetFullGraphHandler serves the complete current graph, optionally
// restricted to nodes matching a topic substring.
func GetFullGraphHandler(c echo.Context) error {
	type getFullGraphParams struct {
		Topic           string `query:"topic"`
		IncludeMetadata *bool  `query:"include_metadata"`
	}

	params := new(getFullGraphParams)
	if err := c.Bind(params); err != nil {
		return jsonDetail(c, http.StatusBadRequest, "Invalid request params")
	}

	includeMetadata := true
	if params.IncludeMetadata != nil {
		includeMetadata = *params.IncludeMetadata
	}

	store := c.(*middleware.AppContext).App.Store
	return c.JSON(http.StatusOK, store.GetFull(params.Topic, includeMetadata))
}
