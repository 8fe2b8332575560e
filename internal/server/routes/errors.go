package routes

import (
	"errors"
	"net/http"

	"github.com/semgraph/semgraph/pkg/apperr"
	"github.com/semgraph/semgraph/pkg/logger"

	"github.com/labstack/echo/v4"
)

// detailBody is the error wire shape: {"detail": <message>}.
type detailBody struct {
	Detail string `json:"detail"`
}

func jsonDetail(c echo.Context, status int, message string) error {
	return c.JSON(status, detailBody{Detail: message})
}

// writeError maps a domain error to its HTTP status. Internal failures get
// a generic body so upstream error detail never leaks across the API
// boundary.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		return jsonDetail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return jsonDetail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrBuildConflict):
		return jsonDetail(c, http.StatusConflict, err.Error())
	default:
		logger.Error("[API] Internal error", "path", c.Path(), "err", err)
		return jsonDetail(c, http.StatusInternalServerError, "Internal server error")
	}
}
