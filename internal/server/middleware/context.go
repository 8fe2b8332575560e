package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/semgraph/semgraph/pkg/graph"
)

// App bundles the dependencies handlers need. Queue is nil when the
// server runs without RabbitMQ or without a snapshot cache; the build
// endpoint then always builds inline. When Queue is set, async build
// results come back through the shared snapshot cache: the worker saves
// the finished graph and a later use_cache build request loads it.
type App struct {
	Store   *graph.Store
	Service *graph.Service
	Queue   *amqp091.Channel
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
