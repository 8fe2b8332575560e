package main

import (
	"github.com/semgraph/semgraph/internal/server"
	"github.com/semgraph/semgraph/internal/util"
	"github.com/semgraph/semgraph/pkg/logger"
	"github.com/semgraph/semgraph/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
