package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	if os.Getenv("BUSLOC_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	app := &cli.App{
		Name:  "busloc",
		Usage: "Live bus position relay for route map surfaces",
		Commands: []*cli.Command{
			serveCommand(),
			routeCommand(),
			pollCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to a YAML or TOML config file",
	EnvVars: []string{"BUSLOC_CONFIG"},
}

// setupLogging applies the configured level; pretty console output stays on
// unless BUSLOC_LOG_FORMAT=JSON, or when the config asks for it explicitly.
func setupLogging(level string, pretty bool) {
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(parsed)
}
