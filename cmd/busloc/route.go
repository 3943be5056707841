package main

import (
	"encoding/json"
	"os"

	"github.com/urfave/cli/v2"

	"bus-locator/internal/routes"
)

func routeCommand() *cli.Command {
	return &cli.Command{
		Name:      "route",
		Usage:     "print the descriptor a route key resolves to",
		ArgsUsage: "<route key>",
		Action: func(c *cli.Context) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(routes.Resolve(c.Args().First()))
		},
	}
}
