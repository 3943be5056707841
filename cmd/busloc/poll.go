package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"bus-locator/internal/config"
	"bus-locator/internal/telemetry"
)

func pollCommand() *cli.Command {
	return &cli.Command{
		Name:  "poll",
		Usage: "poll the telemetry endpoint and print every accepted position",
		Flags: []cli.Flag{
			configFlag,
			&cli.IntFlag{
				Name:  "count",
				Value: 0,
				Usage: "stop after this many positions (0 runs until interrupted)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			setupLogging(cfg.Log.Level, cfg.Log.Pretty)

			source, err := telemetry.NewSource(cfg.Telemetry.Format, cfg.Telemetry.BaseURL, cfg.Telemetry.VehicleRef, cfg.Telemetry.Timeout)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			limit := c.Int("count")
			seen := 0
			enc := json.NewEncoder(os.Stdout)
			poller := telemetry.NewPoller(source, cfg.Telemetry.Timeout)
			h := poller.Start(func(s telemetry.Sample) {
				_ = enc.Encode(struct {
					Seq uint64  `json:"seq"`
					Lat float64 `json:"lat"`
					Lon float64 `json:"lon"`
				}{s.Seq, s.Latitude, s.Longitude})
				seen++
				if limit > 0 && seen >= limit {
					stop()
				}
			}, cfg.Telemetry.PollInterval)

			<-ctx.Done()
			poller.Stop(h)
			return nil
		},
	}
}
