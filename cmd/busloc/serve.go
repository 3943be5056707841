package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/urfave/cli/v2"

	"bus-locator/internal/api"
	"bus-locator/internal/bridge"
	"bus-locator/internal/config"
	"bus-locator/internal/screen"
	"bus-locator/internal/telemetry"
	"bus-locator/internal/wsengine"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server for the host UI and map surfaces",
		Flags: []cli.Flag{configFlag},
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
			engine := wsengine.New()
			screens := screen.NewManager(
				bridge.New(engine),
				telemetry.NewPoller(source, cfg.Telemetry.Timeout),
				screen.Options{PollInterval: cfg.Telemetry.PollInterval, SettleDelay: cfg.Surface.SettleDelay},
			)
			defer screens.Close()

			srv := &http.Server{
				Addr: fmt.Sprintf(":%d", cfg.Server.Port),
				Handler: api.NewRouter(screens, engine, api.Options{
					AllowedOrigins: cfg.Server.AllowedOrigins,
					StaticDir:      cfg.Server.StaticDir,
				}),
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			var serveErr error
			var wg conc.WaitGroup
			wg.Go(func() {
				log.Info().Int("port", cfg.Server.Port).Str("telemetry", cfg.Telemetry.BaseURL).Msg("Server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr = err
					stop()
				}
			})

			<-ctx.Done()
			log.Info().Msg("Shutdown initiated")
			screens.Close()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("HTTP server shutdown error")
			} else {
				log.Info().Msg("HTTP server shut down successfully")
			}
			wg.Wait()
			return serveErr
		},
	}
}
