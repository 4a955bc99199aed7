package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/roman-kulish/flythrough/internal/render"
	"github.com/roman-kulish/flythrough/internal/scenario"
	"github.com/roman-kulish/flythrough/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

func Run(ctx context.Context, config *scenario.Config, logger *slog.Logger) error {
	terrain, err := config.OpenTerrain(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to open terrain: %w", err)
	}

	r, err := config.RouteSource().Route(ctx)
	if err != nil {
		return fmt.Errorf("failed to read route: %w", err)
	}

	port, shutdown, err := createRenderer(&config.Renderer, logger)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer shutdown()

	o := NewOrchestrator(terrain.Source, config.View.CRS, config.Animation, port, logger,
		WithTerrainTimeout(config.Elevation.Timeout.Std()),
		WithOverlays(config.View.Overlays))

	if !o.Generate(ctx, r) {
		return errors.New("cannot generate flythrough")
	}

	done, err := o.Play(ctx)
	if err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	reportCtx, stopReport := context.WithCancel(ctx)
	defer stopReport()

	reporter := telemetry.NewReporter(o.Telemetry(), config.Settings.TelemetryInterval.Std(), telemetry.WithLogger(logger))
	go reporter.Run(reportCtx)

	select {
	case err = <-done:
	case <-ctx.Done():
		o.Stop()
		err = <-done
	}

	if err != nil {
		// Renderer errors never abort playback; they are only reported.
		logger.Warn(err.Error())
	}
	return nil
}

func createRenderer(config *scenario.RendererConfig, logger *slog.Logger) (render.Port, func(), error) {
	switch config.Type {
	case scenario.RendererLog:
		return render.NewLogPort(render.WithLogger(logger), render.WithEvery(config.Every)), func() {}, nil

	case scenario.RendererWebSocket:
		port := render.NewWebSocketPort(render.WithWebSocketLogger(logger))

		mux := http.NewServeMux()
		mux.Handle("/ws", port.Handler())

		srv := &http.Server{Addr: config.Listen, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		go func() {
			logger.Info("waiting for viewer", slog.String("listen", config.Listen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("renderer server stopped", slog.Any("error", err))
			}
		}()

		shutdown := func() {
			_ = port.Close()

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}
		return port, shutdown, nil

	default:
		return nil, nil, fmt.Errorf("creating renderer: unknown type '%s'", config.Type)
	}
}
