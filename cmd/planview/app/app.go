package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/flythrough/internal/crs"
	"github.com/roman-kulish/flythrough/internal/elevation"
	"github.com/roman-kulish/flythrough/internal/flythrough"
	"github.com/roman-kulish/flythrough/internal/playback"
	"github.com/roman-kulish/flythrough/internal/pose"
	"github.com/roman-kulish/flythrough/internal/scenario"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	sc, err := scenario.LoadConfig(config.ScenarioFile)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	terrain, err := sc.OpenTerrain(ctx, logger)
	if err != nil {
		return fmt.Errorf("failed to open terrain: %w", err)
	}

	plan, err := buildPlan(ctx, sc, terrain, config, logger)
	if err != nil {
		return err
	}

	renderer, err := NewPlanRenderer(RenderConfig{
		ColorTheme: config.Theme,
		Shading:    !config.NoShading,
		ZFactor:    sc.Animation.VerticalExaggeration,
		TraceEvery: config.TraceEvery,
		Annotate:   !config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating plan renderer: %w", err)
	}

	img, err := renderer.Render(plan)
	if err != nil {
		return fmt.Errorf("rendering plan: %w", err)
	}

	logger.Info("writing plan view",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", img.Bounds().Dx()),
			slog.Int("height", img.Bounds().Dy()),
		))

	if err = writeImage(config.OutputFile, config.Format, img); err != nil {
		return fmt.Errorf("writing plan view: %w", err)
	}

	if config.ProfileFile != "" {
		logger.Info("writing altitude profile", slog.String("destination", config.ProfileFile))
		if err = NewProfile(plan.Steps).Save(config.ProfileFile, plan.Name); err != nil {
			return err
		}
	}

	return nil
}

// buildPlan generates the flythrough, plays it without a clock and samples
// the terrain around it.
func buildPlan(ctx context.Context, sc *scenario.Config, terrain *scenario.Terrain, config *Config, logger *slog.Logger) (*Plan, error) {
	r, err := sc.RouteSource().Route(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read route: %w", err)
	}
	if err = r.Validate(); err != nil {
		return nil, err
	}

	working := crs.WorkingCRS(sc.View.CRS)
	wr, err := r.To(working)
	if err != nil {
		return nil, err
	}

	params := sc.Animation
	seq := flythrough.NewSynthesizer(terrain.Source, working, flythrough.WithLogger(logger)).
		Generate(ctx, wr.Points, params)
	if seq.Empty() {
		return nil, errors.New("cannot generate flythrough")
	}

	solver := pose.NewSolver(
		elevation.Scaled{Source: terrain.Source, Factor: params.VerticalExaggeration},
		working,
		pose.WithLookahead(params.LookaheadDistance),
		pose.WithFallbackDistance(params.CameraHeight),
		pose.WithLogger(logger))

	steps, err := playback.Simulate(ctx, seq, solver, float64(params.FrameRate))
	if err != nil {
		return nil, fmt.Errorf("simulating flythrough: %w", err)
	}

	lo, hi := planExtent(wr.Points, config.Margin)
	raster, err := SampleRaster(ctx, terrain.Source, working, lo, hi, config.Width)
	if err != nil {
		return nil, fmt.Errorf("sampling terrain: %w", err)
	}

	logger.Info("flythrough simulated",
		slog.String("route", r.Name),
		slog.Int("keyframes", len(seq.Keyframes)),
		slog.String("frames", humanize.Comma(int64(len(steps)))),
		slog.String("length", humanize.FormatFloat("#,###.#", seq.Length)+" m"),
		slog.String("pixels", humanize.Comma(int64(raster.Width*raster.Height))))

	return &Plan{
		Name:     r.Name,
		CRS:      working,
		Raster:   raster,
		Route:    wr.Points,
		Params:   params,
		Sequence: seq,
		Steps:    steps,
	}, nil
}

func writeImage(path string, format ImageFormat, img image.Image) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()

	switch format {
	case ImageJPEG:
		return jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	default:
		return png.Encode(out, img)
	}
}
