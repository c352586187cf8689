package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ironsheep/cartwatch/internal/capture"
	"github.com/ironsheep/cartwatch/internal/config"
	"github.com/ironsheep/cartwatch/internal/display"
	"github.com/ironsheep/cartwatch/internal/runner"
	"github.com/ironsheep/cartwatch/internal/source"
	"github.com/ironsheep/cartwatch/internal/vision"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "watch the camera (or a folder of images) and save snapshots of detected carts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "source-dir", Usage: "replay images from `DIR` instead of the camera"},
			&cli.StringFlag{Name: "video", Usage: "read frames from a video `FILE` or stream URL"},
			&cli.BoolFlag{Name: "loop", Usage: "restart --source-dir from the first image when done"},
			&cli.BoolFlag{Name: "headless", Usage: "do not open a preview window"},
			&cli.BoolFlag{Name: "no-hud", Usage: "do not draw the header, footer and restricted area"},
			&cli.IntFlag{Name: "grid", Usage: "draw a coordinate grid every `N` pixels on the preview"},
			&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: "write snapshots to `DIR`"},
			&cli.StringFlag{Name: "policy", Usage: "capture policy: cooldown or single-shot"},
			&cli.BoolFlag{Name: "parallel", Usage: "segment each color target on its own goroutine"},
			&cli.IntFlag{Name: "max-frames", Usage: "stop after `N` frames (0 = no limit)"},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if err := applyRunFlags(c, cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Capture.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	src, err := openSource(c, cfg, logger)
	if err != nil {
		return err
	}
	sink, err := openSink(c, cfg, logger)
	if err != nil {
		return multierr.Append(err, src.Close())
	}

	rec, err := capture.FromConfig(cfg.Capture, capture.WithLogger(logger))
	if err != nil {
		return multierr.Combine(err, src.Close(), sink.Close())
	}
	analyzer := vision.NewFromConfig(cfg, analyzerOptions(cfg, c.Int("grid"), logger)...)

	logger.Infow("starting",
		"version", Version,
		"targets", len(cfg.Targets),
		"policy", cfg.Capture.Policy,
		"output_dir", cfg.Capture.OutputDir,
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New(src, analyzer, rec, sink,
		runner.WithLogger(logger),
		runner.WithMaxFrames(c.Int("max-frames")),
	)
	stats, runErr := r.Run(ctx)
	closeErr := multierr.Combine(src.Close(), sink.Close())

	logger.Infow("summary",
		"frames", stats.Frames,
		"snapshots", stats.Snapshots,
		"fps", fmt.Sprintf("%.1f", stats.FPS()),
		"elapsed", stats.Elapsed,
	)
	return multierr.Append(runErr, closeErr)
}

// applyRunFlags layers command line overrides on the loaded configuration
// and validates the result again.
func applyRunFlags(c *cli.Context, cfg *config.Config) error {
	if c.IsSet("output-dir") {
		cfg.Capture.OutputDir = c.String("output-dir")
	}
	if c.IsSet("policy") {
		cfg.Capture.Policy = c.String("policy")
	}
	if c.IsSet("parallel") {
		cfg.Parallel = c.Bool("parallel")
	}
	if c.Bool("no-hud") {
		cfg.Display.HUD = false
	}
	return cfg.Validate()
}

func openSource(c *cli.Context, cfg *config.Config, logger *zap.SugaredLogger) (source.Source, error) {
	switch {
	case c.String("source-dir") != "":
		dir, err := source.NewDirectory(c.String("source-dir"),
			source.WithLoop(c.Bool("loop")),
			source.WithSize(cfg.Camera.Width, cfg.Camera.Height),
		)
		if err != nil {
			return nil, err
		}
		paths := dir.Paths()
		logger.Infow("replaying images", "dir", c.String("source-dir"), "count", len(paths), "first", paths[0])
		return dir, nil
	case c.String("video") != "":
		return source.OpenVideo(c.String("video"))
	default:
		return source.OpenCamera(cfg.Camera.Device, cfg.Camera.Width, cfg.Camera.Height)
	}
}

func openSink(c *cli.Context, cfg *config.Config, logger *zap.SugaredLogger) (display.Sink, error) {
	if c.Bool("headless") {
		return &display.Headless{}, nil
	}
	win, err := display.NewWindow(cfg.Display.Title)
	if err != nil {
		logger.Warnw("no display window, running headless", "error", err)
		return &display.Headless{}, nil
	}
	return win, nil
}
