package main

import (
	"image"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/cartwatch/internal/config"
	"github.com/ironsheep/cartwatch/internal/logging"
	"github.com/ironsheep/cartwatch/internal/overlay"
	"github.com/ironsheep/cartwatch/internal/vision"
)

// setup loads the configuration and builds a logger tagged with a fresh
// run id.
func setup(c *cli.Context) (*config.Config, *zap.SugaredLogger, error) {
	logger, err := logging.New("cartwatch", c.String("log-level"))
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With("run_id", uuid.NewString())

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// analyzerOptions wires the HUD and the calibration grid into the
// analyzer's backdrop.
func analyzerOptions(cfg *config.Config, gridSpacing int, logger *zap.SugaredLogger) []vision.Option {
	opts := []vision.Option{vision.WithLogger(logger)}

	var hud *overlay.HUD
	if cfg.Display.HUD {
		hud = overlay.NewHUD(cfg)
	}
	grid := overlay.Grid{Spacing: gridSpacing, Color: overlay.DefaultGridColor, Labels: true}

	if hud != nil || gridSpacing > 0 {
		opts = append(opts, vision.WithBackdrop(func(img *image.RGBA) {
			if hud != nil {
				hud.Draw(img)
			}
			grid.Draw(img)
		}))
	}
	return opts
}
