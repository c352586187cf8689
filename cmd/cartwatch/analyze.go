package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/ironsheep/cartwatch/internal/source"
	"github.com/ironsheep/cartwatch/internal/vision"
)

// imageReport is the --json output for one image.
type imageReport struct {
	Path       string             `json:"path"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Detections []vision.Detection `json:"detections"`
	Annotated  string             `json:"annotated,omitempty"`
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "run the detector once on still images",
		ArgsUsage: "IMAGE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "write annotated copies into `DIR`"},
			&cli.BoolFlag{Name: "hud", Usage: "draw the header, footer and restricted area on annotated copies"},
			&cli.IntFlag{Name: "grid", Usage: "draw a coordinate grid every `N` pixels on annotated copies"},
			&cli.BoolFlag{Name: "json", Usage: "print one JSON object per image"},
		},
		Action: analyzeAction,
	}
}

func analyzeAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("analyze: at least one image is required", 2)
	}

	cfg, logger, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	cfg.Display.HUD = c.Bool("hud")
	analyzer := vision.NewFromConfig(cfg, analyzerOptions(cfg, c.Int("grid"), logger)...)

	outDir := c.String("out")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	cache := source.NewImageCache()
	enc := json.NewEncoder(c.App.Writer)

	var errs error
	for _, path := range c.Args().Slice() {
		img, err := cache.Load(path)
		if err != nil {
			logger.Errorw("skipping image", "path", path, "error", err)
			errs = multierr.Append(errs, err)
			continue
		}

		res := analyzer.Analyze(img)
		report := imageReport{
			Path:       path,
			Width:      img.Bounds().Dx(),
			Height:     img.Bounds().Dy(),
			Detections: res.Detections,
		}

		if outDir != "" && res.Annotated != nil {
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			report.Annotated = filepath.Join(outDir, base+"_annotated.png")
			if err := imaging.Save(res.Annotated, report.Annotated); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("failed to save %s: %w", report.Annotated, err))
				report.Annotated = ""
			}
		}
		cache.Evict(path)

		if c.Bool("json") {
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}
			continue
		}
		printReport(c, report)
	}

	return errs
}

func printReport(c *cli.Context, r imageReport) {
	w := c.App.Writer
	fmt.Fprintf(w, "%s (%dx%d): %d detection(s)\n", r.Path, r.Width, r.Height, len(r.Detections))
	for _, d := range r.Detections {
		fmt.Fprintf(w, "  %s  box=(%d,%d,%d,%d) aspect=%.2f area=%d\n",
			d.Label(), d.Box.Min.X, d.Box.Min.Y, d.Box.Dx(), d.Box.Dy(), d.Aspect, d.Area)
	}
	if r.Annotated != "" {
		fmt.Fprintf(w, "  annotated: %s\n", r.Annotated)
	}
}
