package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ironsheep/cartwatch/internal/config"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func printVersion(c *cli.Context) {
	fmt.Fprintf(c.App.Writer, "cartwatch %s\n", Version)
	fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
}

func newApp() *cli.App {
	cli.VersionPrinter = printVersion

	return &cli.App{
		Name:            "cartwatch",
		Usage:           "detect colored toy carts on a webcam and save snapshots",
		Version:         Version,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE` (JSON); built-in defaults otherwise",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (default $CARTWATCH_LOG_LEVEL, then info)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "read CARTWATCH_* variables from `FILE` if it exists",
			},
		},
		Before: func(c *cli.Context) error {
			return config.LoadDotEnv(c.String("env-file"))
		},
		Commands: []*cli.Command{
			runCommand(),
			analyzeCommand(),
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(c *cli.Context) error {
					printVersion(c)
					return nil
				},
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "cartwatch: %v\n", err)
		os.Exit(1)
	}
}
