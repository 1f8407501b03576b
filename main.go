package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"NoteBoard/internal/api"
	"NoteBoard/internal/config"
	boardnet "NoteBoard/internal/net"
	"NoteBoard/internal/session"
	"NoteBoard/internal/state"
	"NoteBoard/internal/surface"
	"NoteBoard/internal/ui"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var Version = "dev"

const discoverTimeout = 3 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := newApp(logger).RunContext(ctx, os.Args); err != nil {
		logger.WithError(err).Error("noteboard failed")
		os.Exit(1)
	}
}

func newApp(logger *logrus.Logger) *cli.App {
	return &cli.App{
		Name:    "noteboard",
		Usage:   "Whiteboard with a remote drawing gallery",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file (default: " + config.DefaultFile + " when present)",
			},
			&cli.StringFlag{
				Name:  "api-url",
				Usage: "Drawing store base URL",
			},
			&cli.BoolFlag{
				Name:  "discover",
				Usage: "Look for a backend on the local network via mDNS first",
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Surface width in pixels",
			},
			&cli.IntFlag{
				Name:  "height",
				Usage: "Surface height in pixels",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Action: func(c *cli.Context) error {
			return runGUI(c, logger)
		},
		Commands: []*cli.Command{
			{
				Name:  "gui",
				Usage: "Open the whiteboard window",
				Action: func(c *cli.Context) error {
					return runGUI(c, logger)
				},
			},
			{
				Name:  "list",
				Usage: "Print the stored drawings",
				Action: func(c *cli.Context) error {
					return runList(c, logger)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a stored drawing",
				ArgsUsage: "FILENAME",
				Action: func(c *cli.Context) error {
					return runDelete(c, logger)
				},
			},
			{
				Name:  "render",
				Usage: "Replay a JSON stroke file and save or export the result",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "strokes", Usage: "JSON file holding a list of strokes", Required: true},
					&cli.StringFlag{Name: "edit", Usage: "Path of a stored drawing to draw over and update"},
					&cli.BoolFlag{Name: "save", Usage: "Save the result to the drawing store"},
					&cli.StringFlag{Name: "out", Usage: "Write the result as PNG"},
					&cli.StringFlag{Name: "pdf", Usage: "Write the result as PDF"},
				},
				Action: func(c *cli.Context) error {
					return runRender(c, logger)
				},
			},
		},
	}
}

// loadConfig reads the config file and environment, then applies global
// flags that were set explicitly.
func loadConfig(c *cli.Context, logger *logrus.Logger) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if c.IsSet("api-url") {
		cfg.APIURL = c.String("api-url")
	}
	if c.IsSet("discover") {
		cfg.Discover = c.Bool("discover")
	}
	if c.IsSet("width") {
		cfg.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Height = c.Int("height")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	logger.SetLevel(cfg.Level())
	return cfg, nil
}

// newClient connects to the discovered backend, or the configured one when
// discovery is off or finds nothing.
func newClient(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*api.Client, error) {
	base := cfg.APIURL
	if cfg.Discover {
		found, err := boardnet.Discover(ctx, discoverTimeout, logger)
		switch {
		case err == nil:
			base = found
		case base == "":
			return nil, fmt.Errorf("discover backend: %w", err)
		default:
			logger.WithError(err).Infof("discovery failed, using %s", base)
		}
	}
	return api.NewClient(base, api.Options{Timeout: cfg.Timeout, RateLimit: cfg.RateLimit}, logger)
}

func runGUI(c *cli.Context, logger *logrus.Logger) error {
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	client, err := newClient(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	logger.Infof("using drawing store %s", client.BaseURL())

	surf := surface.New(cfg.Width, cfg.Height, logger)
	capture := surface.NewCapture(surf, state.NewTools())
	capture.SetRadius(cfg.BrushRadius)
	ui.RunApp(c.Context, session.New(client, surf, logger), capture, logger)
	return nil
}

func runList(c *cli.Context, logger *logrus.Logger) error {
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	client, err := newClient(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	images, err := client.List(c.Context)
	if err != nil {
		return err
	}
	for _, img := range images {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", img.Filename, img.Path)
	}
	return nil
}

func runDelete(c *cli.Context, logger *logrus.Logger) error {
	filename := c.Args().First()
	if filename == "" {
		return errors.New("delete: FILENAME is required")
	}
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	client, err := newClient(c.Context, cfg, logger)
	if err != nil {
		return err
	}
	sess := session.New(client, nil, logger)
	if err := sess.Delete(c.Context, filename); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "deleted %s\n", filename)
	return nil
}
