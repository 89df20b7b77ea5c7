package main

import (
	"github.com/urfave/cli/v3"

	"github.com/23skdu/longbow-tokviz/internal/hub"
)

// options holds every flag value of one app instance.
type options struct {
	configPath  string
	output      string
	dpi         int
	show        bool
	cacheDir    string
	offline     bool
	hubEndpoint string
	hubToken    string
	metricsFile string
	trace       bool
	logLevel    string
	logFormat   string
	tokens      bool
}

func commonFlags(o *options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "path to config.yaml (default: user config, then built-in)",
			Destination: &o.configPath,
		},
		&cli.StringFlag{
			Name:        "cache-dir",
			Usage:       "directory for downloaded tokenizer files",
			Value:       hub.DefaultCacheDir(),
			Destination: &o.cacheDir,
		},
		&cli.BoolFlag{
			Name:        "offline",
			Usage:       "never touch the network; fail on a cache miss",
			Destination: &o.offline,
		},
		&cli.StringFlag{
			Name:        "hub-endpoint",
			Usage:       "HuggingFace compatible hub base URL",
			Value:       hub.DefaultEndpoint,
			Destination: &o.hubEndpoint,
		},
		&cli.StringFlag{
			Name:        "hub-token",
			Usage:       "bearer token for gated repositories",
			Sources:     cli.EnvVars("HF_TOKEN"),
			Destination: &o.hubToken,
		},
	}
}

func observabilityFlags(o *options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "metrics-file",
			Usage:       "write prometheus metrics in text format to this file on exit",
			Destination: &o.metricsFile,
		},
		&cli.BoolFlag{
			Name:        "trace",
			Usage:       "print OpenTelemetry spans to stderr",
			Destination: &o.trace,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &o.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (console, json)",
			Value:       "console",
			Destination: &o.logFormat,
		},
	}
}

func renderFlags(o *options) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "PNG file to write",
			Destination: &o.output,
		},
		&cli.IntFlag{
			Name:        "dpi",
			Usage:       "image resolution",
			Destination: &o.dpi,
		},
		&cli.BoolFlag{
			Name:        "show",
			Usage:       "open the image in the system viewer after saving (--show=false to skip)",
			Value:       true,
			Destination: &o.show,
		},
	}
}
