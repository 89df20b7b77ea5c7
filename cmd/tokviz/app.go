package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/23skdu/longbow-tokviz/internal/config"
	"github.com/23skdu/longbow-tokviz/internal/hub"
	"github.com/23skdu/longbow-tokviz/internal/registry"
	"github.com/23skdu/longbow-tokviz/internal/report"
)

// newApp builds the CLI. v displays the rendered image; extra registry options
// replace backends in tests.
func newApp(out io.Writer, v report.Viewer, regOpts ...registry.Option) *cli.Command {
	o := &options{}
	var shutdown func(context.Context) error

	flags := append(commonFlags(o), observabilityFlags(o)...)
	return &cli.Command{
		Name:   "tokviz",
		Usage:  "Compare how GPT-2, BERT and T5 tokenizers split the same texts",
		Writer: out,
		Flags:  append(flags, renderFlags(o)...),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := setupLogging(o.logLevel, o.logFormat, os.Stderr); err != nil {
				return ctx, err
			}
			if o.trace {
				var err error
				shutdown, err = initTracer(os.Stderr)
				if err != nil {
					return ctx, fmt.Errorf("init tracer: %w", err)
				}
			}
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if shutdown != nil {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					log.Warn().Err(err).Msg("Tracer shutdown failed")
				}
			}
			if o.metricsFile != "" {
				if err := prometheus.WriteToTextfile(o.metricsFile, prometheus.DefaultGatherer); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}
			return nil
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runRender(ctx, cmd, o, out, v, regOpts)
		},
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "Render the comparison charts to a PNG file (default)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runRender(ctx, cmd, o, out, v, regOpts)
				},
			},
			{
				Name:  "counts",
				Usage: "Print the token count table",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "tokens",
						Usage:       "also list the tokens of every sample",
						Destination: &o.tokens,
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runCounts(ctx, o, out, regOpts)
				},
			},
			{
				Name:  "fetch",
				Usage: "Download the tokenizer files of every configured model into the cache",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runFetch(ctx, o, out)
				},
			},
		},
	}
}

func setupLogging(level, format string, w io.Writer) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch strings.ToLower(format) {
	case "console", "pretty", "":
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			With().Timestamp().Caller().Logger()
	case "json":
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

func initTracer(w io.Writer) (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("tokviz"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}

// loadConfig resolves the config file and applies flag overrides. Flags win
// over the file only when given on the command line.
func loadConfig(cmd *cli.Command, o *options) (config.Config, error) {
	cfg, used, err := config.Resolve(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if used != "" {
		log.Debug().Str("path", used).Msg("Loaded config")
	}
	if cmd != nil {
		if cmd.IsSet("output") {
			cfg.Output.Path = o.output
		}
		if cmd.IsSet("dpi") {
			cfg.Output.DPI = o.dpi
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newFetcher(o *options) *hub.Fetcher {
	return hub.NewFetcher(o.cacheDir,
		hub.WithEndpoint(o.hubEndpoint),
		hub.WithToken(o.hubToken),
		hub.WithOffline(o.offline),
	)
}

func newRegistry(o *options, extra []registry.Option) *registry.Registry {
	return registry.New(newFetcher(o), extra...)
}
