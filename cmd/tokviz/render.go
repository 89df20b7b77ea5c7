package main

import (
	"context"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/23skdu/longbow-tokviz/internal/chart"
	"github.com/23skdu/longbow-tokviz/internal/registry"
	"github.com/23skdu/longbow-tokviz/internal/report"
)

func runRender(ctx context.Context, cmd *cli.Command, o *options, out io.Writer, v report.Viewer, regOpts []registry.Option) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}

	d := &report.Driver{
		Acquirer: newRegistry(o, regOpts),
		Renderer: chart.NewPlotRenderer(cfg.Output.WidthIn, cfg.Output.HeightIn, cfg.Output.DPI),
		Out:      out,
	}
	if o.show && v != nil {
		d.Viewer = v
	}
	_, err = d.Run(ctx, cfg)
	return err
}
