package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/23skdu/longbow-tokviz/internal/registry"
)

func runFetch(ctx context.Context, o *options, out io.Writer) error {
	cfg, err := loadConfig(nil, o)
	if err != nil {
		return err
	}

	f := newFetcher(o)
	paths, err := registry.Prefetch(ctx, f, cfg.Models)
	if err != nil {
		return err
	}
	fetched := 0
	for i, m := range cfg.Models {
		if paths[i] == "" {
			log.Debug().Str("model", m.Name).Msg("Nothing to fetch")
			continue
		}
		if _, err := fmt.Fprintf(out, "%s\t%s\n", m.Name, paths[i]); err != nil {
			return err
		}
		fetched++
	}
	log.Info().Str("cache_dir", f.CacheDir()).Int("files", fetched).Msg("Tokenizer cache ready")
	return nil
}
