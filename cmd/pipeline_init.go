package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/choropleth-cli/internal/config"
	"github.com/sells-group/choropleth-cli/internal/enrich"
	"github.com/sells-group/choropleth-cli/internal/fetcher"
)

// pipelineEnv holds the joined view and the display settings shared by
// the summary, view, export, explore and categories commands.
type pipelineEnv struct {
	View    enrich.View
	Palette enrich.Palette
	TopK    int
	BottomK int
	KeyPad  int
}

// filter applies opts to the joined view, matching region ids the way the
// loader normalized them.
func (e *pipelineEnv) filter(opts enrich.FilterOptions) enrich.View {
	opts.KeyPad = e.KeyPad
	return enrich.Filter(e.View, opts)
}

// loadOptions maps configuration onto pipeline load options.
func loadOptions(c *config.Config) enrich.LoadOptions {
	delim := ','
	if r := []rune(c.Sources.Delimiter); len(r) == 1 {
		delim = r[0]
	}
	return enrich.LoadOptions{
		Columns: enrich.Columns{
			ID:         c.Columns.ID,
			Name:       c.Columns.Name,
			Value:      c.Columns.Value,
			Category:   c.Columns.Category,
			Quality:    c.Columns.Quality,
			GeometryID: c.Columns.GeometryID,
			KeyPad:     c.Columns.KeyPad,
		},
		DeriveCategory:    c.Categories.Derive,
		Lenient:           c.Categories.Lenient,
		SimplifyTolerance: c.Geo.SimplifyTolerance,
		Sheet:             c.Sources.Sheet,
		SkipRows:          c.Sources.SkipRows,
		Delimiter:         delim,
		TempDir:           c.Sources.TempDir,
		Opener:            newSources(c.Fetch),
	}
}

// newSources builds the source opener from fetch settings.
func newSources(f config.FetchConfig) *fetcher.Sources {
	timeout := time.Duration(f.TimeoutSecs) * time.Second
	return fetcher.New(fetcher.Options{
		HTTP: fetcher.HTTPOptions{
			UserAgent:  f.UserAgent,
			Timeout:    timeout,
			MaxRetries: f.MaxRetries,
		},
		FTP: fetcher.FTPOptions{Timeout: timeout},
	})
}

// initPipeline loads both sources (through the context cache, when present)
// and joins them.
func initPipeline(ctx context.Context, c *config.Config) (*pipelineEnv, error) {
	if c.Sources.Attributes == "" || c.Sources.Geometries == "" {
		return nil, eris.New("sources.attributes and sources.geometries must be set")
	}

	src := enrich.Sources{Attributes: c.Sources.Attributes, Geometries: c.Sources.Geometries}
	ds, err := enrich.Load(ctx, src, loadOptions(c))
	if err != nil {
		return nil, err
	}

	view, err := enrich.Join(ds.Attributes, ds.Geometries, enrich.DuplicatePolicy(c.Join.Duplicates))
	if err != nil {
		return nil, err
	}

	zap.L().Info("regions joined",
		zap.String("component", "pipeline"),
		zap.Int("attributes", len(ds.Attributes)),
		zap.Int("geometries", len(ds.Geometries)),
		zap.Int("joined", view.Len()),
	)

	return &pipelineEnv{
		View:    view,
		Palette: enrich.NewPalette(c.Categories.Labels, c.Categories.Colors),
		TopK:    c.Summary.TopK,
		BottomK: c.Summary.BottomK,
		KeyPad:  c.Columns.KeyPad,
	}, nil
}
