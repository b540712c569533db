package cmd

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lepinkainen/mensa/internal/config"
	"github.com/lepinkainen/mensa/internal/daily"
	"github.com/lepinkainen/mensa/internal/datastore"
	"github.com/lepinkainen/mensa/internal/enrich"
	"github.com/lepinkainen/mensa/internal/fileutil"
	"github.com/lepinkainen/mensa/internal/menu"
	"github.com/lepinkainen/mensa/internal/render"
)

const defaultDBFile = "./mensa.db"

func (m *MenuCmd) Run(g *Globals) error {
	s := config.Get()
	locs, tier, err := selection(s, m.Mensa, m.Price)
	if err != nil {
		return err
	}
	day, err := resolveDay(m.Days, m.Date)
	if err != nil {
		return err
	}

	result, err := newLoader(s, m.Browser).Load(g.Ctx, daily.Request{
		Locations: locs,
		Date:      day,
		Extras:    m.Extras,
	})
	if err != nil {
		return err
	}

	if m.Images {
		saved := 0
		for range newEnricher(s, s.ImageDir).Start(g.Ctx, enrich.All(result)) {
			saved++
		}
		slog.Info("Downloaded dish images", "count", saved, "dir", s.ImageDir)
	}

	switch m.Format {
	case "sqlite":
		path := m.Output
		if path == "" {
			path = defaultDBFile
		}
		return datastore.ExportMenu(datastore.NewSQLiteStore(path), result, uuid.New())
	case "datasette":
		if s.DatasetteURL == "" {
			return fmt.Errorf("datasette output requires datasette.url in config or MENSA_DATASETTE_URL")
		}
		return datastore.ExportMenu(datastore.NewDatasetteClient(s.DatasetteURL, s.DatasetteToken), result, uuid.New())
	}

	return m.write(g, result, render.Options{Tier: tier, ShowLocations: len(locs) > 1})
}

func (m *MenuCmd) write(g *Globals, result menu.Menu, opts render.Options) error {
	r, err := render.New(m.Format, opts)
	if err != nil {
		return err
	}

	if m.Output == "" {
		return r.Render(g.Out, result)
	}

	var buf bytes.Buffer
	if err := r.Render(&buf, result); err != nil {
		return err
	}
	written, err := fileutil.WriteFileWithOverwrite(m.Output, buf.Bytes(), 0644, config.OverwriteFiles)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", m.Output, err)
	}
	if !written {
		slog.Warn("Output file exists, skipping (use --overwrite)", "path", m.Output)
		return nil
	}
	slog.Info("Wrote menu", "path", m.Output, "format", m.Format)
	return nil
}
