package fetch

import (
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/mensa/internal/errors"
	"github.com/lepinkainen/mensa/internal/location"
	"github.com/lepinkainen/mensa/internal/menu"
)

// Fetcher retrieves the page of one location for one day.
type Fetcher interface {
	Fetch(ctx context.Context, loc location.Location, day time.Time) (io.ReadCloser, error)
}

// Extractor turns page content into raw dishes.
type Extractor interface {
	Extract(r io.Reader, pageURL string) (menu.Courses, error)
}

// Scheduler fetches and extracts the pages of many locations concurrently.
type Scheduler struct {
	fetcher   Fetcher
	extractor Extractor
}

// NewScheduler creates a scheduler over the given transport and extractor.
func NewScheduler(fetcher Fetcher, extractor Extractor) *Scheduler {
	return &Scheduler{fetcher: fetcher, extractor: extractor}
}

// FetchAll issues one request per distinct location and waits for all of them.
// A failing location is logged and left out of the result; it never affects
// the others. Results follow the order of locs.
func (s *Scheduler) FetchAll(ctx context.Context, locs []location.Location, day time.Time) []menu.LocationMenu {
	locs = distinct(locs)
	slots := make([]*menu.LocationMenu, len(locs))

	var g errgroup.Group
	for i, loc := range locs {
		g.Go(func() error {
			courses, err := s.fetchOne(ctx, loc, day)
			if err != nil {
				slog.Warn("Skipping location", "location", loc.Name, "error", errors.NewLocationError(loc.ID, "fetch", err))
				return nil
			}
			slog.Debug("Fetched location", "location", loc.Name, "dishes", courses.Len())
			slots[i] = &menu.LocationMenu{Location: loc, Courses: courses}
			return nil
		})
	}
	_ = g.Wait()

	results := make([]menu.LocationMenu, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

func (s *Scheduler) fetchOne(ctx context.Context, loc location.Location, day time.Time) (menu.Courses, error) {
	if err := ctx.Err(); err != nil {
		return menu.Courses{}, err
	}

	body, err := s.fetcher.Fetch(ctx, loc, day)
	if err != nil {
		return menu.Courses{}, err
	}
	defer func() { _ = body.Close() }()

	return s.extractor.Extract(body, loc.URL)
}

func distinct(locs []location.Location) []location.Location {
	seen := make(map[string]bool, len(locs))
	out := make([]location.Location, 0, len(locs))
	for _, l := range locs {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		out = append(out, l)
	}
	return out
}
