// Package daily loads the aggregated menu of a set of locations for one day.
package daily

import (
	"context"
	"log/slog"
	"time"

	"github.com/lepinkainen/mensa/internal/location"
	"github.com/lepinkainen/mensa/internal/menu"
)

// Scheduler fetches the per-location results of a day.
type Scheduler interface {
	FetchAll(ctx context.Context, locs []location.Location, day time.Time) []menu.LocationMenu
}

// Request selects what to load.
type Request struct {
	Locations []location.Location
	// Date is the day to load. The zero value asks for the site's today.
	Date time.Time
	// Extras are filter terms; every term must match some extras label.
	Extras []string
}

// Loader composes fetching, aggregation and filtering.
type Loader struct {
	scheduler Scheduler
	now       func() time.Time
}

// NewLoader creates a loader on top of a scheduler.
func NewLoader(s Scheduler) *Loader {
	return &Loader{scheduler: s, now: time.Now}
}

// Load fetches all requested locations and returns their combined menu.
// Failing locations are skipped; the only error is the caller's cancellation.
func (l *Loader) Load(ctx context.Context, req Request) (menu.Menu, error) {
	start := l.now()
	results := l.scheduler.FetchAll(ctx, req.Locations, req.Date)
	if err := ctx.Err(); err != nil {
		return menu.Menu{}, err
	}

	date := req.Date
	if date.IsZero() {
		date = Today(start)
	}

	m := menu.FilterExtras(menu.Aggregate(date, results), req.Extras)
	slog.Debug("Loaded menu",
		"date", date.Format("2006-01-02"),
		"locations", len(req.Locations),
		"answered", len(results),
		"dishes", m.Len(),
		"duration", l.now().Sub(start))
	return m, nil
}

// Today truncates t to midnight in its own location.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Day returns the date offset days after today.
func Day(now time.Time, offset int) time.Time {
	return Today(now).AddDate(0, 0, offset)
}
