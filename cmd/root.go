package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"

	"github.com/lepinkainen/mensa/internal/config"
	"github.com/lepinkainen/mensa/internal/daily"
	"github.com/lepinkainen/mensa/internal/enrich"
	"github.com/lepinkainen/mensa/internal/extract"
	"github.com/lepinkainen/mensa/internal/fetch"
	"github.com/lepinkainen/mensa/internal/location"
	"github.com/lepinkainen/mensa/internal/menu"
	"github.com/lepinkainen/mensa/internal/tui"
)

var (
	newLoader   = defaultLoader
	browseMenus = tui.Browse
	now         = time.Now
)

// CLI represents the complete command structure for the mensa application
type CLI struct {
	Debug     bool   `help:"Enable debug logging"`
	Config    string `help:"Path to config file (defaults to ./config.yaml)" type:"path"`
	Overwrite bool   `help:"Overwrite existing output and image files"`

	Menu      MenuCmd      `cmd:"" default:"withargs" help:"Show the menu of one day (default)"`
	Browse    BrowseCmd    `cmd:"" help:"Browse the menus of the coming week"`
	Locations LocationsCmd `cmd:"" help:"List the known cafeterias"`
}

// Globals are bound into every command's Run method.
type Globals struct {
	Ctx context.Context
	Out io.Writer
}

// MenuCmd represents the menu command
type MenuCmd struct {
	Mensa   []string `short:"m" help:"Cafeterias to include, repeatable or comma separated (defaults to mensa.default)"`
	Price   string   `short:"p" help:"Show a single price tier: student, employee or guest"`
	Days    int      `short:"d" help:"Show the menu this many days ahead" xor:"day"`
	Date    string   `help:"Show the menu of a date (YYYY-MM-DD)" xor:"day"`
	Extras  []string `short:"e" help:"Only show dishes whose extras contain every term"`
	Format  string   `short:"f" help:"Output format" enum:"table,json,yaml,sqlite,datasette" default:"table"`
	Output  string   `short:"o" help:"Write to this file instead of stdout; the database file for sqlite"`
	Images  bool     `help:"Download dish images into images.dir"`
	Browser bool     `help:"Render pages in headless Chrome instead of plain HTTP"`
}

// BrowseCmd represents the interactive browse command
type BrowseCmd struct {
	Mensa   []string `short:"m" help:"Cafeterias to include, repeatable or comma separated (defaults to mensa.default)"`
	Price   string   `short:"p" help:"Show a single price tier: student, employee or guest"`
	Extras  []string `short:"e" help:"Only show dishes whose extras contain every term"`
	Images  bool     `help:"Show dish thumbnails and keep the images in images.dir"`
	Browser bool     `help:"Render pages in headless Chrome instead of plain HTTP"`
}

// LocationsCmd represents the locations command
type LocationsCmd struct{}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("mensa"),
		kong.Description("Shows the daily menus of the Studierendenwerk Paderborn cafeterias in one table."),
		kong.UsageOnError(),
	)

	initLogging(slog.LevelInfo, cli.Debug)
	if err := config.InitConfig(cli.Config); err != nil {
		slog.Error("Fatal error config file", "error", err)
		os.Exit(1)
	}
	initLogging(config.Get().SlogLevel(), cli.Debug)
	updateGlobalConfig(&cli)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := ctx.Run(&Globals{Ctx: sigCtx, Out: os.Stdout}); err != nil {
		slog.Error("Command failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func updateGlobalConfig(cli *CLI) {
	if cli.Overwrite {
		config.SetOverwriteFiles(true)
	}
}

func initLogging(level slog.Level, debug bool) {
	if debug {
		level = slog.LevelDebug
	}
	// stdout carries the menu output
	handler := humanlog.NewHandler(os.Stderr, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func defaultLoader(s config.Settings, browser bool) *daily.Loader {
	var f fetch.Fetcher
	if browser {
		f = fetch.NewBrowserClient(s.BrowserTimeout, s.UserAgent)
	} else {
		f = fetch.NewClient(fetch.WithTimeout(s.HTTPTimeout), fetch.WithUserAgent(s.UserAgent))
	}
	return daily.NewLoader(fetch.NewScheduler(f, extract.HTML{}))
}

func newEnricher(s config.Settings, dir string) *enrich.Enricher {
	return enrich.New(
		enrich.WithDir(dir),
		enrich.WithMaxWidth(s.ImageMaxWidth),
		enrich.WithRate(s.ImageRate),
		enrich.WithOverwrite(config.OverwriteFiles),
	)
}

// selection resolves the location and tier flags shared by menu and browse.
func selection(s config.Settings, ids []string, price string) ([]location.Location, menu.PriceTier, error) {
	if len(ids) == 0 {
		ids = s.DefaultMensen
	}
	locs, err := location.NewCatalog(s.BaseURL).Resolve(ids)
	if err != nil {
		return nil, menu.TierAll, err
	}
	tier, err := menu.ParsePriceTier(price)
	if err != nil {
		return nil, menu.TierAll, err
	}
	return locs, tier, nil
}

// resolveDay turns the day flags into a date. The zero time means today as
// the site defines it.
func resolveDay(days int, date string) (time.Time, error) {
	if date != "" {
		day, err := time.ParseInLocation(fetch.DateLayout, strings.TrimSpace(date), time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", date)
		}
		return day, nil
	}
	if days < 0 {
		return time.Time{}, fmt.Errorf("days ahead must not be negative, got %d", days)
	}
	if days == 0 {
		return time.Time{}, nil
	}
	return daily.Day(now(), days), nil
}

func (b *BrowseCmd) Run(g *Globals) error {
	s := config.Get()
	locs, tier, err := selection(s, b.Mensa, b.Price)
	if err != nil {
		return err
	}

	opts := tui.Options{
		Locations: locs,
		Extras:    b.Extras,
		Tier:      tier,
		Now:       now(),
	}
	if b.Images {
		opts.Images = newEnricher(s, s.ImageDir)
	} else {
		opts.Images = newEnricher(s, "")
	}

	// the TUI owns the terminal
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer slog.SetDefault(prev)

	return browseMenus(g.Ctx, newLoader(s, b.Browser), opts)
}

func (l *LocationsCmd) Run(g *Globals) error {
	s := config.Get()
	for _, loc := range location.NewCatalog(s.BaseURL).All() {
		if _, err := fmt.Fprintf(g.Out, "%-12s %-14s %s\n", loc.ID, loc.Name, loc.URL); err != nil {
			return err
		}
	}
	return nil
}
