// Package enrich downloads dish images in the background. It is a best-effort
// side channel: failures are dropped and never affect the menu.
package enrich

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"github.com/lepinkainen/mensa/internal/fileutil"
	"github.com/lepinkainen/mensa/internal/menu"
	"github.com/lepinkainen/mensa/internal/ratelimit"
)

const (
	defaultMaxWidth      = 320
	defaultRatePerSecond = 4
)

// Image is a downloaded dish image.
type Image struct {
	Dish string
	URL  string
	// Path is where the JPEG was stored, empty when not saved to disk.
	Path  string
	Thumb image.Image
}

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Enricher fetches, resizes and optionally stores dish images.
type Enricher struct {
	httpClient HTTPDoer
	limiter    *ratelimit.Limiter
	dir        string
	maxWidth   int
	overwrite  bool
}

// Option is a functional option for configuring the Enricher.
type Option func(*Enricher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(e *Enricher) {
		if c != nil {
			e.httpClient = c
		}
	}
}

// WithDir stores images as JPEG files in dir.
func WithDir(dir string) Option {
	return func(e *Enricher) {
		e.dir = dir
	}
}

// WithMaxWidth bounds the width of stored images.
func WithMaxWidth(w int) Option {
	return func(e *Enricher) {
		if w > 0 {
			e.maxWidth = w
		}
	}
}

// WithRate limits downloads per second. Zero disables limiting.
func WithRate(perSecond int) Option {
	return func(e *Enricher) {
		e.limiter = ratelimit.New("images", perSecond)
	}
}

// WithOverwrite replaces images that already exist on disk.
func WithOverwrite(overwrite bool) Option {
	return func(e *Enricher) {
		e.overwrite = overwrite
	}
}

// New creates an enricher.
func New(opts ...Option) *Enricher {
	e := &Enricher{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    ratelimit.New("images", defaultRatePerSecond),
		maxWidth:   defaultMaxWidth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start downloads the images of all dishes that have one. Each image is
// handled by its own goroutine; the returned channel is closed once all are
// done. Dishes sharing an image URL are downloaded once.
func (e *Enricher) Start(ctx context.Context, dishes []menu.Dish) <-chan Image {
	type job struct{ dish, url string }
	var jobs []job
	seen := make(map[string]bool)
	for _, d := range dishes {
		if d.ImageURL == "" || seen[d.ImageURL] {
			continue
		}
		seen[d.ImageURL] = true
		jobs = append(jobs, job{dish: d.Name, url: d.ImageURL})
	}

	out := make(chan Image, len(jobs))
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			img, err := e.fetch(ctx, j.dish, j.url)
			if err != nil {
				slog.Debug("Dropping dish image", "dish", j.dish, "url", j.url, "error", err)
				return
			}
			out <- img
		}()
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// All returns every dish across the categories of m.
func All(m menu.Menu) []menu.Dish {
	var dishes []menu.Dish
	for _, cat := range menu.Categories {
		dishes = append(dishes, m.Of(cat)...)
	}
	return dishes
}

func (e *Enricher) fetch(ctx context.Context, dish, url string) (Image, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return Image{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Image{}, err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return Image{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Image{}, fmt.Errorf("unexpected status %d downloading image", resp.StatusCode)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return Image{}, fmt.Errorf("failed to decode image: %w", err)
	}
	if img.Bounds().Dx() > e.maxWidth {
		img = imaging.Resize(img, e.maxWidth, 0, imaging.Lanczos)
	}

	result := Image{Dish: dish, URL: url, Thumb: img}
	if e.dir == "" {
		return result, nil
	}

	path := fileutil.ImagePath(e.dir, dish)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return Image{}, fmt.Errorf("failed to encode image: %w", err)
	}
	written, err := fileutil.WriteFileWithOverwrite(path, buf.Bytes(), 0644, e.overwrite)
	if err != nil {
		return Image{}, fmt.Errorf("failed to save image: %w", err)
	}
	if written {
		slog.Debug("Saved dish image", "dish", dish, "path", path)
	}
	result.Path = path
	return result, nil
}
