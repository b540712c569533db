package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/mensa/internal/extract"
	"github.com/lepinkainen/mensa/internal/location"
	"github.com/lepinkainen/mensa/internal/menu"
	"github.com/lepinkainen/mensa/internal/testutil"
)

// fakeFetcher serves page bodies keyed by location ID and fails for the rest.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	calls map[string]int
	block chan struct{}
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, calls: make(map[string]int)}
}

func (f *fakeFetcher) Fetch(ctx context.Context, loc location.Location, _ time.Time) (io.ReadCloser, error) {
	f.mu.Lock()
	f.calls[loc.ID]++
	page, ok := f.pages[loc.ID]
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, fmt.Errorf("no page for %s", loc.ID)
	}
	return io.NopCloser(strings.NewReader(page)), nil
}

// lineExtractor reads one main dish name per line.
type lineExtractor struct{}

func (lineExtractor) Extract(r io.Reader, _ string) (menu.Courses, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return menu.Courses{}, err
	}
	if string(data) == "broken" {
		return menu.Courses{}, errors.New("unparseable page")
	}
	var c menu.Courses
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		c.Main = append(c.Main, menu.RawDish{Name: line})
	}
	return c, nil
}

func locations(t *testing.T, ids ...string) []location.Location {
	t.Helper()
	locs, err := location.NewCatalog("").Resolve(ids)
	require.NoError(t, err)
	return locs
}

func resultIDs(results []menu.LocationMenu) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Location.ID
	}
	return ids
}

func TestFetchAllPartialFailure(t *testing.T) {
	f := newFakeFetcher(map[string]string{
		"forum":     "Linseneintopf",
		"picknick":  "broken",
		"academica": "Linseneintopf\nFalafel",
	})
	s := NewScheduler(f, lineExtractor{})

	results := s.FetchAll(context.Background(), locations(t, "forum", "zm2", "picknick", "academica"), day)

	assert.Equal(t, []string{"forum", "academica"}, resultIDs(results))
	assert.Equal(t, 2, results[1].Courses.Len())
}

func TestFetchAllEverythingFails(t *testing.T) {
	s := NewScheduler(newFakeFetcher(nil), lineExtractor{})

	results := s.FetchAll(context.Background(), locations(t, "forum", "academica", "zm2"), day)
	assert.Empty(t, results)

	m := menu.Aggregate(day, results)
	require.NoError(t, m.Check())
	assert.True(t, m.IsEmpty())
}

func TestFetchAllCollapsesDuplicates(t *testing.T) {
	f := newFakeFetcher(map[string]string{"forum": "Reis"})
	s := NewScheduler(f, lineExtractor{})
	forum := locations(t, "forum")[0]

	results := s.FetchAll(context.Background(), []location.Location{forum, forum, forum}, day)

	assert.Len(t, results, 1)
	assert.Equal(t, 1, f.calls["forum"])
}

func TestFetchAllRunsConcurrently(t *testing.T) {
	f := newFakeFetcher(map[string]string{"forum": "A", "academica": "B", "zm2": "C"})
	f.block = make(chan struct{})
	s := NewScheduler(f, lineExtractor{})

	done := make(chan []menu.LocationMenu)
	go func() {
		done <- s.FetchAll(context.Background(), locations(t, "forum", "academica", "zm2"), day)
	}()

	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.calls) == 3
	}, 2*time.Second, 5*time.Millisecond, "all requests are in flight at once")

	close(f.block)
	assert.Len(t, <-done, 3)
}

func TestFetchAllCancelled(t *testing.T) {
	f := newFakeFetcher(map[string]string{"forum": "A", "academica": "B"})
	f.block = make(chan struct{})
	s := NewScheduler(f, lineExtractor{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan []menu.LocationMenu)
	go func() {
		done <- s.FetchAll(ctx, locations(t, "forum", "academica"), day)
	}()

	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.calls) == 2
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case results := <-done:
		assert.Empty(t, results)
	case <-time.After(2 * time.Second):
		t.Fatal("FetchAll did not return after cancellation")
	}
}

func TestFetchAllAlreadyCancelled(t *testing.T) {
	f := newFakeFetcher(map[string]string{"forum": "A"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewScheduler(f, lineExtractor{}).FetchAll(ctx, locations(t, "forum"), day)
	assert.Empty(t, results)
	assert.Zero(t, f.calls["forum"])
}

func TestFetchAllAgainstMenuSite(t *testing.T) {
	srv := testutil.NewMenuServer(t)
	stew := testutil.Dish{Name: "Linseneintopf", Student: "2,20€", Employee: "3,10€", Guest: "4,00€"}
	srv.SetPage("forum", testutil.Page{Main: []testutil.Dish{stew}})
	srv.SetPage("academica", testutil.Page{Main: []testutil.Dish{stew, {Name: "Falafel", Student: "3,20€"}}})
	srv.Fail("zm2", http.StatusInternalServerError)

	locs, err := srv.Catalog().Resolve([]string{"forum", "academica", "zm2"})
	require.NoError(t, err)

	s := NewScheduler(NewClient(WithHTTPClient(srv.Client())), extract.HTML{})
	results := s.FetchAll(context.Background(), locs, day)
	require.Len(t, results, 2)

	m := menu.Aggregate(day, results)
	require.NoError(t, m.Check())
	require.Len(t, m.Main, 2)
	assert.Equal(t, "Falafel", m.Main[0].Name)
	assert.Equal(t, "Linseneintopf", m.Main[1].Name)
	assert.Equal(t, []string{"Forum", "Academica"}, m.Main[1].LocationNames())

	for _, r := range srv.Requests() {
		assert.Equal(t, "2024-05-13", r.Date)
	}
}
