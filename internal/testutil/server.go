package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/lepinkainen/mensa/internal/location"
)

// DateParam is the query parameter the menu site reads the day from.
const DateParam = "tx_pamensa_mensa[date]"

// Request is one request observed by a MenuServer.
type Request struct {
	Method string
	Path   string
	Date   string
}

// MenuServer is a fake menu site serving fixture pages per location and
// PNG images under /img/.
type MenuServer struct {
	*httptest.Server

	catalog *location.Catalog

	mu       sync.Mutex
	pages    map[string]Page
	failures map[string]int
	requests []Request
}

// NewMenuServer starts a fake menu site that is closed with the test.
func NewMenuServer(t *testing.T) *MenuServer {
	t.Helper()

	s := &MenuServer{
		pages:    make(map[string]Page),
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	s.catalog = location.NewCatalog(s.URL + "/")
	t.Cleanup(s.Close)
	return s
}

// Catalog returns a location catalog pointing at this server.
func (s *MenuServer) Catalog() *location.Catalog {
	return s.catalog
}

// SetPage serves page for the location with the given ID.
func (s *MenuServer) SetPage(id string, page Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[s.path(id)] = page
}

// Fail makes requests for the location answer with status.
func (s *MenuServer) Fail(id string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[s.path(id)] = status
}

// Requests returns the menu page requests seen so far.
func (s *MenuServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *MenuServer) path(id string) string {
	loc, ok := s.catalog.Lookup(id)
	if !ok {
		panic("testutil: unknown location " + id)
	}
	return strings.TrimPrefix(loc.URL, s.URL)
}

func (s *MenuServer) handle(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/img/") {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(PNG(64, 48))
		return
	}

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Date:   r.URL.Query().Get(DateParam),
	})
	status, failing := s.failures[r.URL.Path]
	page, ok := s.pages[r.URL.Path]
	s.mu.Unlock()

	switch {
	case failing:
		w.WriteHeader(status)
	case !ok:
		http.NotFound(w, r)
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page.HTML()))
	}
}
