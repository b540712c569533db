// Package location describes the cafeterias the menu can be fetched for.
package location

import (
	"fmt"
	"strings"
)

// DefaultBaseURL is the menu page root of the Studierendenwerk Paderborn.
const DefaultBaseURL = "https://www.studierendenwerk-pb.de/gastronomie/speiseplaene/"

// Location is one cafeteria with its own menu page.
type Location struct {
	// ID is the stable identifier used on the command line and in exports.
	ID string `json:"id" yaml:"id"`
	// Name is the display name.
	Name string `json:"name" yaml:"name"`
	// URL is the menu page the request is sent to.
	URL string `json:"-" yaml:"-"`
	// Order is the position in the catalog; location sets are sorted by it.
	Order int `json:"-" yaml:"-"`
}

func (l Location) String() string {
	return l.Name
}

type descriptor struct {
	id   string
	name string
	slug string
}

var descriptors = []descriptor{
	{id: "forum", name: "Forum", slug: "forum/"},
	{id: "academica", name: "Academica", slug: "mensa-academica/"},
	{id: "picknick", name: "Picknick", slug: "picknick/"},
	{id: "bona-vista", name: "Bona Vista", slug: "bona-vista/"},
	{id: "grill-cafe", name: "Grill | Café", slug: "grillcafe/"},
	{id: "zm2", name: "ZM2", slug: "mensa-zm2/"},
	{id: "basilica", name: "Basilica", slug: "mensa-basilica-hamm/"},
	{id: "atrium", name: "Atrium", slug: "mensa-atrium-lippstadt/"},
}

// Catalog is the closed set of known locations, bound to one base URL.
type Catalog struct {
	locations []Location
	byID      map[string]Location
}

// NewCatalog builds the catalog with every menu URL rooted at baseURL.
// An empty baseURL selects DefaultBaseURL.
func NewCatalog(baseURL string) *Catalog {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	c := &Catalog{
		locations: make([]Location, 0, len(descriptors)),
		byID:      make(map[string]Location, len(descriptors)),
	}
	for i, d := range descriptors {
		loc := Location{ID: d.id, Name: d.name, URL: baseURL + d.slug, Order: i}
		c.locations = append(c.locations, loc)
		c.byID[d.id] = loc
	}
	return c
}

// All returns every location in catalog order.
func (c *Catalog) All() []Location {
	out := make([]Location, len(c.locations))
	copy(out, c.locations)
	return out
}

// Lookup finds a location by ID. Matching ignores case and the separators
// "-", "_" and " ", so "BonaVista" and "bona_vista" both resolve.
func (c *Catalog) Lookup(id string) (Location, bool) {
	loc, ok := c.byID[normalizeID(id)]
	if ok {
		return loc, true
	}
	want := squash(id)
	for _, l := range c.locations {
		if squash(l.ID) == want {
			return l, true
		}
	}
	return Location{}, false
}

// Resolve maps IDs to locations, dropping duplicates and keeping the order of
// first appearance. Unknown IDs are reported together in one error.
func (c *Catalog) Resolve(ids []string) ([]Location, error) {
	var (
		out     []Location
		unknown []string
		seen    = make(map[string]bool)
	)
	for _, raw := range ids {
		for _, id := range strings.Split(raw, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			loc, ok := c.Lookup(id)
			if !ok {
				unknown = append(unknown, id)
				continue
			}
			if seen[loc.ID] {
				continue
			}
			seen[loc.ID] = true
			out = append(out, loc)
		}
	}

	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown location(s) %s (known: %s)",
			strings.Join(unknown, ", "), strings.Join(c.IDs(), ", "))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no location selected")
	}
	return out, nil
}

// IDs returns the identifiers of every location in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.locations))
	for i, l := range c.locations {
		ids[i] = l.ID
	}
	return ids
}

func normalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	id = strings.ReplaceAll(id, "_", "-")
	return strings.ReplaceAll(id, " ", "-")
}

func squash(id string) string {
	return strings.ReplaceAll(normalizeID(id), "-", "")
}
