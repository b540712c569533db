package render

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/mensa/internal/menu"
)

// Document is the serialized form of a menu.
type Document struct {
	Date    string         `json:"date,omitempty" yaml:"date,omitempty"`
	Main    []DishDocument `json:"main" yaml:"main"`
	Side    []DishDocument `json:"side" yaml:"side"`
	Dessert []DishDocument `json:"dessert" yaml:"dessert"`
}

// DishDocument is the serialized form of a dish. Either Prices or Price is
// set, depending on the selected tier.
type DishDocument struct {
	Name      string       `json:"name" yaml:"name"`
	Prices    *menu.Prices `json:"prices,omitempty" yaml:"prices,omitempty"`
	Price     string       `json:"price,omitempty" yaml:"price,omitempty"`
	Extras    []string     `json:"extras" yaml:"extras"`
	Locations []string     `json:"locations,omitempty" yaml:"locations,omitempty"`
	Image     string       `json:"image,omitempty" yaml:"image,omitempty"`
}

// NewDocument projects a menu for serialization.
func NewDocument(m menu.Menu, opts Options) Document {
	doc := Document{
		Main:    dishDocuments(m.Main, opts),
		Side:    dishDocuments(m.Side, opts),
		Dessert: dishDocuments(m.Dessert, opts),
	}
	if !m.Date.IsZero() {
		doc.Date = m.Date.Format("2006-01-02")
	}
	return doc
}

func dishDocuments(dishes []menu.Dish, opts Options) []DishDocument {
	out := make([]DishDocument, 0, len(dishes))
	for _, d := range dishes {
		dd := DishDocument{
			Name:   d.Name,
			Extras: d.Extras,
			Image:  d.ImageURL,
		}
		if dd.Extras == nil {
			dd.Extras = []string{}
		}
		if opts.Tier == menu.TierAll {
			prices := d.Prices
			dd.Prices = &prices
		} else {
			dd.Price = menu.ProjectPrices(d.Prices, opts.Tier)[0].Value
		}
		if opts.ShowLocations {
			dd.Locations = d.LocationNames()
		}
		out = append(out, dd)
	}
	return out
}

// JSON renders the menu as a JSON document.
type JSON struct {
	Options
	Indent bool
}

// Render writes the JSON document followed by a newline.
func (j JSON) Render(w io.Writer, m menu.Menu) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(NewDocument(m, j.Options))
}

// YAML renders the menu as a YAML document.
type YAML struct {
	Options
}

// Render writes the YAML document.
func (y YAML) Render(w io.Writer, m menu.Menu) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(m, y.Options)); err != nil {
		return err
	}
	return enc.Close()
}
