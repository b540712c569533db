// Package render turns an aggregated menu into table, JSON or YAML output.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/lepinkainen/mensa/internal/menu"
)

// Renderer writes a menu in one output format.
type Renderer interface {
	Render(w io.Writer, m menu.Menu) error
}

// Options are shared by all renderers.
type Options struct {
	// Tier selects a single price column. TierAll shows every tier.
	Tier menu.PriceTier
	// ShowLocations adds the serving locations to each dish.
	ShowLocations bool
}

// Formats lists the names accepted by New.
var Formats = []string{"table", "json", "yaml"}

// New returns the renderer for a format name.
func New(format string, opts Options) (Renderer, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return Table{Options: opts}, nil
	case "json":
		return JSON{Options: opts, Indent: true}, nil
	case "yaml", "yml":
		return YAML{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}
