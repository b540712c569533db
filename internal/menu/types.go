// Package menu holds the dish model and the cross-location aggregation of
// per-location menus into one deduplicated menu.
package menu

import (
	"fmt"
	"strings"
	"time"

	"github.com/lepinkainen/mensa/internal/location"
)

// Category is the course a dish is served as.
type Category int

const (
	// Main dishes.
	Main Category = iota
	// Side dishes.
	Side
	// Dessert covers desserts and soups.
	Dessert
)

// Categories lists every category in display order.
var Categories = []Category{Main, Side, Dessert}

func (c Category) String() string {
	switch c {
	case Main:
		return "main"
	case Side:
		return "side"
	case Dessert:
		return "dessert"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Title is the German section heading used by renderers.
func (c Category) Title() string {
	switch c {
	case Main:
		return "Hauptgerichte"
	case Side:
		return "Beilagen"
	case Dessert:
		return "Desserts"
	default:
		return c.String()
	}
}

// Prices holds the formatted price per tier. A nil field means the dish is not
// offered at that tier; it is never treated as zero.
type Prices struct {
	Student  *string `json:"student,omitempty" yaml:"student,omitempty"`
	Employee *string `json:"employee,omitempty" yaml:"employee,omitempty"`
	Guest    *string `json:"guest,omitempty" yaml:"guest,omitempty"`
}

// Price returns a pointer to s, for building Prices literals.
func Price(s string) *string {
	return &s
}

// Get returns the price for a single tier and whether it is offered.
func (p Prices) Get(tier PriceTier) (string, bool) {
	var v *string
	switch tier {
	case Student:
		v = p.Student
	case Employee:
		v = p.Employee
	case Guest:
		v = p.Guest
	}
	if v == nil {
		return "", false
	}
	return *v, true
}

// Equal compares all three tiers, including absence.
func (p Prices) Equal(o Prices) bool {
	return equalOptional(p.Student, o.Student) &&
		equalOptional(p.Employee, o.Employee) &&
		equalOptional(p.Guest, o.Guest)
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// RawDish is one dish as reported by a single location's page.
type RawDish struct {
	Name     string
	Prices   Prices
	Extras   []string
	ImageURL string
}

// Courses groups the raw dishes of one page by category.
type Courses struct {
	Main    []RawDish
	Side    []RawDish
	Dessert []RawDish
}

// Of returns the dishes of one category.
func (c Courses) Of(cat Category) []RawDish {
	switch cat {
	case Main:
		return c.Main
	case Side:
		return c.Side
	case Dessert:
		return c.Dessert
	default:
		return nil
	}
}

// Len counts the dishes over all categories.
func (c Courses) Len() int {
	return len(c.Main) + len(c.Side) + len(c.Dessert)
}

// LocationMenu is the outcome of one successful fetch: the courses one
// location serves on the requested day.
type LocationMenu struct {
	Location location.Location
	Courses  Courses
}

// Dish is the deduplicated, cross-location representation of a dish.
type Dish struct {
	Name      string              `json:"name" yaml:"name"`
	Prices    Prices              `json:"prices" yaml:"prices"`
	Extras    []string            `json:"extras" yaml:"extras"`
	Locations []location.Location `json:"locations" yaml:"locations"`
	ImageURL  string              `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

// LocationNames returns the display names of the serving locations.
func (d Dish) LocationNames() []string {
	names := make([]string, len(d.Locations))
	for i, l := range d.Locations {
		names[i] = l.Name
	}
	return names
}

// Menu is the aggregated menu of one day over all requested locations.
type Menu struct {
	Date    time.Time
	Main    []Dish
	Side    []Dish
	Dessert []Dish
}

// Of returns the dishes of one category.
func (m Menu) Of(cat Category) []Dish {
	switch cat {
	case Main:
		return m.Main
	case Side:
		return m.Side
	case Dessert:
		return m.Dessert
	default:
		return nil
	}
}

// Len counts the dishes over all categories.
func (m Menu) Len() int {
	return len(m.Main) + len(m.Side) + len(m.Dessert)
}

// IsEmpty reports whether no category holds a dish.
func (m Menu) IsEmpty() bool {
	return m.Len() == 0
}

func (m *Menu) set(cat Category, dishes []Dish) {
	switch cat {
	case Main:
		m.Main = dishes
	case Side:
		m.Side = dishes
	case Dessert:
		m.Dessert = dishes
	}
}

// PriceTier selects one of the pricing bands. TierAll keeps all three.
type PriceTier int

const (
	TierAll PriceTier = iota
	Student
	Employee
	Guest
)

// Tiers lists the concrete tiers in display order.
var Tiers = []PriceTier{Student, Employee, Guest}

func (t PriceTier) String() string {
	switch t {
	case Student:
		return "student"
	case Employee:
		return "employee"
	case Guest:
		return "guest"
	default:
		return "all"
	}
}

// Label is the German column label for the tier.
func (t PriceTier) Label() string {
	switch t {
	case Student:
		return "Studierende"
	case Employee:
		return "Bedienstete"
	case Guest:
		return "Gäste"
	default:
		return "Preis"
	}
}

// ParsePriceTier accepts English and German tier names. An empty string
// selects TierAll.
func ParsePriceTier(s string) (PriceTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return TierAll, nil
	case "student", "students", "studierende":
		return Student, nil
	case "employee", "employees", "bediensteter", "bedienstete":
		return Employee, nil
	case "guest", "guests", "gast", "gäste", "gaeste":
		return Guest, nil
	default:
		return TierAll, fmt.Errorf("unknown price tier %q (use student, employee or guest)", s)
	}
}
