package menu

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lepinkainen/mensa/internal/errors"
	"github.com/lepinkainen/mensa/internal/location"
)

// Aggregate folds the per-location results of one day into a single menu.
//
// Within a category, raw dishes with identical name, prices (absence included)
// and extras set collapse into one Dish whose location set is the union of
// their locations. The result depends only on the multiset of (dish, location)
// pairs, never on the order of results or entries. Each category is sorted by
// name with a byte-wise comparison.
func Aggregate(date time.Time, results []LocationMenu) Menu {
	m := Menu{Date: date}
	for _, cat := range Categories {
		dishes := []Dish{}
		for _, r := range results {
			for _, raw := range r.Courses.Of(cat) {
				dishes = fold(dishes, raw, r.Location)
			}
		}
		slices.SortStableFunc(dishes, compareDishes)
		m.set(cat, dishes)
	}
	return m
}

// fold returns a new list with raw merged in. acc is never modified.
func fold(acc []Dish, raw RawDish, loc location.Location) []Dish {
	if strings.TrimSpace(raw.Name) == "" {
		return acc
	}
	extras := normalizeExtras(raw.Extras)

	for i, d := range acc {
		if d.Name != raw.Name || !d.Prices.Equal(raw.Prices) || !slices.Equal(d.Extras, extras) {
			continue
		}
		out := slices.Clone(acc)
		out[i] = Dish{
			Name:      d.Name,
			Prices:    d.Prices,
			Extras:    d.Extras,
			Locations: addLocation(d.Locations, loc),
			ImageURL:  pickImage(d.ImageURL, raw.ImageURL),
		}
		return out
	}

	out := make([]Dish, len(acc), len(acc)+1)
	copy(out, acc)
	return append(out, Dish{
		Name:      raw.Name,
		Prices:    clonePrices(raw.Prices),
		Extras:    extras,
		Locations: []location.Location{loc},
		ImageURL:  raw.ImageURL,
	})
}

// normalizeExtras turns the extras labels into a sorted set.
func normalizeExtras(extras []string) []string {
	out := make([]string, 0, len(extras))
	out = append(out, extras...)
	slices.Sort(out)
	return slices.Compact(out)
}

func addLocation(locs []location.Location, loc location.Location) []location.Location {
	for _, l := range locs {
		if l.ID == loc.ID {
			return locs
		}
	}
	out := make([]location.Location, 0, len(locs)+1)
	out = append(out, locs...)
	out = append(out, loc)
	slices.SortFunc(out, compareLocations)
	return out
}

func compareLocations(a, b location.Location) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// pickImage keeps the smallest non-empty URL so merges stay order-independent.
func pickImage(current, candidate string) string {
	switch {
	case current == "":
		return candidate
	case candidate == "":
		return current
	default:
		return min(current, candidate)
	}
}

func clonePrices(p Prices) Prices {
	clone := func(v *string) *string {
		if v == nil {
			return nil
		}
		s := *v
		return &s
	}
	return Prices{Student: clone(p.Student), Employee: clone(p.Employee), Guest: clone(p.Guest)}
}

// compareDishes orders by name; equal names fall back to prices, extras and
// locations so that the order never depends on input order.
func compareDishes(a, b Dish) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	for _, tier := range Tiers {
		if c := compareOptional(a.Prices, b.Prices, tier); c != 0 {
			return c
		}
	}
	if c := slices.Compare(a.Extras, b.Extras); c != 0 {
		return c
	}
	return slices.CompareFunc(a.Locations, b.Locations, compareLocations)
}

func compareOptional(a, b Prices, tier PriceTier) int {
	av, aok := a.Get(tier)
	bv, bok := b.Get(tier)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	default:
		return strings.Compare(av, bv)
	}
}

// SameContent reports whether two dishes are content-equal: same name, same
// prices including absence, same extras set. Locations are not compared.
func SameContent(a, b Dish) bool {
	return a.Name == b.Name &&
		a.Prices.Equal(b.Prices) &&
		slices.Equal(normalizeExtras(a.Extras), normalizeExtras(b.Extras))
}

// Check verifies the aggregated menu invariants: every category sorted by
// name, no two content-equal dishes in a category, and duplicate-free,
// catalog-ordered location sets.
func (m Menu) Check() error {
	for _, cat := range Categories {
		dishes := m.Of(cat)
		for i := range dishes {
			if i > 0 && dishes[i-1].Name > dishes[i].Name {
				return errors.NewInvariantError(cat.String(),
					fmt.Sprintf("%q sorted before %q", dishes[i-1].Name, dishes[i].Name))
			}
			for j := i + 1; j < len(dishes); j++ {
				if SameContent(dishes[i], dishes[j]) {
					return errors.NewInvariantError(cat.String(),
						fmt.Sprintf("duplicate dish %q", dishes[i].Name))
				}
			}
			locs := dishes[i].Locations
			for k := 1; k < len(locs); k++ {
				if compareLocations(locs[k-1], locs[k]) >= 0 {
					return errors.NewInvariantError(cat.String(),
						fmt.Sprintf("location set of %q is not a sorted set", dishes[i].Name))
				}
			}
		}
	}
	return nil
}
