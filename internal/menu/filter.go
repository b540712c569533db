package menu

import (
	"strings"
)

// NotOffered is shown for a tier the dish is not sold at.
const NotOffered = "-"

// FilterExtras keeps the dishes that match every term. A term matches when at
// least one extras label contains it, ignoring case. No terms keeps all.
func FilterExtras(m Menu, terms []string) Menu {
	terms = cleanTerms(terms)
	if len(terms) == 0 {
		return m
	}

	out := Menu{Date: m.Date}
	for _, cat := range Categories {
		kept := []Dish{}
		for _, d := range m.Of(cat) {
			if MatchesExtras(d.Extras, terms) {
				kept = append(kept, d)
			}
		}
		out.set(cat, kept)
	}
	return out
}

// MatchesExtras applies the extras filter to one set of labels.
func MatchesExtras(extras, terms []string) bool {
	for _, term := range terms {
		needle := strings.ToLower(term)
		found := false
		for _, label := range extras {
			if strings.Contains(strings.ToLower(label), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func cleanTerms(terms []string) []string {
	var out []string
	for _, t := range terms {
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// PriceColumn is one price cell of a projected dish.
type PriceColumn struct {
	Tier  PriceTier
	Label string
	Value string
}

// ProjectPrices reduces the prices to the view a renderer shows. TierAll
// yields the three tiers with empty values where not offered; a single tier
// yields one column holding its value or NotOffered.
func ProjectPrices(p Prices, tier PriceTier) []PriceColumn {
	if tier == TierAll {
		cols := make([]PriceColumn, 0, len(Tiers))
		for _, t := range Tiers {
			v, _ := p.Get(t)
			cols = append(cols, PriceColumn{Tier: t, Label: "Preis " + t.Label(), Value: v})
		}
		return cols
	}

	v, ok := p.Get(tier)
	if !ok {
		v = NotOffered
	}
	return []PriceColumn{{Tier: tier, Label: "Preis", Value: v}}
}
