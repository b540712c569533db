// Package extract turns a Studierendenwerk menu page into raw dish entries.
package extract

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lepinkainen/mensa/internal/menu"
)

const rowSelector = "table.table-dishes.%s > tbody > tr.odd > td.description > div.row"

// tableClasses maps each category to the class of its dish table.
var tableClasses = map[menu.Category]string{
	menu.Main:    "main-dishes",
	menu.Side:    "side-dishes",
	menu.Dessert: "soups",
}

// tierLabels maps price labels to tiers. The site has been seen serving the
// guest label with a mis-decoded umlaut.
var tierLabels = map[string]menu.PriceTier{
	"Studierende": menu.Student,
	"Bedienstete": menu.Employee,
	"Gäste":       menu.Guest,
	"GÃ¤ste":      menu.Guest,
}

// Error represents a page that could not be parsed.
type Error struct {
	URL   string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTML extracts dishes from the HTML menu page layout.
type HTML struct{}

// Extract parses one page. pageURL is used to resolve relative image links.
func (HTML) Extract(r io.Reader, pageURL string) (menu.Courses, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return menu.Courses{}, &Error{URL: pageURL, Cause: err}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	var courses menu.Courses
	dropped := 0
	for _, cat := range menu.Categories {
		var dishes []menu.RawDish
		doc.Find(fmt.Sprintf(rowSelector, tableClasses[cat])).Each(func(_ int, row *goquery.Selection) {
			dish, ok := parseRow(row, base)
			if !ok {
				dropped++
				return
			}
			dishes = append(dishes, dish)
		})
		switch cat {
		case menu.Main:
			courses.Main = dishes
		case menu.Side:
			courses.Side = dishes
		case menu.Dessert:
			courses.Dessert = dishes
		}
	}

	if dropped > 0 {
		slog.Debug("Dropped dish rows without a name", "url", pageURL, "count", dropped)
	}
	return courses, nil
}

func parseRow(row *goquery.Selection, base *url.URL) (menu.RawDish, bool) {
	name := strings.TrimSpace(row.Find("div.desc h4").First().Text())
	if name == "" {
		return menu.RawDish{}, false
	}

	dish := menu.RawDish{
		Name:   name,
		Extras: []string{},
	}

	row.Find(".price").Each(func(_ int, s *goquery.Selection) {
		label, value, ok := parsePrice(s)
		if !ok {
			return
		}
		tier, known := tierLabels[label]
		if !known {
			slog.Debug("Unknown price label", "dish", name, "label", label)
			return
		}
		setPrice(&dish.Prices, tier, value)
	})

	row.Find(".buttons > *").Each(func(_ int, s *goquery.Selection) {
		if title, ok := s.Attr("title"); ok {
			dish.Extras = append(dish.Extras, title)
		}
	})

	if src, ok := row.Find("img[src]").First().Attr("src"); ok {
		dish.ImageURL = resolve(base, src)
	}

	return dish, true
}

// parsePrice splits a price element into its strong label and the text after it.
func parsePrice(s *goquery.Selection) (label, value string, ok bool) {
	strong := s.Find("strong").First()
	if strong.Length() == 0 {
		return "", "", false
	}
	label = strings.TrimSuffix(strings.TrimSpace(strong.Text()), ":")
	value = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s.Text()), strings.TrimSpace(strong.Text())))
	return strings.TrimSpace(label), value, true
}

func setPrice(p *menu.Prices, tier menu.PriceTier, value string) {
	// first occurrence wins
	switch tier {
	case menu.Student:
		if p.Student == nil {
			p.Student = menu.Price(value)
		}
	case menu.Employee:
		if p.Employee == nil {
			p.Employee = menu.Price(value)
		}
	case menu.Guest:
		if p.Guest == nil {
			p.Guest = menu.Price(value)
		}
	}
}

func resolve(base *url.URL, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
