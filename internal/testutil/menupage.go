package testutil

import (
	"bytes"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/png"
	"strings"
)

// Dish describes one dish row of a fixture menu page. Empty prices are left
// out of the page.
type Dish struct {
	Name     string
	Student  string
	Employee string
	Guest    string
	Extras   []string
	Image    string
}

// Page is a fixture menu page in the layout of the Studierendenwerk site.
type Page struct {
	Main    []Dish
	Side    []Dish
	Dessert []Dish
}

// HTML renders the page.
func (p Page) HTML() string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Speiseplan</title></head><body>\n")
	writeTable(&sb, "main-dishes", p.Main)
	writeTable(&sb, "side-dishes", p.Side)
	writeTable(&sb, "soups", p.Dessert)
	sb.WriteString("</body></html>\n")
	return sb.String()
}

func writeTable(sb *strings.Builder, class string, dishes []Dish) {
	fmt.Fprintf(sb, "<table class=\"table table-dishes %s\"><tbody>\n", class)
	for _, d := range dishes {
		sb.WriteString("<tr class=\"odd\"><td class=\"description\"><div class=\"row\">\n<div class=\"desc\">\n")
		if d.Name != "" {
			fmt.Fprintf(sb, "<h4>\n  %s\n</h4>\n", html.EscapeString(d.Name))
		}
		writePrice(sb, "Studierende", d.Student)
		writePrice(sb, "Bedienstete", d.Employee)
		writePrice(sb, "Gäste", d.Guest)
		sb.WriteString("<div class=\"buttons\">")
		for _, e := range d.Extras {
			fmt.Fprintf(sb, "<a class=\"btn\" title=\"%s\"></a>", html.EscapeString(e))
		}
		sb.WriteString("</div>\n</div>\n")
		if d.Image != "" {
			fmt.Fprintf(sb, "<div class=\"img\"><img src=\"%s\" alt=\"\"></div>\n", html.EscapeString(d.Image))
		}
		sb.WriteString("</div></td></tr>\n")
		// detail rows carry allergen text and are not dishes
		sb.WriteString("<tr class=\"even\"><td class=\"description\"><div class=\"row\"><div class=\"desc\"><h4>Allergene</h4></div></div></td></tr>\n")
	}
	sb.WriteString("</tbody></table>\n")
}

func writePrice(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "<div class=\"price\"><strong>%s:</strong> %s</div>\n", label, html.EscapeString(value))
}

// PNG returns an encoded solid-colour PNG of the given size.
func PNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: 120, B: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
