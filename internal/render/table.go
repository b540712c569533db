package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/mensa/internal/menu"
)

// NoData is printed for a category without dishes.
const NoData = "keine Daten"

var (
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.Color("214"))

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	emptyStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(1)
)

// Table renders one table per category.
type Table struct {
	Options
}

// Render writes the menu as text tables.
func (t Table) Render(w io.Writer, m menu.Menu) error {
	var blocks []string
	if !m.Date.IsZero() {
		blocks = append(blocks, dateStyle.Render(m.Date.Format("Monday, 02.01.2006")))
	}

	for _, cat := range menu.Categories {
		blocks = append(blocks, sectionStyle.Render(cat.Title()))
		dishes := m.Of(cat)
		if len(dishes) == 0 {
			blocks = append(blocks, emptyStyle.Render(NoData), "")
			continue
		}
		blocks = append(blocks, t.table(dishes), "")
	}

	_, err := fmt.Fprintln(w, strings.TrimRight(lipgloss.JoinVertical(lipgloss.Left, blocks...), "\n "))
	return err
}

// Columns returns the column titles for the options.
func (t Table) Columns() []string {
	cols := []string{"Gericht"}
	for _, pc := range menu.ProjectPrices(menu.Prices{}, t.Tier) {
		cols = append(cols, pc.Label)
	}
	if t.ShowLocations {
		cols = append(cols, "Mensa")
	}
	return append(cols, "Extras")
}

// Row returns the cells of one dish.
func (t Table) Row(d menu.Dish) []string {
	row := []string{d.Name}
	for _, pc := range menu.ProjectPrices(d.Prices, t.Tier) {
		row = append(row, pc.Value)
	}
	if t.ShowLocations {
		row = append(row, strings.Join(d.LocationNames(), ", "))
	}
	return append(row, strings.Join(d.Extras, ", "))
}

func (t Table) table(dishes []menu.Dish) string {
	titles := t.Columns()
	widths := make([]int, len(titles))
	for i, title := range titles {
		widths[i] = lipgloss.Width(title)
	}

	rows := make([]table.Row, 0, len(dishes))
	for _, d := range dishes {
		row := t.Row(d)
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
		rows = append(rows, row)
	}

	columns := make([]table.Column, len(titles))
	for i, title := range titles {
		columns[i] = table.Column{Title: title, Width: widths[i]}
	}

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true)
	styles.Selected = lipgloss.NewStyle()

	tbl := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)),
		table.WithFocused(false),
		table.WithStyles(styles),
	)
	return tbl.View()
}
