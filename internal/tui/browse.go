// Package tui provides the interactive menu browser.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/mensa/internal/daily"
	"github.com/lepinkainen/mensa/internal/enrich"
	"github.com/lepinkainen/mensa/internal/location"
	"github.com/lepinkainen/mensa/internal/menu"
)

const (
	// Days is the number of day tabs, starting with today.
	Days = 7

	defaultWidth  = 100
	defaultHeight = 30
	thumbWidth    = 24
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}

// Loader loads the menu of one day.
type Loader interface {
	Load(ctx context.Context, req daily.Request) (menu.Menu, error)
}

// ImageSource delivers dish images in the background.
type ImageSource interface {
	Start(ctx context.Context, dishes []menu.Dish) <-chan enrich.Image
}

// Options configure the browser.
type Options struct {
	Locations []location.Location
	Extras    []string
	Tier      menu.PriceTier
	// Images is optional; nil disables thumbnails.
	Images ImageSource
	// Now anchors the day tabs; zero means time.Now.
	Now time.Time
}

type tab struct {
	title  string
	day    time.Time
	menu   menu.Menu
	loaded bool
	err    error
}

type rowRef struct {
	category menu.Category
	dish     menu.Dish
}

type menuLoadedMsg struct {
	index int
	menu  menu.Menu
	err   error
}

type imageMsg struct {
	image enrich.Image
	next  <-chan enrich.Image
}

type model struct {
	ctx     context.Context
	loader  Loader
	opts    Options
	tabs    []tab
	active  int
	spinner spinner.Model
	table   table.Model
	rows    []rowRef
	thumbs  map[string]string
	width   int
	height  int
}

// TabTitles returns the tab labels for the days starting at now.
func TabTitles(now time.Time) []string {
	titles := make([]string, Days)
	for i := range titles {
		switch i {
		case 0:
			titles[i] = "Heute"
		case 1:
			titles[i] = "Morgen"
		default:
			titles[i] = weekday(daily.Day(now, i).Weekday())
		}
	}
	return titles
}

func weekday(d time.Weekday) string {
	return [...]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"}[d]
}

func newModel(ctx context.Context, loader Loader, opts Options) *model {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	titles := TabTitles(now)
	tabs := make([]tab, Days)
	for i := range tabs {
		tabs[i] = tab{title: titles[i], day: daily.Day(now, i)}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("62")).
		Bold(false)

	t := table.New(
		table.WithColumns(columns(defaultWidth, opts.Tier)),
		table.WithFocused(true),
		table.WithHeight(tableHeight(defaultHeight)),
		table.WithStyles(styles),
	)

	return &model{
		ctx:     ctx,
		loader:  loader,
		opts:    opts,
		tabs:    tabs,
		spinner: s,
		table:   t,
		thumbs:  make(map[string]string),
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	for i := range m.tabs {
		cmds = append(cmds, m.load(i))
	}
	return tea.Batch(cmds...)
}

func (m *model) load(index int) tea.Cmd {
	req := daily.Request{
		Locations: m.opts.Locations,
		Extras:    m.opts.Extras,
	}
	// today is left to the site
	if index > 0 {
		req.Date = m.tabs[index].day
	}
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		mn, err := loader.Load(ctx, req)
		return menuLoadedMsg{index: index, menu: mn, err: err}
	}
}

func waitForImage(ch <-chan enrich.Image) tea.Cmd {
	return func() tea.Msg {
		img, ok := <-ch
		if !ok {
			return nil
		}
		return imageMsg{image: img, next: ch}
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "left", "h":
			m.selectTab((m.active + Days - 1) % Days)
			return m, nil
		case "right", "l", "tab":
			m.selectTab((m.active + 1) % Days)
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetColumns(columns(m.width, m.opts.Tier))
		m.table.SetHeight(tableHeight(m.height))
		return m, nil
	case spinner.TickMsg:
		if m.loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case menuLoadedMsg:
		t := &m.tabs[msg.index]
		t.menu, t.err, t.loaded = msg.menu, msg.err, true
		if msg.index == m.active {
			m.refreshRows()
		}
		if msg.err == nil && m.opts.Images != nil {
			ch := m.opts.Images.Start(m.ctx, enrich.All(msg.menu))
			return m, waitForImage(ch)
		}
		return m, nil
	case imageMsg:
		if msg.image.Thumb != nil {
			m.thumbs[msg.image.URL] = thumbnail(msg.image.Thumb, thumbWidth)
		}
		return m, waitForImage(msg.next)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *model) loading() bool {
	for _, t := range m.tabs {
		if !t.loaded {
			return true
		}
	}
	return false
}

func (m *model) selectTab(i int) {
	m.active = i
	m.refreshRows()
}

func (m *model) refreshRows() {
	t := m.tabs[m.active]
	m.rows = m.rows[:0]
	rows := make([]table.Row, 0, t.menu.Len())
	for _, cat := range menu.Categories {
		for _, d := range t.menu.Of(cat) {
			m.rows = append(m.rows, rowRef{category: cat, dish: d})
			rows = append(rows, table.Row{
				cat.Title(),
				d.Name,
				priceCell(d.Prices, m.opts.Tier),
				strings.Join(d.LocationNames(), ", "),
			})
		}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m *model) selected() (rowRef, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return rowRef{}, false
	}
	return m.rows[i], true
}

func (m *model) View() string {
	parts := []string{m.tabsView()}

	t := m.tabs[m.active]
	switch {
	case !t.loaded:
		parts = append(parts, fmt.Sprintf("%s Lade Speiseplan für %s …", m.spinner.View(), t.day.Format("02.01.2006")))
	case t.err != nil:
		parts = append(parts, errorStyle.Render("Fehler: "+t.err.Error()))
	case t.menu.IsEmpty():
		parts = append(parts, mutedStyle.Render("keine Daten"))
	default:
		parts = append(parts, m.table.View(), m.detailsView())
	}

	parts = append(parts, helpStyle.Render("←/→ Tag wechseln | ↑/↓ Gericht wählen | q beenden"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *model) tabsView() string {
	rendered := make([]string, len(m.tabs))
	for i, t := range m.tabs {
		style := tabStyle
		if i == m.active {
			style = activeTabStyle
		}
		rendered[i] = style.Render(t.title)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *model) detailsView() string {
	ref, ok := m.selected()
	if !ok {
		return ""
	}
	d := ref.dish

	lines := []string{
		titleStyle.Render(d.Name),
		mutedStyle.Render(ref.category.Title()),
	}
	for _, pc := range menu.ProjectPrices(d.Prices, menu.TierAll) {
		v := pc.Value
		if v == "" {
			v = menu.NotOffered
		}
		lines = append(lines, fmt.Sprintf("%-18s %s", pc.Label+":", v))
	}
	if len(d.Extras) > 0 {
		lines = append(lines, "Extras: "+strings.Join(d.Extras, ", "))
	}
	lines = append(lines, "Mensa:  "+strings.Join(d.LocationNames(), ", "))

	text := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if thumb, ok := m.thumbs[d.ImageURL]; ok && d.ImageURL != "" {
		text = lipgloss.JoinHorizontal(lipgloss.Top, thumb, "  ", text)
	}
	return detailsStyle.Render(text)
}

func priceCell(p menu.Prices, tier menu.PriceTier) string {
	cols := menu.ProjectPrices(p, tier)
	values := make([]string, len(cols))
	for i, c := range cols {
		values[i] = c.Value
		if values[i] == "" {
			values[i] = menu.NotOffered
		}
	}
	return strings.Join(values, " / ")
}

func columns(width int, tier menu.PriceTier) []table.Column {
	price := 8
	if tier == menu.TierAll {
		price = 22
	}
	name := max(width-14-price-24-10, 20)
	return []table.Column{
		{Title: "Kategorie", Width: 14},
		{Title: "Gericht", Width: name},
		{Title: "Preis", Width: price},
		{Title: "Mensa", Width: 24},
	}
}

func tableHeight(height int) int {
	return max(height-16, 5)
}

// Browse runs the interactive browser until the user quits.
func Browse(ctx context.Context, loader Loader, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if _, err := runProgram(newModel(ctx, loader, opts)); err != nil {
		return fmt.Errorf("menu browser failed: %w", err)
	}
	return nil
}

var (
	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("247"))

	activeTabStyle = tabStyle.Copy().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("161"))

	detailsStyle = lipgloss.NewStyle().
			MarginTop(1).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)
