package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qamarabbas408/booknstay/internal/api"
	"github.com/qamarabbas408/booknstay/internal/browser"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

type eventsLoadedMsg struct {
	page domain.Page[domain.Event]
	err  error
}

type categoriesLoadedMsg struct {
	categories []domain.Category
	err        error
}

type eventsModel struct {
	api           *api.API
	webURL        string
	events        []domain.Event
	meta          domain.PageMeta
	filter        domain.EventFilter
	categories    []domain.Category
	categoryIdx   int // 0 = all, else categories[categoryIdx-1]
	cursor        int
	searching     bool
	search        string
	detail        bool
	loading       bool
	err           string
	authenticated bool
	width         int
	height        int
}

func newEventsModel(a *api.API, webURL string) eventsModel {
	return eventsModel{api: a, webURL: strings.TrimRight(webURL, "/"), loading: true}
}

func (m eventsModel) Init() tea.Cmd {
	return tea.Batch(m.load(), m.loadCategories())
}

func (m eventsModel) load() tea.Cmd {
	a := m.api
	filter := m.filter
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		page, err := a.Events(ctx, filter)
		return eventsLoadedMsg{page: page, err: err}
	}
}

func (m eventsModel) loadCategories() tea.Cmd {
	a := m.api
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		cats, err := a.EventCategories(ctx)
		return categoriesLoadedMsg{categories: cats, err: err}
	}
}

func (m eventsModel) Update(msg tea.Msg) (eventsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case eventsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.err = ""
		m.events = msg.page.Data
		m.meta = msg.page.Meta
		if m.cursor >= len(m.events) {
			m.cursor = 0
		}

	case categoriesLoadedMsg:
		if msg.err == nil {
			m.categories = msg.categories
		}

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.detail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m eventsModel) updateSearch(msg tea.KeyMsg) (eventsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search = m.filter.Search
	case "enter":
		m.searching = false
		m.filter.Search = strings.TrimSpace(m.search)
		m.filter.Page = 0
		m.cursor = 0
		m.loading = true
		return m, m.load()
	default:
		m.search = editRune(m.search, msg.String())
	}
	return m, nil
}

func (m eventsModel) updateList(msg tea.KeyMsg) (eventsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.cursor = moveCursor(m.cursor, 1, len(m.events))
	case "k", "up":
		m.cursor = moveCursor(m.cursor, -1, len(m.events))
	case "/":
		m.searching = true
		m.search = m.filter.Search
	case "c":
		m.categoryIdx = (m.categoryIdx + 1) % (len(m.categories) + 1)
		m.filter.Category = 0
		if m.categoryIdx > 0 {
			m.filter.Category = m.categories[m.categoryIdx-1].ID
		}
		m.filter.Page = 0
		m.cursor = 0
		m.loading = true
		return m, m.load()
	case "enter":
		if _, ok := m.selected(); ok {
			m.detail = true
		}
	case "r":
		m.loading = true
		return m, m.load()
	case "n":
		if m.meta.CurrentPage < m.meta.LastPage {
			m.filter.Page = m.meta.CurrentPage + 1
			m.loading = true
			return m, m.load()
		}
	case "p":
		if m.meta.CurrentPage > 1 {
			m.filter.Page = m.meta.CurrentPage - 1
			m.loading = true
			return m, m.load()
		}
	case "o":
		if e, ok := m.selected(); ok {
			return m, openURL(browser.PageURL(m.webURL, "events", e.ID))
		}
	case "b":
		if e, ok := m.selected(); ok {
			return m, m.book(e)
		}
	}
	return m, nil
}

func (m eventsModel) updateDetail(msg tea.KeyMsg) (eventsModel, tea.Cmd) {
	e, ok := m.selected()
	switch msg.String() {
	case "esc":
		m.detail = false
	case "o":
		if ok {
			return m, openURL(browser.PageURL(m.webURL, "events", e.ID))
		}
	case "b":
		if ok {
			return m, m.book(e)
		}
	}
	return m, nil
}

// book buys one ticket.
func (m eventsModel) book(e domain.Event) tea.Cmd {
	if !m.authenticated {
		return func() tea.Msg { return requireLoginMsg{reason: "sign in to book " + e.Title} }
	}
	if e.SeatsLeft() == 0 {
		return func() tea.Msg {
			return bookedMsg{err: fmt.Errorf("%s is sold out", e.Title)}
		}
	}
	a := m.api
	in := domain.BookingInput{Kind: domain.BookingEvent, EventID: e.ID, Tickets: 1}
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		b, err := a.CreateBooking(ctx, in)
		if err == nil && b.Event == nil {
			b.Event = &e
		}
		return bookedMsg{booking: b, err: err}
	}
}

func (m eventsModel) selected() (domain.Event, bool) {
	if m.cursor < 0 || m.cursor >= len(m.events) {
		return domain.Event{}, false
	}
	return m.events[m.cursor], true
}

func (m eventsModel) categoryName() string {
	if m.categoryIdx == 0 || m.categoryIdx > len(m.categories) {
		return "all"
	}
	return m.categories[m.categoryIdx-1].Name
}

func (m eventsModel) View() string {
	if m.detail {
		return m.viewDetail()
	}
	var b strings.Builder
	b.WriteString("\n")
	if m.searching {
		b.WriteString("  " + searchStyle.Render("/ ") + normalStyle.Render(m.search) + accentStyle.Render("█") + "\n")
	} else if m.filter.Search != "" {
		b.WriteString("  " + dimStyle.Render("search: ") + normalStyle.Render(m.filter.Search) + "\n")
	}
	b.WriteString("  " + dimStyle.Render("category: ") + accentStyle.Render(m.categoryName()) + "\n\n")

	if m.loading && len(m.events) == 0 {
		b.WriteString("  " + dimStyle.Render("loading events...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
	}
	if len(m.events) == 0 && m.err == "" {
		b.WriteString("  " + dimStyle.Render("no events found") + "\n")
		return b.String()
	}
	titleWidth := max(m.width-52, 16)
	for i, e := range m.events {
		seats := "open"
		if left := e.SeatsLeft(); left == 0 {
			seats = "sold out"
		} else if left > 0 {
			seats = fmt.Sprintf("%d left", left)
		}
		line := fmt.Sprintf("%s  %s  %s  %s",
			padRight(truncStr(e.Title, titleWidth), titleWidth),
			padRight(e.StartsAt.Format("02 Jan 15:04"), 12),
			priceStyle.Render(formatPrice(e.Price)),
			metaStyle.Render(seats))
		if i == m.cursor {
			b.WriteString(accentStyle.Render("> ") + selectedRowBg.Render(selectedStyle.Render(line)) + "\n")
		} else {
			b.WriteString("  " + normalStyle.Render(line) + "\n")
		}
	}
	if m.meta.LastPage > 1 {
		b.WriteString("\n  " + metaStyle.Render(fmt.Sprintf("page %d of %d . %d events", m.meta.CurrentPage, m.meta.LastPage, m.meta.Total)) + "\n")
	}
	return b.String()
}

func (m eventsModel) viewDetail() string {
	e, ok := m.selected()
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n  " + selectedStyle.Render(e.Title))
	if e.Status != "" {
		b.WriteString("  " + StatusStyle(e.Status).Render(e.Status))
	}
	b.WriteString("\n  " + dimStyle.Render(e.Venue))
	if e.City != "" {
		b.WriteString(dimStyle.Render(", " + e.City))
	}
	b.WriteString("\n  " + metaStyle.Render(formatDate(e.StartsAt)+" "+e.StartsAt.Format("15:04")) + "\n\n")
	b.WriteString("  " + priceStyle.Render(formatPrice(e.Price)) + metaStyle.Render(" per ticket"))
	if left := e.SeatsLeft(); left >= 0 {
		b.WriteString(metaStyle.Render(fmt.Sprintf("  . %d of %d seats left", left, e.Capacity)))
	}
	b.WriteString("\n")
	if e.Category != nil {
		b.WriteString("  " + dimStyle.Render(e.Category.Name) + "\n")
	}
	if e.Description != "" {
		b.WriteString("\n  " + normalStyle.Render(truncStr(oneLine(e.Description), max(m.width-4, 40)*3)) + "\n")
	}
	return b.String()
}

func (m eventsModel) helpKeys() string {
	switch {
	case m.searching:
		return helpBar([2]string{"enter", "search"}, [2]string{"esc", "cancel"})
	case m.detail:
		return helpBar([2]string{"b", "book ticket"}, [2]string{"o", "open web"}, [2]string{"esc", "back"})
	}
	return helpBar([2]string{"1-4", "tabs"}, [2]string{"j/k", "nav"}, [2]string{"/", "search"}, [2]string{"c", "category"},
		[2]string{"enter", "details"}, [2]string{"b", "book"}, [2]string{"h", "help"}, [2]string{"q", "quit"})
}
