package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qamarabbas408/booknstay/internal/api"
	"github.com/qamarabbas408/booknstay/internal/browser"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

type hotelsLoadedMsg struct {
	page domain.Page[domain.Hotel]
	err  error
}

type hotelDetailMsg struct {
	hotel domain.Hotel
	err   error
}

type hotelsModel struct {
	api           *api.API
	webURL        string
	hotels        []domain.Hotel
	meta          domain.PageMeta
	filter        domain.HotelFilter
	cursor        int
	searching     bool
	search        string
	detail        *domain.Hotel
	loading       bool
	err           string
	authenticated bool
	width         int
	height        int
}

func newHotelsModel(a *api.API, webURL string) hotelsModel {
	return hotelsModel{api: a, webURL: strings.TrimRight(webURL, "/"), loading: true}
}

func (m hotelsModel) Init() tea.Cmd {
	return m.load()
}

func (m hotelsModel) load() tea.Cmd {
	a := m.api
	filter := m.filter
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		page, err := a.Hotels(ctx, filter)
		return hotelsLoadedMsg{page: page, err: err}
	}
}

func (m hotelsModel) loadDetail(id int64) tea.Cmd {
	a := m.api
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		h, err := a.Hotel(ctx, id)
		return hotelDetailMsg{hotel: h, err: err}
	}
}

func (m hotelsModel) Update(msg tea.Msg) (hotelsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case hotelsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.err = ""
		m.hotels = msg.page.Data
		m.meta = msg.page.Meta
		if m.cursor >= len(m.hotels) {
			m.cursor = 0
		}

	case hotelDetailMsg:
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		h := msg.hotel
		m.detail = &h

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.detail != nil {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m hotelsModel) updateSearch(msg tea.KeyMsg) (hotelsModel, tea.Cmd) {
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

func (m hotelsModel) updateList(msg tea.KeyMsg) (hotelsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.cursor = moveCursor(m.cursor, 1, len(m.hotels))
	case "k", "up":
		m.cursor = moveCursor(m.cursor, -1, len(m.hotels))
	case "/":
		m.searching = true
		m.search = m.filter.Search
	case "enter":
		if h, ok := m.selected(); ok {
			m.detail = &h
			return m, m.loadDetail(h.ID)
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
		if h, ok := m.selected(); ok {
			return m, openURL(browser.PageURL(m.webURL, "hotels", h.ID))
		}
	case "b":
		if h, ok := m.selected(); ok {
			return m, m.book(h)
		}
	}
	return m, nil
}

func (m hotelsModel) updateDetail(msg tea.KeyMsg) (hotelsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.detail = nil
	case "o":
		return m, openURL(browser.PageURL(m.webURL, "hotels", m.detail.ID))
	case "b":
		return m, m.book(*m.detail)
	}
	return m, nil
}

// book reserves one night from tomorrow for one guest.
func (m hotelsModel) book(h domain.Hotel) tea.Cmd {
	if !m.authenticated {
		return func() tea.Msg { return requireLoginMsg{reason: "sign in to book " + h.Name} }
	}
	a := m.api
	checkIn := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	checkOut := checkIn.AddDate(0, 0, 1)
	in := domain.BookingInput{Kind: domain.BookingHotel, HotelID: h.ID, CheckIn: &checkIn, CheckOut: &checkOut, Guests: 1}
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		b, err := a.CreateBooking(ctx, in)
		if err == nil && b.Hotel == nil {
			b.Hotel = &h
		}
		return bookedMsg{booking: b, err: err}
	}
}

func (m hotelsModel) selected() (domain.Hotel, bool) {
	if m.cursor < 0 || m.cursor >= len(m.hotels) {
		return domain.Hotel{}, false
	}
	return m.hotels[m.cursor], true
}

func (m hotelsModel) View() string {
	if m.detail != nil {
		return m.viewDetail()
	}
	var b strings.Builder
	b.WriteString("\n")
	switch {
	case m.searching:
		b.WriteString("  " + searchStyle.Render("/ ") + normalStyle.Render(m.search) + accentStyle.Render("█") + "\n\n")
	case m.filter.Search != "":
		b.WriteString("  " + dimStyle.Render("search: ") + normalStyle.Render(m.filter.Search) + "\n\n")
	}
	if m.loading && len(m.hotels) == 0 {
		b.WriteString("  " + dimStyle.Render("loading hotels...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
	}
	if len(m.hotels) == 0 && m.err == "" {
		b.WriteString("  " + dimStyle.Render("no hotels found") + "\n")
		return b.String()
	}
	nameWidth := max(m.width-50, 16)
	for i, h := range m.hotels {
		line := fmt.Sprintf("%s  %s  %s  %s",
			padRight(truncStr(h.Name, nameWidth), nameWidth),
			padRight(truncStr(h.City, 14), 14),
			stars(h.StarRating),
			priceStyle.Render(formatPrice(h.PricePerNight))+metaStyle.Render("/night"))
		if i == m.cursor {
			b.WriteString(accentStyle.Render("> ") + selectedRowBg.Render(selectedStyle.Render(line)) + "\n")
		} else {
			b.WriteString("  " + normalStyle.Render(line) + "\n")
		}
	}
	if m.meta.LastPage > 1 {
		b.WriteString("\n  " + metaStyle.Render(fmt.Sprintf("page %d of %d . %d hotels", m.meta.CurrentPage, m.meta.LastPage, m.meta.Total)) + "\n")
	}
	return b.String()
}

func (m hotelsModel) viewDetail() string {
	h := m.detail
	var b strings.Builder
	b.WriteString("\n  " + selectedStyle.Render(h.Name) + "  " + stars(h.StarRating) + "\n")
	b.WriteString("  " + dimStyle.Render(strings.TrimSpace(h.Address+", "+h.City)) + "\n\n")
	b.WriteString("  " + priceStyle.Render(formatPrice(h.PricePerNight)) + metaStyle.Render(" per night"))
	if h.Rating > 0 {
		b.WriteString(metaStyle.Render(fmt.Sprintf("  . rated %.1f", h.Rating)))
	}
	b.WriteString("\n")
	if h.Description != "" {
		b.WriteString("\n  " + normalStyle.Render(truncStr(oneLine(h.Description), max(m.width-4, 40)*3)) + "\n")
	}
	if len(h.Amenities) > 0 {
		names := make([]string, 0, len(h.Amenities))
		for _, a := range h.Amenities {
			names = append(names, a.Name)
		}
		b.WriteString("\n  " + sectionHeaderStyle.Render("Amenities") + "\n  " + dimStyle.Render(strings.Join(names, " . ")) + "\n")
	}
	if m.err != "" {
		b.WriteString("\n  " + errorStyle.Render(m.err) + "\n")
	}
	return b.String()
}

func (m hotelsModel) helpKeys() string {
	switch {
	case m.searching:
		return helpBar([2]string{"enter", "search"}, [2]string{"esc", "cancel"})
	case m.detail != nil:
		return helpBar([2]string{"b", "book"}, [2]string{"o", "open web"}, [2]string{"esc", "back"})
	}
	return helpBar([2]string{"1-4", "tabs"}, [2]string{"j/k", "nav"}, [2]string{"/", "search"}, [2]string{"enter", "details"},
		[2]string{"b", "book"}, [2]string{"n/p", "page"}, [2]string{"h", "help"}, [2]string{"q", "quit"})
}
