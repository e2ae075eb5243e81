package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qamarabbas408/booknstay/internal/api"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

type bookingsLoadedMsg struct {
	page domain.Page[domain.Booking]
	err  error
}

type bookingDetailMsg struct {
	booking domain.Booking
	err     error
}

type copyResultMsg struct {
	reference string
	err       error
}

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

type bookingsModel struct {
	api       *api.API
	bookings  []domain.Booking
	cursor    int
	detail    *domain.Booking
	loading   bool
	err       string
	statusMsg string
	width     int
	height    int
}

func newBookingsModel(a *api.API) bookingsModel {
	return bookingsModel{api: a, loading: true}
}

func (m bookingsModel) Init() tea.Cmd {
	a := m.api
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		page, err := a.GuestBookings(ctx)
		return bookingsLoadedMsg{page: page, err: err}
	}
}

func (m bookingsModel) loadDetail(id int64) tea.Cmd {
	a := m.api
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		b, err := a.GuestBooking(ctx, id)
		return bookingDetailMsg{booking: b, err: err}
	}
}

func (m bookingsModel) Update(msg tea.Msg) (bookingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case bookingsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.err = ""
		m.bookings = msg.page.Data
		if m.cursor >= len(m.bookings) {
			m.cursor = 0
		}

	case bookingDetailMsg:
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		b := msg.booking
		m.detail = &b

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = "copy failed: " + msg.err.Error()
		} else {
			m.statusMsg = "copied " + msg.reference
		}

	case tea.KeyMsg:
		m.statusMsg = ""
		switch msg.String() {
		case "j", "down":
			if m.detail == nil {
				m.cursor = moveCursor(m.cursor, 1, len(m.bookings))
			}
		case "k", "up":
			if m.detail == nil {
				m.cursor = moveCursor(m.cursor, -1, len(m.bookings))
			}
		case "enter":
			if b, ok := m.selected(); ok && m.detail == nil {
				m.detail = &b
				return m, m.loadDetail(b.ID)
			}
		case "esc":
			m.detail = nil
		case "c":
			if b, ok := m.current(); ok && b.Reference != "" {
				ref := b.Reference
				return m, func() tea.Msg {
					return copyResultMsg{reference: ref, err: writeClipboard(ref)}
				}
			}
		case "r":
			m.loading = true
			return m, m.Init()
		}
	}
	return m, nil
}

func (m bookingsModel) selected() (domain.Booking, bool) {
	if m.cursor < 0 || m.cursor >= len(m.bookings) {
		return domain.Booking{}, false
	}
	return m.bookings[m.cursor], true
}

// current is the booking shown in detail, or the highlighted one.
func (m bookingsModel) current() (domain.Booking, bool) {
	if m.detail != nil {
		return *m.detail, true
	}
	return m.selected()
}

func (m bookingsModel) View() string {
	if m.detail != nil {
		return m.viewDetail()
	}
	var b strings.Builder
	b.WriteString("\n")
	if m.loading && len(m.bookings) == 0 {
		b.WriteString("  " + dimStyle.Render("loading bookings...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
	}
	if len(m.bookings) == 0 && m.err == "" {
		b.WriteString("  " + dimStyle.Render("no bookings yet . press 1 or 2 and b to book") + "\n")
		return b.String()
	}
	titleWidth := max(m.width-56, 16)
	for i, bk := range m.bookings {
		line := fmt.Sprintf("%s  %s  %s  %s  %s",
			padRight(bk.Reference, 12),
			padRight(truncStr(bk.Title(), titleWidth), titleWidth),
			padRight(bk.Kind, 5),
			StatusStyle(bk.Status).Render(padRight(bk.Status, 9)),
			priceStyle.Render(formatPrice(bk.TotalPrice)))
		if i == m.cursor {
			b.WriteString(accentStyle.Render("> ") + selectedRowBg.Render(selectedStyle.Render(line)) + "\n")
		} else {
			b.WriteString("  " + normalStyle.Render(line) + "\n")
		}
	}
	if m.statusMsg != "" {
		b.WriteString("\n  " + successStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m bookingsModel) viewDetail() string {
	bk := m.detail
	var b strings.Builder
	b.WriteString("\n  " + selectedStyle.Render(bk.Title()) + "  " + StatusStyle(bk.Status).Render(bk.Status) + "\n")
	b.WriteString("  " + dimStyle.Render("reference ") + accentStyle.Render(bk.Reference) + "\n\n")
	switch bk.Kind {
	case domain.BookingHotel:
		var in, out string
		if bk.CheckIn != nil {
			in = formatDate(*bk.CheckIn)
		}
		if bk.CheckOut != nil {
			out = formatDate(*bk.CheckOut)
		}
		b.WriteString("  " + normalStyle.Render(fmt.Sprintf("%s → %s . %d guest(s)", in, out, bk.Guests)) + "\n")
	case domain.BookingEvent:
		when := ""
		if bk.Event != nil {
			when = formatDate(bk.Event.StartsAt) + " . "
		}
		b.WriteString("  " + normalStyle.Render(fmt.Sprintf("%s%d ticket(s)", when, bk.Tickets)) + "\n")
	}
	b.WriteString("  " + priceStyle.Render(formatPrice(bk.TotalPrice)) + metaStyle.Render(" total . booked "+formatTime(bk.CreatedAt)) + "\n")
	if m.statusMsg != "" {
		b.WriteString("\n  " + successStyle.Render(m.statusMsg) + "\n")
	}
	return b.String()
}

func (m bookingsModel) helpKeys() string {
	if m.detail != nil {
		return helpBar([2]string{"c", "copy reference"}, [2]string{"esc", "back"})
	}
	return helpBar([2]string{"1-4", "tabs"}, [2]string{"j/k", "nav"}, [2]string{"enter", "details"}, [2]string{"c", "copy ref"},
		[2]string{"r", "refresh"}, [2]string{"L", "logout"}, [2]string{"q", "quit"})
}
