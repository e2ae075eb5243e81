package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qamarabbas408/booknstay/internal/api"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

// Event form fields.
const (
	evTitle = iota
	evVenue
	evCity
	evStarts
	evPrice
	evCapacity
	evCategory
	evDescription
	numEventFields
)

const eventTimeLayout = "2006-01-02 15:04"

type vendorEventsLoadedMsg struct {
	page domain.Page[domain.Event]
	err  error
}

type eventSavedMsg struct {
	event   domain.Event
	updated bool
	err     error
}

type vendorModel struct {
	api       *api.API
	events    []domain.Event
	cursor    int
	loading   bool
	err       string
	statusMsg string

	formOpen   bool
	editingID  int64 // 0 = new event
	fields     []field
	focus      int
	submitting bool

	width  int
	height int
}

func newVendorModel(a *api.API) vendorModel {
	return vendorModel{api: a, loading: true}
}

func eventFields() []field {
	f := make([]field, numEventFields)
	f[evTitle].label = "Title"
	f[evVenue].label = "Venue"
	f[evCity].label = "City"
	f[evStarts].label = "Starts"
	f[evPrice].label = "Price"
	f[evCapacity].label = "Capacity"
	f[evCategory].label = "Category ID"
	f[evDescription].label = "Description"
	return f
}

func (m vendorModel) Init() tea.Cmd {
	a := m.api
	return func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		page, err := a.VendorEvents(ctx)
		return vendorEventsLoadedMsg{page: page, err: err}
	}
}

func (m vendorModel) Update(msg tea.Msg) (vendorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case vendorEventsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.err = ""
		m.events = msg.page.Data
		if m.cursor >= len(m.events) {
			m.cursor = 0
		}

	case eventSavedMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.formOpen = false
		m.err = ""
		verb := "created"
		if msg.updated {
			verb = "updated"
		}
		m.statusMsg = fmt.Sprintf("event %s: %s", verb, msg.event.Title)
		m.loading = true
		return m, m.Init()

	case tea.KeyMsg:
		if m.formOpen {
			if m.submitting {
				return m, nil
			}
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m vendorModel) updateList(msg tea.KeyMsg) (vendorModel, tea.Cmd) {
	m.statusMsg = ""
	switch msg.String() {
	case "j", "down":
		m.cursor = moveCursor(m.cursor, 1, len(m.events))
	case "k", "up":
		m.cursor = moveCursor(m.cursor, -1, len(m.events))
	case "n":
		m.formOpen = true
		m.editingID = 0
		m.fields = eventFields()
		m.focus = 0
		m.err = ""
	case "e":
		if m.cursor < len(m.events) {
			ev := m.events[m.cursor]
			m.formOpen = true
			m.editingID = ev.ID
			m.fields = fieldsFromEvent(ev)
			m.focus = 0
			m.err = ""
		}
	case "r":
		m.loading = true
		return m, m.Init()
	}
	return m, nil
}

func (m vendorModel) updateForm(msg tea.KeyMsg) (vendorModel, tea.Cmd) {
	m.err = ""
	switch msg.String() {
	case "esc":
		m.formOpen = false
	case "ctrl+s":
		return m.submit()
	case "tab", "down", "enter":
		m.focus = (m.focus + 1) % len(m.fields)
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + len(m.fields)) % len(m.fields)
	default:
		f := &m.fields[m.focus]
		f.value = editRune(f.value, msg.String())
	}
	return m, nil
}

func fieldsFromEvent(ev domain.Event) []field {
	f := eventFields()
	f[evTitle].value = ev.Title
	f[evVenue].value = ev.Venue
	f[evCity].value = ev.City
	if !ev.StartsAt.IsZero() {
		f[evStarts].value = ev.StartsAt.Local().Format(eventTimeLayout)
	}
	f[evPrice].value = strconv.FormatFloat(ev.Price, 'f', -1, 64)
	if ev.Capacity > 0 {
		f[evCapacity].value = strconv.Itoa(ev.Capacity)
	}
	if ev.CategoryID > 0 {
		f[evCategory].value = strconv.FormatInt(ev.CategoryID, 10)
	}
	f[evDescription].value = ev.Description
	return f
}

// eventInput validates the form.
func (m vendorModel) eventInput() (domain.EventInput, error) {
	v := func(i int) string { return strings.TrimSpace(m.fields[i].value) }
	in := domain.EventInput{
		Title:       v(evTitle),
		Venue:       v(evVenue),
		City:        v(evCity),
		Description: v(evDescription),
	}
	if in.Title == "" || in.Venue == "" {
		return in, fmt.Errorf("title and venue are required")
	}
	starts, err := time.ParseInLocation(eventTimeLayout, v(evStarts), time.Local)
	if err != nil {
		return in, fmt.Errorf("starts must look like %s", eventTimeLayout)
	}
	in.StartsAt = starts
	if in.Price, err = strconv.ParseFloat(v(evPrice), 64); err != nil || in.Price < 0 {
		return in, fmt.Errorf("price must be zero or more")
	}
	if s := v(evCapacity); s != "" {
		if in.Capacity, err = strconv.Atoi(s); err != nil || in.Capacity < 0 {
			return in, fmt.Errorf("capacity must be a whole number")
		}
	}
	if s := v(evCategory); s != "" {
		if in.CategoryID, err = strconv.ParseInt(s, 10, 64); err != nil {
			return in, fmt.Errorf("category id must be a number")
		}
	}
	return in, nil
}

func (m vendorModel) submit() (vendorModel, tea.Cmd) {
	in, err := m.eventInput()
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.submitting = true
	a := m.api
	id := m.editingID
	return m, func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		if id != 0 {
			ev, err := a.UpdateEvent(ctx, id, in)
			return eventSavedMsg{event: ev, updated: true, err: err}
		}
		ev, err := a.CreateEvent(ctx, in)
		return eventSavedMsg{event: ev, err: err}
	}
}

func (m vendorModel) View() string {
	var b strings.Builder
	if m.formOpen {
		title := "New event"
		if m.editingID != 0 {
			title = fmt.Sprintf("Edit event #%d", m.editingID)
		}
		b.WriteString("\n  " + sectionHeaderStyle.Render(title) + "\n\n")
		b.WriteString(renderForm(m.fields, m.focus))
		b.WriteString("\n  " + metaStyle.Render("starts: "+eventTimeLayout) + "\n")
		if m.submitting {
			b.WriteString("  " + dimStyle.Render("saving...") + "\n")
		}
		if m.err != "" {
			b.WriteString("  " + errorStyle.Render(m.err) + "\n")
		}
		return b.String()
	}

	b.WriteString("\n  " + sectionHeaderStyle.Render("Your events") + "\n\n")
	if m.loading && len(m.events) == 0 {
		b.WriteString("  " + dimStyle.Render("loading...") + "\n")
		return b.String()
	}
	if m.err != "" {
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
	}
	if len(m.events) == 0 && m.err == "" {
		b.WriteString("  " + dimStyle.Render("no events yet . press n to create one") + "\n")
	}
	titleWidth := max(m.width-48, 16)
	for i, ev := range m.events {
		line := fmt.Sprintf("%s  %s  %s  %s",
			padRight(truncStr(ev.Title, titleWidth), titleWidth),
			padRight(ev.StartsAt.Format("02 Jan 15:04"), 12),
			StatusStyle(ev.Status).Render(padRight(ev.Status, 9)),
			metaStyle.Render(fmt.Sprintf("%d sold", ev.TicketsSold)))
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

func (m vendorModel) helpKeys() string {
	if m.formOpen {
		return helpBar([2]string{"tab", "next"}, [2]string{"ctrl+s", "save"}, [2]string{"esc", "cancel"})
	}
	return helpBar([2]string{"1-4", "tabs"}, [2]string{"j/k", "nav"}, [2]string{"n", "new"}, [2]string{"e", "edit"},
		[2]string{"r", "refresh"}, [2]string{"q", "quit"})
}
