package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/qamarabbas408/booknstay/internal/api"
	"github.com/qamarabbas408/booknstay/internal/browser"
	"github.com/qamarabbas408/booknstay/internal/store"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

type view int

// Screen paths accepted by RedirectMsg besides store.LoginPath.
const (
	pathHotels = "/hotels"
	pathEvents = "/events"
)

const (
	viewLogin view = iota
	viewHotels
	viewEvents
	viewBookings
	viewVendor
)

// SessionMsg tells the UI that the auth state changed.
type SessionMsg struct {
	Session domain.Session
}

// RedirectMsg moves the UI to the screen registered for Path.
type RedirectMsg struct {
	Path string
}

// requireLoginMsg is sent by screens when an action needs a signed-in user.
type requireLoginMsg struct {
	reason string
}

// bookedMsg carries the result of a booking made from the hotels or events screen.
type bookedMsg struct {
	booking domain.Booking
	err     error
}

type openResultMsg struct{ err error }

// App is the root Bubbletea model.
type App struct {
	store      *store.Store
	webURL     string
	view       view
	login      loginModel
	hotels     hotelsModel
	events     eventsModel
	bookings   bookingsModel
	vendor     vendorModel
	session    domain.Session
	helpOpen   bool
	helpCursor int
	status     string
	width      int
	height     int
	frame      int
}

// NewApp creates the TUI over st. webURL is the base of the web pages opened in the browser.
func NewApp(st *store.Store, webURL string) App {
	var a *api.API
	session := domain.AnonymousSession()
	if st != nil {
		a = st.API
		session = st.Auth.State()
	}
	app := App{
		store:    st,
		webURL:   strings.TrimRight(webURL, "/"),
		login:    newLoginModel(st),
		hotels:   newHotelsModel(a, webURL),
		events:   newEventsModel(a, webURL),
		bookings: newBookingsModel(a),
		vendor:   newVendorModel(a),
	}
	app.setSession(session)
	if !session.IsAuthenticated {
		app.view = viewLogin
	} else {
		app.view = viewHotels
	}
	return app
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{shimmerTickCmd()}
	if a.view != viewLogin {
		cmds = append(cmds, a.hotels.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) setSession(s domain.Session) {
	a.session = s
	a.hotels.authenticated = s.IsAuthenticated
	a.events.authenticated = s.IsAuthenticated
}

func (a App) isVendor() bool {
	return a.session.IsAuthenticated && a.session.User != nil && a.session.User.IsVendor()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1)
		body := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.login, _ = a.login.Update(body)
		a.hotels, _ = a.hotels.Update(body)
		a.events, _ = a.events.Update(body)
		a.bookings, _ = a.bookings.Update(body)
		a.vendor, _ = a.vendor.Update(body)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case SessionMsg:
		return a.applySession(msg.Session)

	case authDoneMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		if msg.err != nil {
			return a, cmd
		}
		next, sessionCmd := a.applySession(msg.session)
		return next, tea.Batch(cmd, sessionCmd)

	case RedirectMsg:
		switch msg.Path {
		case store.LoginPath:
			wasAuthenticated := a.session.IsAuthenticated
			next, cmd := a.applySession(domain.AnonymousSession())
			if next.session.IsAuthenticated {
				// Signed in again since the redirect was sent.
				return next, cmd
			}
			next.view = viewLogin
			if wasAuthenticated {
				next.login = next.login.reset()
				next.login.status = "your session has ended, please sign in again"
			}
			return next, nil
		case pathHotels:
			next, cmd, _ := a.switchTo(viewHotels)
			return next, cmd
		case pathEvents:
			next, cmd, _ := a.switchTo(viewEvents)
			return next, cmd
		}
		return a, nil

	case requireLoginMsg:
		a.view = viewLogin
		a.login.status = msg.reason
		return a, nil

	case bookedMsg:
		if msg.err != nil {
			a.status = errorStyle.Render("booking failed: " + errText(msg.err))
			return a, nil
		}
		a.status = successStyle.Render(fmt.Sprintf("booked %s (%s)", msg.booking.Title(), msg.booking.Reference))
		if a.view == viewBookings {
			return a, a.bookings.Init()
		}
		return a, nil

	case openResultMsg:
		if msg.err != nil {
			a.status = errorStyle.Render("could not open browser: " + msg.err.Error())
		}
		return a, nil

	case tea.KeyMsg:
		if a.helpOpen {
			return a.updateHelp(msg)
		}
		if !a.isEditing() {
			if next, cmd, handled := a.globalKey(msg); handled {
				return next, cmd
			}
		}
		a.status = ""
	}

	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewHotels:
		a.hotels, cmd = a.hotels.Update(msg)
	case viewEvents:
		a.events, cmd = a.events.Update(msg)
	case viewBookings:
		a.bookings, cmd = a.bookings.Update(msg)
	case viewVendor:
		a.vendor, cmd = a.vendor.Update(msg)
	}
	return a, cmd
}

// applySession moves the UI to the store's current session. s is only used without a store;
// messages may arrive in any order, and the store holds the latest transition.
func (a App) applySession(s domain.Session) (App, tea.Cmd) {
	if a.store != nil {
		s = a.store.Auth.State()
	}
	wasAuthenticated := a.session.IsAuthenticated
	a.setSession(s)
	switch {
	case s.IsAuthenticated && a.view == viewLogin:
		a.view = viewHotels
		a.login = a.login.reset()
		return a, a.hotels.Init()
	case !s.IsAuthenticated && wasAuthenticated:
		a.bookings = newBookingsModel(a.bookings.api)
		a.vendor = newVendorModel(a.vendor.api)
		if a.view == viewBookings || a.view == viewVendor {
			a.view = viewLogin
		}
	}
	return a, nil
}

func (a App) globalKey(msg tea.KeyMsg) (App, tea.Cmd, bool) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit, true
	case "h":
		a.helpOpen = true
		a.helpCursor = 0
		return a, nil, true
	case "1":
		return a.switchTo(viewHotels)
	case "2":
		return a.switchTo(viewEvents)
	case "3":
		if !a.session.IsAuthenticated {
			a.view = viewLogin
			a.login.status = "sign in to see your bookings"
			return a, nil, true
		}
		return a.switchTo(viewBookings)
	case "4":
		if !a.isVendor() {
			a.status = dimStyle.Render("the vendor dashboard is for vendor accounts")
			return a, nil, true
		}
		return a.switchTo(viewVendor)
	case "L":
		if !a.session.IsAuthenticated {
			return a, nil, false
		}
		st := a.store
		return a, func() tea.Msg {
			if st != nil {
				st.Logout()
			}
			return SessionMsg{Session: domain.AnonymousSession()}
		}, true
	}
	return a, nil, false
}

func (a App) switchTo(v view) (App, tea.Cmd, bool) {
	if a.view == v {
		return a, nil, true
	}
	a.view = v
	a.status = ""
	switch v {
	case viewHotels:
		return a, a.hotels.Init(), true
	case viewEvents:
		return a, a.events.Init(), true
	case viewBookings:
		return a, a.bookings.Init(), true
	case viewVendor:
		return a, a.vendor.Init(), true
	}
	return a, nil, true
}

func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "esc":
		a.helpOpen = false
	case "q", "ctrl+c":
		return a, tea.Quit
	case "j", "down":
		a.helpCursor = moveCursor(a.helpCursor, 1, len(helpLinks))
	case "k", "up":
		a.helpCursor = moveCursor(a.helpCursor, -1, len(helpLinks))
	case "enter":
		url := a.webURL + helpLinks[a.helpCursor].path
		return a, openURL(url)
	}
	return a, nil
}

func (a App) isEditing() bool {
	switch a.view {
	case viewLogin:
		return true
	case viewHotels:
		return a.hotels.searching
	case viewEvents:
		return a.events.searching
	case viewVendor:
		return a.vendor.formOpen
	}
	return false
}

func openURL(url string) tea.Cmd {
	return func() tea.Msg {
		return openResultMsg{err: browser.Open(url)}
	}
}

// loadContext bounds screen loads so a stuck request cannot freeze a spinner forever.
func loadContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (a App) View() string {
	logo := renderLogo(a.frame)
	logoPad := max((a.width-lipgloss.Width(logo))/2, 0)
	header := strings.Repeat(" ", logoPad) + logo + "\n"

	if a.session.IsAuthenticated && a.session.User != nil {
		who := normalStyle.Render(a.session.User.Name) + " " + RoleBadge(a.session.User.Role)
		header += strings.Repeat(" ", max((a.width-lipgloss.Width(who))/2, 0)) + who
	} else {
		header += strings.Repeat(" ", max((a.width-9)/2, 0)) + dimStyle.Render("signed out")
	}

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{{"1", "Hotels", viewHotels}, {"2", "Events", viewEvents}, {"3", "Bookings", viewBookings}}
	if a.isVendor() {
		tabs = append(tabs, tabEntry{"4", "Vendor", viewVendor})
	}
	colWidth := 0
	if len(tabs) > 0 {
		colWidth = a.width / len(tabs)
	}
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		w := lipgloss.Width(label)
		left := max((colWidth-w)/2, 0)
		right := max(colWidth-w-left, 0)
		tabBar.WriteString(strings.Repeat(" ", left) + label + strings.Repeat(" ", right))
	}

	var body, help string
	switch a.view {
	case viewLogin:
		body = a.login.View()
		help = a.login.helpKeys()
	case viewHotels:
		body = a.hotels.View()
		help = a.hotels.helpKeys()
	case viewEvents:
		body = a.events.View()
		help = a.events.helpKeys()
	case viewBookings:
		body = a.bookings.View()
		help = a.bookings.helpKeys()
	case viewVendor:
		body = a.vendor.View()
		help = a.vendor.helpKeys()
	}
	if a.helpOpen {
		body = helpView(a.helpCursor)
		help = helpBar([2]string{"j/k", "nav"}, [2]string{"enter", "open"}, [2]string{"esc", "close"})
	}

	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n %s\n%s", header, tabBar.String(), body, a.status, help)
}
