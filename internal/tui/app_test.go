package tui

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qamarabbas408/booknstay/internal/store"
	"github.com/qamarabbas408/booknstay/pkg/client"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, a App, text string) App {
	t.Helper()
	for _, r := range text {
		model, _ := a.Update(keyMsg(string(r)))
		a = model.(App)
	}
	return a
}

func newTestApp() App {
	a := NewApp(nil, "http://web.test")
	a.width = 100
	a.height = 40
	return a
}

func guestSession() domain.Session {
	return domain.NewSession(&domain.User{ID: 1, Name: "Ayesha", Role: domain.RoleGuest}, "tok")
}

func vendorSession() domain.Session {
	return domain.NewSession(&domain.User{ID: 2, Name: "Bilal", Role: domain.RoleVendor}, "tok")
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	model, cmd := a.Update(msg)
	return model.(App), cmd
}

func TestAppStartsOnLoginWhenAnonymous(t *testing.T) {
	a := newTestApp()
	if a.view != viewLogin {
		t.Fatalf("view = %d, want login", a.view)
	}
	if !strings.Contains(a.View(), "Sign in") {
		t.Error("login screen not rendered")
	}
}

func TestAppSessionMsgLeavesLogin(t *testing.T) {
	a, cmd := update(t, newTestApp(), SessionMsg{Session: guestSession()})
	if a.view != viewHotels {
		t.Errorf("view = %d, want hotels", a.view)
	}
	if cmd == nil {
		t.Error("expected hotels load command")
	}
	if !a.hotels.authenticated || !a.events.authenticated {
		t.Error("screens not told about the session")
	}
}

func TestAppEscBrowsesAnonymously(t *testing.T) {
	a := newTestApp()
	a, cmd := update(t, a, keyMsg("esc"))
	if cmd == nil {
		t.Fatal("esc on login returned no command")
	}
	msg := cmd()
	if r, ok := msg.(RedirectMsg); !ok || r.Path != pathHotels {
		t.Fatalf("esc produced %#v", msg)
	}
	a, _ = update(t, a, msg)
	if a.view != viewHotels {
		t.Errorf("view = %d, want hotels", a.view)
	}
}

func TestAppBookingsTabRequiresLogin(t *testing.T) {
	a := newTestApp()
	a.view = viewHotels
	a, _ = update(t, a, keyMsg("3"))
	if a.view != viewLogin {
		t.Errorf("view = %d, want login", a.view)
	}
	if a.login.status == "" {
		t.Error("login screen should explain why it opened")
	}
}

func TestAppVendorTabOnlyForVendors(t *testing.T) {
	a, _ := update(t, newTestApp(), SessionMsg{Session: guestSession()})
	a, _ = update(t, a, keyMsg("4"))
	if a.view == viewVendor {
		t.Error("guest reached vendor dashboard")
	}

	v, _ := update(t, newTestApp(), SessionMsg{Session: vendorSession()})
	v, cmd := update(t, v, keyMsg("4"))
	if v.view != viewVendor {
		t.Errorf("view = %d, want vendor", v.view)
	}
	if cmd == nil {
		t.Error("expected vendor events load command")
	}
	if !strings.Contains(v.View(), "Vendor") {
		t.Error("vendor tab missing from tab bar")
	}
}

func TestAppRedirectToLoginEndsSession(t *testing.T) {
	a, _ := update(t, newTestApp(), SessionMsg{Session: guestSession()})
	a.view = viewBookings

	a, _ = update(t, a, RedirectMsg{Path: store.LoginPath})
	if a.view != viewLogin {
		t.Errorf("view = %d, want login", a.view)
	}
	if a.session.IsAuthenticated {
		t.Error("session still authenticated after redirect")
	}
	if !strings.Contains(a.View(), "session has ended") {
		t.Error("redirect notice not shown")
	}
}

func TestAppLogoutKey(t *testing.T) {
	a, _ := update(t, newTestApp(), SessionMsg{Session: guestSession()})
	a.view = viewBookings

	a, cmd := update(t, a, keyMsg("L"))
	if cmd == nil {
		t.Fatal("L returned no command")
	}
	a, _ = update(t, a, cmd())
	if a.session.IsAuthenticated {
		t.Error("still authenticated after logout")
	}
	if a.view != viewLogin {
		t.Errorf("view = %d, want login", a.view)
	}
}

func TestAppAuthFailureStaysOnLogin(t *testing.T) {
	err := &client.APIError{Status: http.StatusUnprocessableEntity, Data: json.RawMessage(`{"message":"These credentials do not match our records."}`)}
	a, _ := update(t, newTestApp(), authDoneMsg{err: err})
	if a.view != viewLogin {
		t.Errorf("view = %d, want login", a.view)
	}
	if !strings.Contains(a.View(), "These credentials do not match") {
		t.Error("server message not shown")
	}
}

func TestAppRequireLogin(t *testing.T) {
	a := newTestApp()
	a.view = viewEvents
	a, _ = update(t, a, requireLoginMsg{reason: "sign in to book Jazz Night"})
	if a.view != viewLogin || a.login.status != "sign in to book Jazz Night" {
		t.Errorf("view = %d, status = %q", a.view, a.login.status)
	}
}

func TestAppBookedStatus(t *testing.T) {
	a, _ := update(t, newTestApp(), SessionMsg{Session: guestSession()})
	a, _ = update(t, a, bookedMsg{booking: domain.Booking{Reference: "BK-42", Hotel: &domain.Hotel{Name: "Sea View"}}})
	if !strings.Contains(a.status, "BK-42") {
		t.Errorf("status = %q", a.status)
	}
	a, _ = update(t, a, bookedMsg{err: errors.New("sold out")})
	if !strings.Contains(a.status, "sold out") {
		t.Errorf("status = %q", a.status)
	}
}

func TestAppHelpOverlay(t *testing.T) {
	a, _ := update(t, newTestApp(), SessionMsg{Session: guestSession()})
	a, _ = update(t, a, keyMsg("h"))
	if !a.helpOpen {
		t.Fatal("help not open")
	}
	a, _ = update(t, a, keyMsg("j"))
	if a.helpCursor != 1 {
		t.Errorf("helpCursor = %d, want 1", a.helpCursor)
	}
	a, _ = update(t, a, keyMsg("esc"))
	if a.helpOpen {
		t.Error("help still open after esc")
	}
}

func TestAppViewFitsHeight(t *testing.T) {
	a, _ := update(t, newTestApp(), SessionMsg{Session: guestSession()})
	a, _ = update(t, a, tea.WindowSizeMsg{Width: 80, Height: 12})
	hotels := make([]domain.Hotel, 30)
	for i := range hotels {
		hotels[i] = domain.Hotel{ID: int64(i + 1), Name: "Hotel", City: "Lahore"}
	}
	a, _ = update(t, a, hotelsLoadedMsg{page: domain.Page[domain.Hotel]{Data: hotels}})
	if lines := strings.Count(a.View(), "\n") + 1; lines > 12 {
		t.Errorf("view has %d lines, want <= 12", lines)
	}
}

func TestAppLoginAgainstStore(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var in domain.LoginRequest
		json.NewDecoder(r.Body).Decode(&in)            //nolint:errcheck
		json.NewEncoder(w).Encode(domain.AuthResponse{ //nolint:errcheck
			User:        domain.User{ID: 3, Name: "Sana", Email: in.Email, Role: domain.RoleVendor},
			AccessToken: "tok-3",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	st, err := store.New(store.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("store.New() error: %v", err)
	}
	defer st.Close()

	a := NewApp(st, "http://web.test")
	a = typeText(t, a, "sana@example.com")
	a, _ = update(t, a, keyMsg("tab"))
	a = typeText(t, a, "secret")
	a, cmd := update(t, a, keyMsg("enter"))
	if cmd == nil {
		t.Fatal("submit returned no command")
	}
	if !a.login.submitting {
		t.Error("login not marked as submitting")
	}

	a, _ = update(t, a, cmd())
	if a.view != viewHotels {
		t.Errorf("view = %d, want hotels", a.view)
	}
	if !a.isVendor() {
		t.Error("vendor session not applied")
	}
	if st.Auth.Token() != "tok-3" {
		t.Errorf("store token = %q", st.Auth.Token())
	}
}

func newStoreApp(t *testing.T) (App, *store.Store) {
	t.Helper()
	st, err := store.New(store.Options{BaseURL: "http://api.test"})
	if err != nil {
		t.Fatalf("store.New() error: %v", err)
	}
	t.Cleanup(st.Close)
	a := NewApp(st, "http://web.test")
	a.width = 100
	a.height = 40
	return a, st
}

func TestAppFollowsStoreWhenSessionMessagesArriveReversed(t *testing.T) {
	a, st := newStoreApp(t)
	signedIn := vendorSession()
	if err := st.Auth.SetCredentials(signedIn.User, signedIn.Token); err != nil {
		t.Fatal(err)
	}
	st.Logout()

	a, _ = update(t, a, SessionMsg{Session: domain.AnonymousSession()})
	a, _ = update(t, a, SessionMsg{Session: signedIn})
	if a.session.IsAuthenticated {
		t.Error("UI shows a session the store has already ended")
	}
	if a.view != viewLogin {
		t.Errorf("view = %d, want login", a.view)
	}
}

func TestAppIgnoresRedirectAfterSigningInAgain(t *testing.T) {
	a, st := newStoreApp(t)
	s := guestSession()
	if err := st.Auth.SetCredentials(s.User, s.Token); err != nil {
		t.Fatal(err)
	}

	a, _ = update(t, a, RedirectMsg{Path: store.LoginPath})
	if !a.session.IsAuthenticated {
		t.Error("late redirect signed the UI out")
	}
	if a.view == viewLogin {
		t.Error("late redirect moved the UI to login")
	}
}

func TestAppFailedLoginKeepsCredentialsError(t *testing.T) {
	rejected := &client.APIError{Status: http.StatusUnauthorized, Data: json.RawMessage(`{"message":"These credentials do not match our records."}`)}

	for _, name := range []string{"redirect first", "result first"} {
		t.Run(name, func(t *testing.T) {
			a := newTestApp()
			a.login.submitting = true
			msgs := []tea.Msg{RedirectMsg{Path: store.LoginPath}, authDoneMsg{err: rejected}}
			if name == "result first" {
				msgs[0], msgs[1] = msgs[1], msgs[0]
			}
			for _, msg := range msgs {
				a, _ = update(t, a, msg)
			}
			view := a.View()
			if !strings.Contains(view, "credentials do not match") {
				t.Error("credentials error not shown")
			}
			if strings.Contains(view, "session has ended") {
				t.Error("anonymous user told their session ended")
			}
		})
	}
}
