package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qamarabbas408/booknstay/internal/store"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

type authMode int

const (
	modeLogin authMode = iota
	modeRegister
)

// Field positions per mode.
const (
	loginEmail = iota
	loginPassword
)

const (
	regName = iota
	regEmail
	regPassword
	regConfirm
)

type authDoneMsg struct {
	session domain.Session
	err     error
}

type loginModel struct {
	store      *store.Store
	mode       authMode
	fields     []field
	focus      int
	role       domain.Role
	submitting bool
	status     string
	err        string
	width      int
	height     int
}

func newLoginModel(st *store.Store) loginModel {
	m := loginModel{store: st, role: domain.RoleGuest}
	m.fields = loginFields()
	return m
}

func loginFields() []field {
	return []field{
		loginEmail:    {label: "Email"},
		loginPassword: {label: "Password", secret: true},
	}
}

func registerFields() []field {
	return []field{
		regName:     {label: "Name"},
		regEmail:    {label: "Email"},
		regPassword: {label: "Password", secret: true},
		regConfirm:  {label: "Confirm", secret: true},
	}
}

// reset clears the form but keeps the mode.
func (m loginModel) reset() loginModel {
	m.submitting = false
	m.err = ""
	m.status = ""
	m.focus = 0
	if m.mode == modeRegister {
		m.fields = registerFields()
	} else {
		m.fields = loginFields()
	}
	return m
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case authDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = errText(msg.err)
			return m, nil
		}
		m.err = ""

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m loginModel) handleKey(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	m.err = ""
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		return m, func() tea.Msg { return RedirectMsg{Path: pathHotels} }
	case "ctrl+t":
		if m.mode == modeLogin {
			m.mode = modeRegister
		} else {
			m.mode = modeLogin
		}
		return m.reset(), nil
	case "ctrl+r":
		if m.mode == modeRegister {
			if m.role == domain.RoleGuest {
				m.role = domain.RoleVendor
			} else {
				m.role = domain.RoleGuest
			}
		}
	case "tab", "down":
		m.focus = (m.focus + 1) % len(m.fields)
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + len(m.fields)) % len(m.fields)
	case "enter":
		if m.focus < len(m.fields)-1 {
			m.focus++
			return m, nil
		}
		return m.submit()
	default:
		f := &m.fields[m.focus]
		f.value = editRune(f.value, msg.String())
	}
	return m, nil
}

func (m loginModel) value(i int) string {
	return strings.TrimSpace(m.fields[i].value)
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.mode == modeLogin {
		req := domain.LoginRequest{Email: m.value(loginEmail), Password: m.fields[loginPassword].value}
		if req.Email == "" || req.Password == "" {
			m.err = "email and password are required"
			return m, nil
		}
		m.submitting = true
		st := m.store
		return m, func() tea.Msg {
			ctx, cancel := loadContext()
			defer cancel()
			if _, err := st.API.Login(ctx, req); err != nil {
				return authDoneMsg{err: err}
			}
			return authDoneMsg{session: st.Auth.State()}
		}
	}

	req := domain.RegisterRequest{
		Name:                 m.value(regName),
		Email:                m.value(regEmail),
		Password:             m.fields[regPassword].value,
		PasswordConfirmation: m.fields[regConfirm].value,
		Role:                 m.role,
	}
	switch {
	case req.Name == "" || req.Email == "" || req.Password == "":
		m.err = "name, email and password are required"
		return m, nil
	case req.Password != req.PasswordConfirmation:
		m.err = "passwords do not match"
		return m, nil
	}
	m.submitting = true
	st := m.store
	return m, func() tea.Msg {
		ctx, cancel := loadContext()
		defer cancel()
		if _, err := st.API.Register(ctx, req); err != nil {
			return authDoneMsg{err: err}
		}
		return authDoneMsg{session: st.Auth.State()}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	title := "Sign in"
	if m.mode == modeRegister {
		title = "Create an account"
	}
	b.WriteString("\n  " + sectionHeaderStyle.Render(title) + "\n\n")
	b.WriteString(renderForm(m.fields, m.focus))
	if m.mode == modeRegister {
		b.WriteString("  " + dimStyle.Render(padRight("Account", 14)) + " " + RoleBadge(m.role) + metaStyle.Render("  ctrl+r to switch") + "\n")
	}
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("signing in...") + "\n")
	case m.err != "":
		b.WriteString("  " + errorStyle.Render(m.err) + "\n")
	case m.status != "":
		b.WriteString("  " + dimStyle.Render(m.status) + "\n")
	}
	return b.String()
}

func (m loginModel) helpKeys() string {
	toggle := "register"
	if m.mode == modeRegister {
		toggle = "sign in"
	}
	return helpBar([2]string{"tab", "next"}, [2]string{"enter", "submit"}, [2]string{"ctrl+t", toggle}, [2]string{"esc", "browse"}, [2]string{"ctrl+c", "quit"})
}
