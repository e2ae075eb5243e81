package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/qamarabbas408/booknstay/pkg/domain"
)

// Shimmer animation for the header logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderLogo renders "BOOKNSTAY" as a wave of light moving from deep navy to sky blue.
func renderLogo(frame int) string {
	const text = "BOOKNSTAY"
	n := len(text)
	t := float64(frame)

	var out strings.Builder
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		phase := t*0.1 - x*3.0 + math.Sin(t*0.023)*2.0

		b := math.Pow(math.Sin(phase)*0.5+0.5, 1.3)
		b = b*0.75 + math.Sin(t*0.035)*0.12 + 0.18
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		// #1e3a5f -> #7dd3fc
		r := clampByte(30 + b*(125-30))
		g := clampByte(58 + b*(211-58))
		bl := clampByte(95 + b*(252-95))

		s := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(text[i])))
		if i < n-1 {
			out.WriteString(" ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1f5f9")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cbd5e1"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748b"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748b"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#38bdf8"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#38bdf8")).
			Bold(true)

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	starStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#facc15"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#94a3b8")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#404858")).
				Italic(true)

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e293b"))
)

// bookingStatusColors maps booking and event statuses to their colors.
var bookingStatusColors = map[string]lipgloss.Color{
	"confirmed": lipgloss.Color("#4ade80"),
	"pending":   lipgloss.Color("#facc15"),
	"cancelled": lipgloss.Color("#f87171"),
	"completed": lipgloss.Color("#60a5fa"),
	"published": lipgloss.Color("#4ade80"),
	"draft":     lipgloss.Color("#94a3b8"),
}

// StatusStyle returns a bold style colored for a booking or event status.
func StatusStyle(status string) lipgloss.Style {
	if c, ok := bookingStatusColors[strings.ToLower(status)]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#475569")).Bold(true)
}

// RoleBadge renders the role of the logged-in user for the header.
func RoleBadge(role domain.Role) string {
	switch role {
	case domain.RoleVendor:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true).Render("[vendor]")
	case domain.RoleAdmin:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#c084fc")).Bold(true).Render("[admin]")
	case domain.RoleGuest:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8")).Bold(true).Render("[guest]")
	}
	return ""
}

// stars renders a 0-5 star rating.
func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return starStyle.Render(strings.Repeat("★", n)) + metaStyle.Render(strings.Repeat("☆", 5-n))
}

func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

func helpBar(entries ...[2]string) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, helpEntry(e[0], e[1]))
	}
	return " " + strings.Join(parts, "  ")
}

// helpLink is a web page reachable from the help overlay.
type helpLink struct {
	label string
	path  string
	desc  string
}

var helpLinks = []helpLink{
	{"Home", "/", "browse hotels and events on the web"},
	{"My bookings", "/guest/bookings", "manage bookings on the web"},
	{"Vendor dashboard", "/vendor/dashboard", "hotel and event management"},
}

type helpCommand struct {
	cmd  string
	desc string
}

var helpCommands = []helpCommand{
	{"booknstay", "open the terminal client"},
	{"booknstay login", "sign in from the command line"},
	{"booknstay register", "create an account"},
	{"booknstay logout", "forget the stored session"},
	{"booknstay whoami", "show the signed-in user"},
	{"booknstay bookings", "list your bookings"},
}

func helpView(cursor int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#38bdf8"))
	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	linkSelected := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#38bdf8"))

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", title.Render("BookNStay"))
	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range helpCommands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, l := range helpLinks {
		prefix := "    "
		label := cmdStyle.Render(fmt.Sprintf("%-20s", l.label))
		if i == cursor {
			prefix = "  " + accentStyle.Render("> ")
			label = linkSelected.Render(fmt.Sprintf("%-20s", l.label))
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, descStyle.Render(l.desc))
	}
	return b.String()
}
