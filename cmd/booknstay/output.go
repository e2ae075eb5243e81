package main

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/qamarabbas408/booknstay/pkg/domain"
)

var welcomeLines = [...]string{
	"Rooms are filling up. Yours could be one of them.",
	"Somewhere a concert is about to sell out.",
	"The weekend is closer than it looks.",
	"Pack light. Book early.",
	"A good trip starts with a good bed.",
	"Check-in is at two. Planning starts now.",
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#38bdf8")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boldStyle  = lipgloss.NewStyle().Bold(true)
	priceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	roleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
)

func printWelcome(w io.Writer) {
	msg := welcomeLines[rand.Intn(len(welcomeLines))]
	hint := dimStyle.Render("To sign in: booknstay login --email you@example.com")
	fmt.Fprintf(w, "\n%s\n\n%s\n\n%s\n\n", titleStyle.Render("BOOKNSTAY"), dimStyle.Italic(true).Render(msg), hint) //nolint:errcheck
}

func printSignedIn(w io.Writer, s domain.Session) {
	if s.User == nil {
		return
	}
	fmt.Fprintf(w, "Signed in as %s %s\n", boldStyle.Render(s.User.Name), roleStyle.Render("["+string(s.User.Role)+"]")) //nolint:errcheck
}

func printSession(w io.Writer, s domain.Session) {
	u := s.User
	fmt.Fprintf(w, "%s <%s> %s\n", boldStyle.Render(u.Name), u.Email, roleStyle.Render("["+string(u.Role)+"]")) //nolint:errcheck
	if u.Status != "" {
		fmt.Fprintf(w, "  %s\n", dimStyle.Render("status: "+u.Status)) //nolint:errcheck
	}
}

func printHotels(w io.Writer, page domain.Page[domain.Hotel]) {
	if len(page.Data) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no hotels found")) //nolint:errcheck
		return
	}
	for _, h := range page.Data {
		fmt.Fprintf(w, "%5d  %-28s  %-14s  %s  %s\n", //nolint:errcheck
			h.ID, h.Name, h.City, strings.Repeat("*", h.StarRating), priceStyle.Render(price(h.PricePerNight)+"/night"))
	}
	printPageMeta(w, page.Meta, "hotels")
}

func printHotel(w io.Writer, h domain.Hotel) {
	fmt.Fprintf(w, "%s  %s\n", boldStyle.Render(h.Name), strings.Repeat("*", h.StarRating)) //nolint:errcheck
	fmt.Fprintf(w, "  %s\n", dimStyle.Render(strings.TrimSpace(h.Address+", "+h.City)))     //nolint:errcheck
	fmt.Fprintf(w, "  %s per night\n", priceStyle.Render(price(h.PricePerNight)))           //nolint:errcheck
	if len(h.Amenities) > 0 {
		names := make([]string, 0, len(h.Amenities))
		for _, a := range h.Amenities {
			names = append(names, a.Name)
		}
		fmt.Fprintf(w, "  %s\n", dimStyle.Render(strings.Join(names, ", "))) //nolint:errcheck
	}
	if h.Description != "" {
		fmt.Fprintf(w, "\n  %s\n", h.Description) //nolint:errcheck
	}
}

func printEvents(w io.Writer, page domain.Page[domain.Event]) {
	if len(page.Data) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no events found")) //nolint:errcheck
		return
	}
	for _, e := range page.Data {
		fmt.Fprintf(w, "%5d  %-28s  %s  %s  %s\n", //nolint:errcheck
			e.ID, e.Title, e.StartsAt.Format("02 Jan 2006 15:04"), priceStyle.Render(price(e.Price)), dimStyle.Render(seats(e)))
	}
	printPageMeta(w, page.Meta, "events")
}

func printEvent(w io.Writer, e domain.Event) {
	fmt.Fprintf(w, "%s\n", boldStyle.Render(e.Title))                                                     //nolint:errcheck
	fmt.Fprintf(w, "  %s\n", dimStyle.Render(strings.TrimSuffix(e.Venue+", "+e.City, ", ")))              //nolint:errcheck
	fmt.Fprintf(w, "  %s\n", e.StartsAt.Format("Mon 02 Jan 2006 15:04"))                                  //nolint:errcheck
	fmt.Fprintf(w, "  %s per ticket, %s\n", priceStyle.Render(price(e.Price)), dimStyle.Render(seats(e))) //nolint:errcheck
	if e.Description != "" {
		fmt.Fprintf(w, "\n  %s\n", e.Description) //nolint:errcheck
	}
}

func printBookings(w io.Writer, page domain.Page[domain.Booking]) {
	if len(page.Data) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no bookings yet")) //nolint:errcheck
		return
	}
	for _, b := range page.Data {
		fmt.Fprintf(w, "%-12s  %-28s  %-5s  %-9s  %s\n", //nolint:errcheck
			b.Reference, b.Title(), b.Kind, b.Status, priceStyle.Render(price(b.TotalPrice)))
	}
}

func printBooking(w io.Writer, b domain.Booking) {
	fmt.Fprintf(w, "%s  %s\n", boldStyle.Render(b.Title()), b.Status) //nolint:errcheck
	fmt.Fprintf(w, "  reference %s\n", b.Reference)                   //nolint:errcheck
	if b.Kind == domain.BookingHotel && b.CheckIn != nil && b.CheckOut != nil {
		fmt.Fprintf(w, "  %s to %s, %d guest(s)\n", //nolint:errcheck
			b.CheckIn.Format("02 Jan 2006"), b.CheckOut.Format("02 Jan 2006"), b.Guests)
	}
	if b.Kind == domain.BookingEvent {
		fmt.Fprintf(w, "  %d ticket(s)\n", b.Tickets) //nolint:errcheck
	}
	fmt.Fprintf(w, "  total %s\n", priceStyle.Render(price(b.TotalPrice))) //nolint:errcheck
}

func printPageMeta(w io.Writer, meta domain.PageMeta, noun string) {
	if meta.LastPage > 1 {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("page %d of %d, %d %s", meta.CurrentPage, meta.LastPage, meta.Total, noun))) //nolint:errcheck
	}
}

func price(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func seats(e domain.Event) string {
	switch left := e.SeatsLeft(); {
	case left < 0:
		return "open"
	case left == 0:
		return "sold out"
	default:
		return fmt.Sprintf("%d left", left)
	}
}
