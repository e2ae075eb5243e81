package domain

import "time"

// Booking kinds.
const (
	BookingHotel = "hotel"
	BookingEvent = "event"
)

// Booking is a guest reservation of a hotel stay or event tickets.
type Booking struct {
	ID         int64      `json:"id"`
	Reference  string     `json:"reference"`
	Kind       string     `json:"type"`
	Status     string     `json:"status"` // "pending", "confirmed", "cancelled"
	Hotel      *Hotel     `json:"hotel,omitempty"`
	Event      *Event     `json:"event,omitempty"`
	CheckIn    *time.Time `json:"check_in,omitempty"`
	CheckOut   *time.Time `json:"check_out,omitempty"`
	Guests     int        `json:"guests,omitempty"`
	Tickets    int        `json:"tickets,omitempty"`
	TotalPrice float64    `json:"total_price"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Title returns the name of the booked hotel or event.
func (b Booking) Title() string {
	switch {
	case b.Hotel != nil:
		return b.Hotel.Name
	case b.Event != nil:
		return b.Event.Title
	}
	return b.Reference
}

// BookingInput is the payload for POST /bookings.
type BookingInput struct {
	Kind     string     `json:"type"`
	HotelID  int64      `json:"hotel_id,omitempty"`
	EventID  int64      `json:"event_id,omitempty"`
	CheckIn  *time.Time `json:"check_in,omitempty"`
	CheckOut *time.Time `json:"check_out,omitempty"`
	Guests   int        `json:"guests,omitempty"`
	Tickets  int        `json:"tickets,omitempty"`
}
