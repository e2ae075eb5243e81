package domain

import "time"

// Event is a ticketed event listed by a vendor.
type Event struct {
	ID          int64     `json:"id"`
	VendorID    int64     `json:"vendor_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Venue       string    `json:"venue"`
	City        string    `json:"city,omitempty"`
	CategoryID  int64     `json:"category_id,omitempty"`
	Category    *Category `json:"category,omitempty"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at,omitempty"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity,omitempty"`
	TicketsSold int       `json:"tickets_sold,omitempty"`
	Status      string    `json:"status,omitempty"` // "draft", "published", "cancelled"
	ImageURL    string    `json:"image_url,omitempty"`
}

// SeatsLeft returns the remaining capacity, or -1 when the event is unlimited.
func (e Event) SeatsLeft() int {
	if e.Capacity <= 0 {
		return -1
	}
	if left := e.Capacity - e.TicketsSold; left > 0 {
		return left
	}
	return 0
}

// EventFilter narrows the event list.
type EventFilter struct {
	Search   string `json:"search,omitempty"`
	Category int64  `json:"category,omitempty"`
	Page     int    `json:"page,omitempty"`
}

// EventInput is the vendor form used to create or update an event.
type EventInput struct {
	Title       string
	Description string
	Venue       string
	City        string
	CategoryID  int64
	StartsAt    time.Time
	EndsAt      time.Time
	Price       float64
	Capacity    int
	Images      []Upload
}
