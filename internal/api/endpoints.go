package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qamarabbas408/booknstay/pkg/client"
	"github.com/qamarabbas408/booknstay/pkg/domain"
)

// None is the argument of operations that take no parameters.
type None struct{}

// EventUpdate is the argument of UpdateEventMutation.
type EventUpdate struct {
	ID    int64
	Input domain.EventInput
}

// --- Auth ---

var LoginMutation = MutationDef[domain.LoginRequest, domain.AuthResponse]{
	Name: "login",
	Request: func(in domain.LoginRequest) client.Request {
		return client.Request{Method: http.MethodPost, Path: "/login", Body: in}
	},
}

var RegisterMutation = MutationDef[domain.RegisterRequest, domain.AuthResponse]{
	Name: "register",
	Request: func(in domain.RegisterRequest) client.Request {
		return client.Request{Method: http.MethodPost, Path: "/register", Body: in}
	},
}

// --- Hotels ---

var HotelsQuery = QueryDef[domain.HotelFilter, domain.Page[domain.Hotel]]{
	Name: "hotels",
	Request: func(f domain.HotelFilter) client.Request {
		q := url.Values{}
		setString(q, "search", f.Search)
		setString(q, "city", f.City)
		setInt(q, "page", int64(f.Page))
		return client.Request{Path: "/hotels", Query: q}
	},
	Provides: func(domain.HotelFilter) []TagRef { return []TagRef{Whole(TagHotel)} },
}

var HotelQuery = QueryDef[int64, domain.Hotel]{
	Name: "hotel",
	Request: func(id int64) client.Request {
		return client.Request{Path: "/hotels/" + strconv.FormatInt(id, 10)}
	},
	Provides: func(id int64) []TagRef { return []TagRef{ByID(TagHotel, id)} },
}

var CreateHotelMutation = MutationDef[domain.HotelInput, domain.Hotel]{
	Name: "createHotel",
	Request: func(in domain.HotelInput) client.Request {
		return client.Request{Method: http.MethodPost, Path: "/hotels", Body: hotelForm(in)}
	},
	Invalidates: func(domain.HotelInput, domain.Hotel) []TagRef { return []TagRef{Whole(TagHotel)} },
}

// --- Events ---

var EventsQuery = QueryDef[domain.EventFilter, domain.Page[domain.Event]]{
	Name: "events",
	Request: func(f domain.EventFilter) client.Request {
		q := url.Values{}
		setString(q, "search", f.Search)
		setInt(q, "category", f.Category)
		setInt(q, "page", int64(f.Page))
		return client.Request{Path: "/events", Query: q}
	},
	Provides: func(domain.EventFilter) []TagRef { return []TagRef{Whole(TagEvent)} },
}

var EventQuery = QueryDef[int64, domain.Event]{
	Name: "event",
	Request: func(id int64) client.Request {
		return client.Request{Path: "/events/" + strconv.FormatInt(id, 10)}
	},
	Provides: func(id int64) []TagRef { return []TagRef{ByID(TagEvent, id)} },
}

var CreateEventMutation = MutationDef[domain.EventInput, domain.Event]{
	Name: "createEvent",
	Request: func(in domain.EventInput) client.Request {
		return client.Request{Method: http.MethodPost, Path: "/vendor/events", Body: eventForm(in)}
	},
	Invalidates: func(domain.EventInput, domain.Event) []TagRef {
		return []TagRef{Whole(TagEvent), Whole(TagVendorEvents)}
	},
}

// UpdateEventMutation posts the form with _method=PUT because multipart bodies are only
// parsed on POST by the API.
var UpdateEventMutation = MutationDef[EventUpdate, domain.Event]{
	Name: "updateEvent",
	Request: func(in EventUpdate) client.Request {
		form := eventForm(in.Input).Add("_method", http.MethodPut)
		return client.Request{Method: http.MethodPost, Path: "/vendor/events/" + strconv.FormatInt(in.ID, 10), Body: form}
	},
	Invalidates: func(in EventUpdate, _ domain.Event) []TagRef {
		return []TagRef{Whole(TagEvent), Whole(TagVendorEvents), ByID(TagVendorEvent, in.ID)}
	},
}

var VendorEventsQuery = QueryDef[None, domain.Page[domain.Event]]{
	Name: "vendorEvents",
	Request: func(None) client.Request {
		return client.Request{Path: "/vendor/events"}
	},
	Provides: func(None) []TagRef { return []TagRef{Whole(TagVendorEvents)} },
}

var VendorEventQuery = QueryDef[int64, domain.Event]{
	Name: "vendorEvent",
	Request: func(id int64) client.Request {
		return client.Request{Path: "/vendor/events/" + strconv.FormatInt(id, 10)}
	},
	Provides: func(id int64) []TagRef { return []TagRef{ByID(TagVendorEvent, id)} },
}

// --- Bookings ---

var GuestBookingsQuery = QueryDef[None, domain.Page[domain.Booking]]{
	Name: "guestBookings",
	Request: func(None) client.Request {
		return client.Request{Path: "/guest/bookings"}
	},
	Provides: func(None) []TagRef { return []TagRef{Whole(TagBooking)} },
}

var GuestBookingQuery = QueryDef[int64, domain.Booking]{
	Name: "guestBooking",
	Request: func(id int64) client.Request {
		return client.Request{Path: "/guest/bookings/" + strconv.FormatInt(id, 10)}
	},
	Provides: func(id int64) []TagRef { return []TagRef{ByID(TagBooking, id)} },
}

var CreateBookingMutation = MutationDef[domain.BookingInput, domain.Booking]{
	Name: "createBooking",
	Request: func(in domain.BookingInput) client.Request {
		return client.Request{Method: http.MethodPost, Path: "/bookings", Body: in}
	},
	Invalidates: func(domain.BookingInput, domain.Booking) []TagRef { return []TagRef{Whole(TagBooking)} },
}

// --- Reference data (read-only, never invalidated) ---

var InterestsQuery = QueryDef[None, []domain.Category]{
	Name:    "interests",
	Request: func(None) client.Request { return client.Request{Path: "/interests"} },
}

var AmenitiesQuery = QueryDef[None, []domain.Category]{
	Name:    "amenities",
	Request: func(None) client.Request { return client.Request{Path: "/amenities"} },
}

var EventCategoriesQuery = QueryDef[None, []domain.Category]{
	Name:    "eventCategories",
	Request: func(None) client.Request { return client.Request{Path: "/event-categories"} },
}

// Login authenticates; the auth slice picks up the credentials from the fulfilled event.
func (a *API) Login(ctx context.Context, in domain.LoginRequest) (domain.AuthResponse, error) {
	return Mutate(ctx, a, LoginMutation, in)
}

// Register creates an account and logs it in.
func (a *API) Register(ctx context.Context, in domain.RegisterRequest) (domain.AuthResponse, error) {
	return Mutate(ctx, a, RegisterMutation, in)
}

// Hotels lists hotels matching f.
func (a *API) Hotels(ctx context.Context, f domain.HotelFilter) (domain.Page[domain.Hotel], error) {
	return Query(ctx, a, HotelsQuery, f)
}

// Hotel fetches one hotel.
func (a *API) Hotel(ctx context.Context, id int64) (domain.Hotel, error) {
	return Query(ctx, a, HotelQuery, id)
}

// CreateHotel uploads a new hotel.
func (a *API) CreateHotel(ctx context.Context, in domain.HotelInput) (domain.Hotel, error) {
	return Mutate(ctx, a, CreateHotelMutation, in)
}

// Events lists events matching f.
func (a *API) Events(ctx context.Context, f domain.EventFilter) (domain.Page[domain.Event], error) {
	return Query(ctx, a, EventsQuery, f)
}

// Event fetches one event.
func (a *API) Event(ctx context.Context, id int64) (domain.Event, error) {
	return Query(ctx, a, EventQuery, id)
}

// CreateEvent creates a vendor event.
func (a *API) CreateEvent(ctx context.Context, in domain.EventInput) (domain.Event, error) {
	return Mutate(ctx, a, CreateEventMutation, in)
}

// UpdateEvent replaces a vendor event.
func (a *API) UpdateEvent(ctx context.Context, id int64, in domain.EventInput) (domain.Event, error) {
	return Mutate(ctx, a, UpdateEventMutation, EventUpdate{ID: id, Input: in})
}

// VendorEvents lists the events owned by the logged-in vendor.
func (a *API) VendorEvents(ctx context.Context) (domain.Page[domain.Event], error) {
	return Query(ctx, a, VendorEventsQuery, None{})
}

// VendorEvent fetches one vendor-owned event.
func (a *API) VendorEvent(ctx context.Context, id int64) (domain.Event, error) {
	return Query(ctx, a, VendorEventQuery, id)
}

// GuestBookings lists the logged-in guest's bookings.
func (a *API) GuestBookings(ctx context.Context) (domain.Page[domain.Booking], error) {
	return Query(ctx, a, GuestBookingsQuery, None{})
}

// GuestBooking fetches one of the guest's bookings.
func (a *API) GuestBooking(ctx context.Context, id int64) (domain.Booking, error) {
	return Query(ctx, a, GuestBookingQuery, id)
}

// CreateBooking books a hotel stay or event tickets.
func (a *API) CreateBooking(ctx context.Context, in domain.BookingInput) (domain.Booking, error) {
	return Mutate(ctx, a, CreateBookingMutation, in)
}

// Interests lists interest categories.
func (a *API) Interests(ctx context.Context) ([]domain.Category, error) {
	return Query(ctx, a, InterestsQuery, None{})
}

// Amenities lists amenity categories.
func (a *API) Amenities(ctx context.Context) ([]domain.Category, error) {
	return Query(ctx, a, AmenitiesQuery, None{})
}

// EventCategories lists event categories.
func (a *API) EventCategories(ctx context.Context) ([]domain.Category, error) {
	return Query(ctx, a, EventCategoriesQuery, None{})
}

// Prefetch warms the reference lists concurrently.
func (a *API) Prefetch(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { _, err := a.Interests(ctx); return err })
	g.Go(func() error { _, err := a.Amenities(ctx); return err })
	g.Go(func() error { _, err := a.EventCategories(ctx); return err })
	return g.Wait()
}

func hotelForm(in domain.HotelInput) *client.Multipart {
	form := client.NewMultipart().
		Add("name", in.Name).
		Add("description", in.Description).
		Add("city", in.City).
		Add("address", in.Address).
		Add("star_rating", strconv.Itoa(in.StarRating)).
		Add("price_per_night", strconv.FormatFloat(in.PricePerNight, 'f', 2, 64))
	for _, id := range in.AmenityIDs {
		form.Add("amenities[]", strconv.FormatInt(id, 10))
	}
	for _, img := range in.Images {
		form.AddFile("images[]", img.Filename, img.Content)
	}
	return form
}

func eventForm(in domain.EventInput) *client.Multipart {
	form := client.NewMultipart().
		Add("title", in.Title).
		Add("description", in.Description).
		Add("venue", in.Venue).
		Add("city", in.City).
		Add("category_id", strconv.FormatInt(in.CategoryID, 10)).
		Add("starts_at", in.StartsAt.Format(time.RFC3339)).
		Add("price", strconv.FormatFloat(in.Price, 'f', 2, 64)).
		Add("capacity", strconv.Itoa(in.Capacity))
	if !in.EndsAt.IsZero() {
		form.Add("ends_at", in.EndsAt.Format(time.RFC3339))
	}
	for _, img := range in.Images {
		form.AddFile("images[]", img.Filename, img.Content)
	}
	return form
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setInt(q url.Values, key string, v int64) {
	if v != 0 {
		q.Set(key, strconv.FormatInt(v, 10))
	}
}
