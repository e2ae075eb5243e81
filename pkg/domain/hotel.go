package domain

import "time"

// Hotel is a bookable property listed by a vendor.
type Hotel struct {
	ID            int64      `json:"id"`
	VendorID      int64      `json:"vendor_id,omitempty"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	City          string     `json:"city"`
	Address       string     `json:"address,omitempty"`
	StarRating    int        `json:"star_rating,omitempty"`
	PricePerNight float64    `json:"price_per_night"`
	Rating        float64    `json:"rating,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Amenities     []Category `json:"amenities,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HotelFilter narrows the hotel list. Zero values are omitted from the query.
type HotelFilter struct {
	Search string `json:"search,omitempty"`
	City   string `json:"city,omitempty"`
	Page   int    `json:"page,omitempty"`
}

// HotelInput is the form used to create a hotel.
type HotelInput struct {
	Name          string
	Description   string
	City          string
	Address       string
	StarRating    int
	PricePerNight float64
	AmenityIDs    []int64
	Images        []Upload
}

// Upload is a file attached to a multipart form.
type Upload struct {
	Filename string
	Content  []byte
}
