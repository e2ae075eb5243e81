package api

import "strconv"

// Tag groups cached reads so one mutation can invalidate all of them.
type Tag string

const (
	TagHotel        Tag = "Hotel"
	TagEvent        Tag = "Event"
	TagBooking      Tag = "Booking"
	TagVendorEvents Tag = "VendorEvents"
	TagVendorEvent  Tag = "VendorEvent"
)

// TagRef is a tag, optionally scoped to one record id.
type TagRef struct {
	Tag Tag
	ID  string
}

// Whole refers to every entry under t.
func Whole(t Tag) TagRef {
	return TagRef{Tag: t}
}

// ByID refers to the entry of one record under t.
func ByID(t Tag, id int64) TagRef {
	return TagRef{Tag: t, ID: strconv.FormatInt(id, 10)}
}

func (r TagRef) String() string {
	if r.ID == "" {
		return string(r.Tag)
	}
	return string(r.Tag) + ":" + r.ID
}

// covers reports whether invalidating r affects an entry that provided p.
// A whole-tag ref covers every id; an id ref covers only that id.
func (r TagRef) covers(p TagRef) bool {
	if r.Tag != p.Tag {
		return false
	}
	return r.ID == "" || r.ID == p.ID
}
