package domain

// PageMeta is the pagination block of list responses.
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// Page is one page of a list response.
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// HasMore reports whether a later page exists.
func (p Page[T]) HasMore() bool {
	return p.Meta.CurrentPage < p.Meta.LastPage
}
