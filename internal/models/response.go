package models

// Envelope wraps every successful API response.
type Envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Meta    *PageMeta `json:"meta,omitempty"`
}

// PageMeta describes a paginated list.
type PageMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Page is a slice of results with the total number of matches.
type Page[T any] struct {
	Items []T
	Total int64
}
