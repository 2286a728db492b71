package models

import "strings"

// Placeholder values for fields the skills endpoint does not supply yet.
// Rating and review counts are synthesized until the backend grows a
// review system; the category default is only a fallback, the server
// value wins when present.
const (
	DefaultCategory      = "tech"
	DefaultRate          = 1
	DefaultServiceRating = 4.5
	DefaultDescription   = "No description"
	UnknownProvider      = "Unknown"
)

// Service is an offer a user posts describing something they can help with.
type Service struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Provider    string  `json:"provider"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Rate        int     `json:"rate"`
	Rating      float64 `json:"rating"`
	Reviews     int     `json:"reviews"`
	UserID      uint    `json:"user_id"`
}

// Matches reports whether the service passes a free-text search over
// title, description and provider plus an optional exact category filter.
func (s Service) Matches(search, category string) bool {
	if category != "" && s.Category != category {
		return false
	}
	if search == "" {
		return true
	}
	term := strings.ToLower(search)
	return strings.Contains(strings.ToLower(s.Title), term) ||
		strings.Contains(strings.ToLower(s.Description), term) ||
		strings.Contains(strings.ToLower(s.Provider), term)
}

// FilterServices returns the subset of services matching the search term
// and category filter, preserving order.
func FilterServices(services []Service, search, category string) []Service {
	filtered := make([]Service, 0, len(services))
	for _, s := range services {
		if s.Matches(search, category) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
