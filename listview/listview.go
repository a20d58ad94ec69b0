// Package listview derives the page of listings the dashboard renders from
// the full collection held in memory. Filtering and pagination are pure and
// order-preserving.
package listview

import (
	"strings"

	"realtydesk/models"
)

// Filter selects listings. Zero-valued fields are vacuously satisfied.
type Filter struct {
	Query        string
	MinPrice     *float64
	MaxPrice     *float64
	PropertyType models.PropertyType
	Status       models.ListingStatus
}

// Page is a zero-based window into the filtered collection.
type Page struct {
	Index int
	Size  int
}

// Matches reports whether a single listing passes the filter.
func (f Filter) Matches(l models.Listing) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(l.Title), q) &&
			!strings.Contains(strings.ToLower(l.Address), q) &&
			!strings.Contains(strings.ToLower(string(l.PropertyType)), q) &&
			!strings.Contains(strings.ToLower(string(l.Status)), q) &&
			!strings.Contains(l.PriceString(), f.Query) {
			return false
		}
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.PropertyType != "" && l.PropertyType != f.PropertyType {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	return true
}

// Apply filters records in input order and slices out the requested page.
// It returns the page and the total number of matches; an out-of-range page
// yields an empty slice.
func Apply(records []models.Listing, f Filter, p Page) ([]models.Listing, int) {
	filtered := make([]models.Listing, 0, len(records))
	for _, l := range records {
		if f.Matches(l) {
			filtered = append(filtered, l)
		}
	}

	start := p.Index * p.Size
	if start >= len(filtered) || p.Size <= 0 || p.Index < 0 {
		return []models.Listing{}, len(filtered)
	}
	end := start + p.Size
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], len(filtered)
}
