// Package pagination pages, filters and trims in-memory lists for listings the
// backend returns unpaged (categories, badges).
package pagination

import (
	"strings"

	"github.com/facuhernandez99/shario-admin/pkg/models"
)

// Paginate returns page (1-based) of items. The page is clamped into
// [1, TotalPages]; items keep their order.
func Paginate[T any](items []T, page, size int) models.Page[T] {
	if size <= 0 {
		size = models.DefaultListPageSize
	}

	total := len(items)
	totalPages := (total + size - 1) / size

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	pageItems := make([]T, end-start)
	copy(pageItems, items[start:end])

	return models.Page[T]{
		Items:      pageItems,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		TotalItems: total,
	}
}

// Filter returns the items keep accepts, in order
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Remove drops every item match accepts and keeps the rest in order
func Remove[T any](items []T, match func(T) bool) []T {
	return Filter(items, func(item T) bool { return !match(item) })
}

// MatchesQuery is a case-insensitive substring search over fields. An empty
// query matches everything.
func MatchesQuery(query string, fields ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}
