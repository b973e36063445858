package products

import (
	"sort"
	"strings"
)

// SortKey selects the display ordering of the filtered product list.
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
)

// Query holds the active display filters. Zero-valued fields are inactive:
// empty strings mean no filter, nil price bounds mean unbounded.
type Query struct {
	Category   string
	SearchTerm string
	MinPrice   *float64
	MaxPrice   *float64
	SortKey    SortKey
}

// FilterAndSort derives the display list from the full product collection.
// Steps apply in a fixed order: category, search term, price range, sort.
// The input slice is never mutated; ties keep their relative order
// (sort.SliceStable), so SortDefault preserves backend-supplied order.
func FilterAndSort(all []Product, q Query) []Product {
	filtered := make([]Product, 0, len(all))

	category := strings.ToLower(strings.TrimSpace(q.Category))
	term := strings.ToLower(strings.TrimSpace(q.SearchTerm))

	for _, p := range all {
		if category != "" && !strings.Contains(strings.ToLower(p.Category), category) {
			continue
		}
		if term != "" && !matchesSearch(p, term) {
			continue
		}
		if !withinPriceRange(p.Price, q.MinPrice, q.MaxPrice) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch q.SortKey {
	case SortPriceLow:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case SortPriceHigh:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	case SortRating:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Rating > filtered[j].Rating })
	case SortName:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })
	}

	return filtered
}

func matchesSearch(p Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.Category), term)
}

func withinPriceRange(price float64, min, max *float64) bool {
	if min == nil && max == nil {
		return true
	}
	low := 0.0
	if min != nil {
		low = *min
	}
	if price < low {
		return false
	}
	if max != nil && price > *max {
		return false
	}
	return true
}

// Categories returns the distinct lower-cased categories present in the
// collection, in first-seen order.
func Categories(all []Product) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 8)
	for _, p := range all {
		c := strings.ToLower(strings.TrimSpace(p.Category))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
