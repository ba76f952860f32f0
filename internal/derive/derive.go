// Package derive computes the view of a dataset that a presentation layer
// renders: the filtered subset, range bounds, monthly aggregates, the
// price/size scatter projection, the price color scale, and the map center.
//
// Everything here is a pure function of (records, filters): results are
// recomputed from scratch on every call and inputs are never mutated.
package derive

import (
	"sort"
	"strings"

	"github.com/propvisor/propvisor-cli/internal/property"
)

// Fallback bounds keep range controls well-formed when the dataset is empty.
const (
	fallbackMaxPrice = 10_000_000
	fallbackMaxSqft  = 10_000
)

// Fallback map center: geographic center of the contiguous US.
var fallbackCenter = property.Coordinate{Latitude: 39.8283, Longitude: -98.5795}

// Filter returns the records visible under the given filters. A record is
// visible iff its price and sqft fall inside the inclusive ranges and the
// type filter is the "all" sentinel or matches case-insensitively. File
// order is preserved.
func Filter(records []property.Sale, filters property.Filters) []property.Sale {
	out := make([]property.Sale, 0, len(records))
	for _, rec := range records {
		if rec.Price < filters.PriceRange[0] || rec.Price > filters.PriceRange[1] {
			continue
		}
		if rec.Sqft < filters.SqftRange[0] || rec.Sqft > filters.SqftRange[1] {
			continue
		}
		if filters.PropertyType != property.TypeAll &&
			!strings.EqualFold(filters.PropertyType, rec.PropertyType) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// DataBounds derives the [min, max] price and sqft limits from the full
// dataset. An empty dataset falls back to fixed defaults so range controls
// stay usable.
func DataBounds(records []property.Sale) property.Bounds {
	if len(records) == 0 {
		return property.Bounds{MaxPrice: fallbackMaxPrice, MaxSqft: fallbackMaxSqft}
	}
	b := property.Bounds{
		MinPrice: records[0].Price,
		MaxPrice: records[0].Price,
		MinSqft:  records[0].Sqft,
		MaxSqft:  records[0].Sqft,
	}
	for _, rec := range records[1:] {
		if rec.Price < b.MinPrice {
			b.MinPrice = rec.Price
		}
		if rec.Price > b.MaxPrice {
			b.MaxPrice = rec.Price
		}
		if rec.Sqft < b.MinSqft {
			b.MinSqft = rec.Sqft
		}
		if rec.Sqft > b.MaxSqft {
			b.MaxSqft = rec.Sqft
		}
	}
	return b
}

// MonthlyStats groups records by the calendar year-month of their sale date
// and aggregates volume and average price per group, sorted ascending by
// month key ("YYYY-MM" sorts lexicographically in date order).
func MonthlyStats(records []property.Sale) []property.MonthlyStat {
	type acc struct {
		volume int
		count  int
	}
	byMonth := make(map[string]*acc)
	for _, rec := range records {
		key := rec.SaleDate.Format("2006-01")
		a := byMonth[key]
		if a == nil {
			a = &acc{}
			byMonth[key] = a
		}
		a.volume += rec.Price
		a.count++
	}
	out := make([]property.MonthlyStat, 0, len(byMonth))
	for month, a := range byMonth {
		out = append(out, property.MonthlyStat{
			Month:        month,
			SalesVolume:  a.volume,
			AveragePrice: float64(a.volume) / float64(a.count),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ScatterPoints projects each record onto (sqft, price, address); a direct
// 1:1 mapping with no aggregation.
func ScatterPoints(records []property.Sale) []property.ScatterPoint {
	out := make([]property.ScatterPoint, len(records))
	for i, rec := range records {
		out[i] = property.ScatterPoint{Sqft: rec.Sqft, Price: rec.Price, Address: rec.Address}
	}
	return out
}

// PropertyTypes lists the distinct property types present, in first-seen
// order, with the "all" sentinel first.
func PropertyTypes(records []property.Sale) []string {
	out := []string{property.TypeAll}
	seen := make(map[string]bool)
	for _, rec := range records {
		if !seen[rec.PropertyType] {
			seen[rec.PropertyType] = true
			out = append(out, rec.PropertyType)
		}
	}
	return out
}

// MapCenter is the arithmetic mean of all coordinates in the unfiltered
// dataset, or a fixed fallback when the dataset is empty.
func MapCenter(records []property.Sale) property.Coordinate {
	if len(records) == 0 {
		return fallbackCenter
	}
	var sumLat, sumLng float64
	for _, rec := range records {
		sumLat += rec.Latitude
		sumLng += rec.Longitude
	}
	n := float64(len(records))
	return property.Coordinate{Latitude: sumLat / n, Longitude: sumLng / n}
}
