package property

import "time"

// Sale is one validated property sale record. Instances are created only by
// the ingestion pipeline and are immutable afterwards; a new upload replaces
// the whole dataset rather than mutating records in place.
type Sale struct {
	ID           string    `json:"id"`
	Address      string    `json:"address"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Price        int       `json:"price"`
	SaleDate     time.Time `json:"saleDate"`
	Sqft         int       `json:"sqft"`
	PropertyType string    `json:"propertyType"`
}

// TypeAll is the property-type filter value meaning no category restriction.
const TypeAll = "all"

// Filters holds the active view constraints. Ranges are inclusive ordered
// pairs [min, max].
type Filters struct {
	PriceRange   [2]int `json:"priceRange"`
	SqftRange    [2]int `json:"sqftRange"`
	PropertyType string `json:"propertyType"`
}

// Valid reports whether both ranges are ordered and a property type is set.
func (f Filters) Valid() bool {
	return f.PriceRange[0] <= f.PriceRange[1] &&
		f.SqftRange[0] <= f.SqftRange[1] &&
		f.PropertyType != ""
}

// Bounds are the legal [min, max] limits for the range filters, derived from
// the full dataset.
type Bounds struct {
	MinPrice int `json:"minPrice"`
	MaxPrice int `json:"maxPrice"`
	MinSqft  int `json:"minSqft"`
	MaxSqft  int `json:"maxSqft"`
}

// Filters returns the widest filters allowed by the bounds.
func (b Bounds) Filters() Filters {
	return Filters{
		PriceRange:   [2]int{b.MinPrice, b.MaxPrice},
		SqftRange:    [2]int{b.MinSqft, b.MaxSqft},
		PropertyType: TypeAll,
	}
}

// MonthlyStat aggregates the sales of one calendar month. Month is formatted
// "YYYY-MM" so lexicographic order matches date order.
type MonthlyStat struct {
	Month        string  `json:"month"`
	SalesVolume  int     `json:"salesVolume"`
	AveragePrice float64 `json:"averagePrice"`
}

// ScatterPoint is one record projected onto the price/size plane.
type ScatterPoint struct {
	Sqft    int    `json:"sqft"`
	Price   int    `json:"price"`
	Address string `json:"address"`
}

// Coordinate is a geographic point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
