package ingest

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/propvisor/propvisor-cli/internal/property"
)

// Row rejection reasons. Rejections are per-row outcomes, not propagated
// errors; the pipeline counts them and moves on.
var (
	ErrMissingLatitude  = errors.New("missing latitude")
	ErrMissingLongitude = errors.New("missing longitude")
	ErrMissingPrice     = errors.New("missing price")
	ErrMissingSaleDate  = errors.New("missing sale date")
	ErrBadLatitude      = errors.New("latitude is not a number")
	ErrBadLongitude     = errors.New("longitude is not a number")
	ErrBadPrice         = errors.New("price is not a number")
	ErrBadSaleDate      = errors.New("sale date is not a valid date")
)

// headerFields maps a cleaned header name to its target field. Unrecognized
// headers are ignored without error.
var headerFields = map[string]string{
	"address":       "address",
	"latitude":      "latitude",
	"longitude":     "longitude",
	"price":         "price",
	"sale date":     "saleDate",
	"sqft":          "sqft",
	"property type": "propertyType",
}

// canonicalField resolves a raw header to its target field name. Matching is
// case-insensitive and trims surrounding whitespace.
func canonicalField(header string) (string, bool) {
	f, ok := headerFields[strings.ToLower(strings.TrimSpace(header))]
	return f, ok
}

var saleDateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "01/02/2006", "1/2/2006",
	"2006-01-02 15:04", "2006-01-02 15:04:05",
}

func parseSaleDate(s string) (time.Time, bool) {
	for _, l := range saleDateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NormalizeRow converts one raw row (header → value) into a validated Sale,
// or returns a rejection reason. The record ID is the string form of
// rowIndex, the row's 0-based position in the parsed sequence; IDs are stable
// per upload but not contiguous once rejected rows are dropped.
//
// Pure function of its inputs: no side effects, no partial records.
func NormalizeRow(raw map[string]string, rowIndex int) (property.Sale, error) {
	mapped := make(map[string]string, len(headerFields))
	for header, value := range raw {
		if field, ok := canonicalField(header); ok {
			mapped[field] = value
		}
	}

	switch {
	case mapped["latitude"] == "":
		return property.Sale{}, ErrMissingLatitude
	case mapped["longitude"] == "":
		return property.Sale{}, ErrMissingLongitude
	case mapped["price"] == "":
		return property.Sale{}, ErrMissingPrice
	case mapped["saleDate"] == "":
		return property.Sale{}, ErrMissingSaleDate
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(mapped["latitude"]), 64)
	if err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return property.Sale{}, ErrBadLatitude
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(mapped["longitude"]), 64)
	if err != nil || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return property.Sale{}, ErrBadLongitude
	}
	price, err := strconv.Atoi(strings.TrimSpace(mapped["price"]))
	if err != nil {
		return property.Sale{}, ErrBadPrice
	}
	saleDate, ok := parseSaleDate(strings.TrimSpace(mapped["saleDate"]))
	if !ok {
		return property.Sale{}, ErrBadSaleDate
	}

	// Optional fields fall back rather than reject.
	sqft, err := strconv.Atoi(strings.TrimSpace(mapped["sqft"]))
	if err != nil || sqft < 0 {
		sqft = 0
	}
	propertyType := mapped["propertyType"]
	if propertyType == "" {
		propertyType = "Unknown"
	}

	return property.Sale{
		ID:           strconv.Itoa(rowIndex),
		Address:      mapped["address"],
		Latitude:     lat,
		Longitude:    lng,
		Price:        price,
		SaleDate:     saleDate,
		Sqft:         sqft,
		PropertyType: propertyType,
	}, nil
}
