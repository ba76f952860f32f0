package session

import (
	"fmt"
	"strings"
)

// Markdown renders a compact report of the derived view, suitable for a
// terminal or a standalone doc.
func (v View) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET]\n")
	b.WriteString(fmt.Sprintf("Records: %d (visible %d)\n", v.TotalRecords, len(v.Records)))
	b.WriteString(fmt.Sprintf("Price bounds: $%d – $%d\n", v.Bounds.MinPrice, v.Bounds.MaxPrice))
	b.WriteString(fmt.Sprintf("Sqft bounds: %d – %d\n", v.Bounds.MinSqft, v.Bounds.MaxSqft))
	b.WriteString(fmt.Sprintf("Map center: %.4f, %.4f\n", v.MapCenter.Latitude, v.MapCenter.Longitude))

	if len(v.PropertyTypes) > 1 {
		b.WriteString("\n[PROPERTY TYPES]\n")
		for _, t := range v.PropertyTypes[1:] {
			b.WriteString("- ")
			b.WriteString(t)
			b.WriteString("\n")
		}
	}

	if len(v.Monthly) > 0 {
		b.WriteString("\n[SALES BY MONTH]\n")
		b.WriteString("| Month | Sales Volume | Average Price |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, m := range v.Monthly {
			b.WriteString(fmt.Sprintf("| %s | $%d | $%.0f |\n", m.Month, m.SalesVolume, m.AveragePrice))
		}
	}

	if len(v.Scatter) > 0 {
		b.WriteString("\n[PRICE VS SQFT]\n")
		limit := 10
		if len(v.Scatter) < limit {
			limit = len(v.Scatter)
		}
		for i := 0; i < limit; i++ {
			p := v.Scatter[i]
			addr := p.Address
			if addr == "" {
				addr = "(no address)"
			}
			b.WriteString(fmt.Sprintf("- %s: %d sqft, $%d\n", addr, p.Sqft, p.Price))
		}
		if len(v.Scatter) > limit {
			b.WriteString(fmt.Sprintf("- ... and %d more\n", len(v.Scatter)-limit))
		}
	}
	return b.String()
}
