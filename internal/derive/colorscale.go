package derive

import (
	"fmt"
	"math"

	"github.com/propvisor/propvisor-cli/internal/property"
)

// Color endpoints of the price scale: teal for the cheapest sale, amber for
// the most expensive.
var (
	scaleLow  = [3]int{70, 129, 137}
	scaleHigh = [3]int{226, 215, 161}
)

// midpointColor is emitted when the scale is degenerate (Min == Max).
const midpointColor = "#468189"

// PriceScale maps prices onto a continuous color gradient over the
// dataset's full price range.
type PriceScale struct {
	Min int
	Max int
}

// NewPriceScale builds a scale over the dataset's price bounds.
func NewPriceScale(records []property.Sale) PriceScale {
	b := DataBounds(records)
	return PriceScale{Min: b.MinPrice, Max: b.MaxPrice}
}

// ColorFor interpolates each RGB channel linearly between the scale
// endpoints, clamping prices outside [Min, Max]. A degenerate scale returns
// the fixed midpoint color.
func (s PriceScale) ColorFor(price int) string {
	if s.Max == s.Min {
		return midpointColor
	}
	ratio := float64(price-s.Min) / float64(s.Max-s.Min)
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	r := channel(scaleLow[0], scaleHigh[0], ratio)
	g := channel(scaleLow[1], scaleHigh[1], ratio)
	b := channel(scaleLow[2], scaleHigh[2], ratio)
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

func channel(low, high int, ratio float64) int {
	return int(math.Round(float64(low) + float64(high-low)*ratio))
}
