package derive

import (
	"testing"
	"time"

	"github.com/propvisor/propvisor-cli/internal/property"
)

func TestColorForEndpoints(t *testing.T) {
	s := PriceScale{Min: 100000, Max: 900000}
	if got := s.ColorFor(100000); got != "rgb(70, 129, 137)" {
		t.Errorf("ColorFor(min) = %q, want teal endpoint", got)
	}
	if got := s.ColorFor(900000); got != "rgb(226, 215, 161)" {
		t.Errorf("ColorFor(max) = %q, want amber endpoint", got)
	}
}

func TestColorForMidpoint(t *testing.T) {
	s := PriceScale{Min: 0, Max: 100}
	// Each channel interpolates halfway and rounds to nearest.
	if got := s.ColorFor(50); got != "rgb(148, 172, 149)" {
		t.Errorf("ColorFor(mid) = %q", got)
	}
}

func TestColorForDegenerateScale(t *testing.T) {
	s := PriceScale{Min: 500000, Max: 500000}
	if got := s.ColorFor(500000); got != "#468189" {
		t.Errorf("degenerate ColorFor = %q, want #468189", got)
	}
	if s.ColorFor(0) != s.ColorFor(1000000) {
		t.Errorf("degenerate scale should be constant")
	}
}

func TestColorForClampsOutOfRange(t *testing.T) {
	s := PriceScale{Min: 100, Max: 200}
	if s.ColorFor(0) != s.ColorFor(100) {
		t.Errorf("below-min price should clamp to the low endpoint")
	}
	if s.ColorFor(1000) != s.ColorFor(200) {
		t.Errorf("above-max price should clamp to the high endpoint")
	}
}

func TestNewPriceScaleFromRecords(t *testing.T) {
	now := time.Now()
	records := []property.Sale{
		{ID: "0", Price: 250000, SaleDate: now},
		{ID: "1", Price: 750000, SaleDate: now},
	}
	s := NewPriceScale(records)
	if s.Min != 250000 || s.Max != 750000 {
		t.Errorf("scale = %+v", s)
	}
}
