// Package session owns the mutable state of one analysis session: the
// current dataset, its raw CSV text, the active filters, and the summary
// generation counter. All derived data is recomputed from this state on
// demand, so the core stays testable without any UI or HTTP harness.
package session

import (
	"errors"
	"sync"

	"github.com/propvisor/propvisor-cli/internal/derive"
	"github.com/propvisor/propvisor-cli/internal/ingest"
	"github.com/propvisor/propvisor-cli/internal/property"
)

// ErrInvalidFilters rejects filter updates whose ranges are not ordered.
var ErrInvalidFilters = errors.New("invalid filters: ranges must be ordered [min, max]")

// ErrStaleSummary marks a summary response that arrived after the dataset
// it described was replaced.
var ErrStaleSummary = errors.New("summary response is stale")

// View is the derived data a presentation layer renders. It is ephemeral:
// rebuilt in full whenever the dataset or filters change, never patched.
type View struct {
	Records       []property.Sale         `json:"records"`
	Bounds        property.Bounds         `json:"bounds"`
	Monthly       []property.MonthlyStat  `json:"monthly"`
	Scatter       []property.ScatterPoint `json:"scatter"`
	PropertyTypes []string                `json:"propertyTypes"`
	MapCenter     property.Coordinate     `json:"mapCenter"`
	Colors        map[string]string       `json:"colors"`
	TotalRecords  int                     `json:"totalRecords"`
}

// Session is safe for concurrent use; HTTP handlers and the summary
// requester share one instance.
type Session struct {
	mu         sync.Mutex
	records    []property.Sale
	rawText    string
	filters    property.Filters
	generation uint64
	summary    string
}

// New returns an empty session with the widest default filters.
func New() *Session {
	return &Session{filters: derive.DataBounds(nil).Filters()}
}

// Load ingests raw CSV text and, on success, replaces the dataset, stores
// the raw text, resets the filters to the new dataset's full bounds, and
// invalidates any in-flight summary request. On failure prior state is left
// untouched.
func (s *Session) Load(rawText string) (*ingest.Result, error) {
	res, err := ingest.CSV(rawText)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = res.Records
	s.rawText = res.RawText
	s.filters = derive.DataBounds(res.Records).Filters()
	s.generation++
	s.summary = ""
	return res, nil
}

// Filters returns a copy of the active filters.
func (s *Session) Filters() property.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetFilters replaces the active filters after validating range order.
func (s *Session) SetFilters(f property.Filters) error {
	if !f.Valid() {
		return ErrInvalidFilters
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
	return nil
}

// RawText returns the raw CSV text of the current dataset along with the
// generation tag a summary request must carry to be accepted.
func (s *Session) RawText() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawText, s.generation
}

// AcceptSummary records a summary response. Responses tagged with an older
// generation than the current dataset are discarded with ErrStaleSummary;
// without this guard a slow response for a replaced dataset could overwrite
// a fresh one.
func (s *Session) AcceptSummary(generation uint64, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		return ErrStaleSummary
	}
	s.summary = summary
	return nil
}

// Summary returns the last accepted summary, or "" when none is available.
func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// View recomputes the full derived view from the current dataset and
// filters. Bounds, map center, and the color scale come from the unfiltered
// dataset; everything else from the filtered subset.
func (s *Session) View() View {
	s.mu.Lock()
	records := s.records
	filters := s.filters
	s.mu.Unlock()
	return BuildView(records, filters)
}

// BuildView derives the presentation view for an arbitrary dataset and
// filter combination. Pure function: identical inputs yield identical
// output and neither argument is mutated.
func BuildView(records []property.Sale, filters property.Filters) View {
	visible := derive.Filter(records, filters)
	scale := derive.NewPriceScale(records)
	colors := make(map[string]string, len(visible))
	for _, rec := range visible {
		colors[rec.ID] = scale.ColorFor(rec.Price)
	}
	return View{
		Records:       visible,
		Bounds:        derive.DataBounds(records),
		Monthly:       derive.MonthlyStats(visible),
		Scatter:       derive.ScatterPoints(visible),
		PropertyTypes: derive.PropertyTypes(records),
		MapCenter:     derive.MapCenter(records),
		Colors:        colors,
		TotalRecords:  len(records),
	}
}
