package rotation

import (
	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/seed"
)

// View names one of the orderings an Engine produces.
type View string

const (
	ViewMaster     View = "master"
	ViewHighlights View = "highlights"
	ViewFeatured   View = "featured"
)

// Selection is the ordered output of one view for one day.
type Selection struct {
	Date    string           `json:"date"`
	View    View             `json:"view"`
	Records []catalog.Record `json:"records"`
}

// IDs returns the selected ids in order.
func (s Selection) IDs() []int {
	return catalog.IDs(s.Records)
}

// Engine binds the rotation policies to a clock and editorial settings.
// It holds no mutable state and may be shared freely.
type Engine struct {
	Clock         seed.Clock
	Pinned        []string
	Quota         Quota
	FeaturedCount int
}

// NewEngine returns an Engine on the system clock with default settings.
func NewEngine() Engine {
	return Engine{
		Clock:         seed.SystemClock{},
		Pinned:        DefaultPinned,
		Quota:         DefaultQuota,
		FeaturedCount: DefaultQuota.Total(),
	}
}

// SeedString is today's seed according to the engine's clock.
func (e Engine) SeedString() string {
	if e.Clock == nil {
		return seed.Today(seed.SystemClock{})
	}
	return seed.Today(e.Clock)
}

// Master returns the full listing order. It does not depend on the date.
func (e Engine) Master(records []catalog.Record) Selection {
	return Selection{Date: e.SeedString(), View: ViewMaster, Records: MasterSort(records, e.Pinned)}
}

// Highlights returns today's category-split selection.
func (e Engine) Highlights(records []catalog.Record) Selection {
	q := e.Quota
	if q.Total() <= 0 {
		q = DefaultQuota
	}
	day := e.SeedString()
	return Selection{Date: day, View: ViewHighlights, Records: DailyHighlights(records, day, q)}
}

// Featured returns today's single-pool selection of n records.
// n <= 0 uses the engine's FeaturedCount.
func (e Engine) Featured(records []catalog.Record, n int) Selection {
	if n <= 0 {
		n = e.FeaturedCount
	}
	day := e.SeedString()
	return Selection{Date: day, View: ViewFeatured, Records: DailyFeatured(records, day, n)}
}

// Select dispatches on view. Featured uses the engine's FeaturedCount.
func (e Engine) Select(view View, records []catalog.Record) Selection {
	switch view {
	case ViewMaster:
		return e.Master(records)
	case ViewFeatured:
		return e.Featured(records, 0)
	default:
		return e.Highlights(records)
	}
}
