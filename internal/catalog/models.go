package catalog

import (
	"time"

	"github.com/matheuskafuri/folio/internal/classify"
)

// Kind names the catalog a record came from.
type Kind string

const (
	CaseStudy Kind = "case-study"
	Project   Kind = "project"
	Article   Kind = "article"
)

// Kinds lists every catalog kind.
func Kinds() []Kind {
	return []Kind{CaseStudy, Project, Article}
}

// Record is one piece of showcase content. Only ID, Category and the
// pinned key derived from Slug/Title matter to the rotation; the rest is
// passed through to the renderer.
type Record struct {
	ID       int               `yaml:"id" json:"id" validate:"gt=0"`
	Kind     Kind              `yaml:"kind,omitempty" json:"kind"`
	Slug     string            `yaml:"slug,omitempty" json:"slug,omitempty"`
	Title    string            `yaml:"title" json:"title" validate:"required"`
	Role     string            `yaml:"role,omitempty" json:"role,omitempty"`
	Summary  string            `yaml:"summary,omitempty" json:"summary,omitempty"`
	Category classify.Category `yaml:"category,omitempty" json:"category"`
	URL      string            `yaml:"url,omitempty" json:"url,omitempty" validate:"omitempty,url"`
	Image    string            `yaml:"image,omitempty" json:"image,omitempty"`
	Tags     []string          `yaml:"tags,omitempty" json:"tags,omitempty"`
	Date     string            `yaml:"date,omitempty" json:"date,omitempty"`
	Source   string            `yaml:"-" json:"-"`
}

// Published parses Date as RFC 3339 or YYYY-MM-DD. Zero if unset or malformed.
func (r Record) Published() time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, r.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// IDs returns the ids of records in order.
func IDs(records []Record) []int {
	ids := make([]int, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}

// OfKind filters records to a single kind, keeping order.
func OfKind(records []Record, kind Kind) []Record {
	var out []Record
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
