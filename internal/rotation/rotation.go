// Package rotation orders and selects showcase records.
//
// Everything here is a pure function of its inputs: the same catalog and
// the same seed string always give the same result, so a page can be
// rendered any number of times in a day without the selection flickering.
package rotation

import (
	"sort"
	"strings"
	"unicode"

	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/classify"
	"github.com/matheuskafuri/folio/internal/prng"
	"github.com/matheuskafuri/folio/internal/seed"
	"golang.org/x/text/cases"
)

// DefaultPinned are the flagship keys listed right after the newest item.
var DefaultPinned = []string{"nestfi", "edumanage", "ledgerx"}

// Quota is the per-category split of the highlights view.
type Quota = classify.Quota

var DefaultQuota = classify.DefaultQuota

const (
	frontendSuffix  = "-highlights-frontend"
	fullstackSuffix = "-highlights-fullstack"
	featuredSuffix  = "-featured"
)

// NormalizeKey derives the key a record is pinned by: the case-folded slug,
// or else the first word of the title with non-alphanumerics removed.
// "LedgerX - Finance Management Application" becomes "ledgerx".
func NormalizeKey(slug, title string) string {
	fold := cases.Fold()
	if slug = strings.TrimSpace(slug); slug != "" {
		return fold.String(slug)
	}
	fields := strings.Fields(title)
	if len(fields) == 0 {
		return ""
	}
	word := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, fields[0])
	return fold.String(word)
}

// MasterSort orders a full listing: the newest record (highest id) first,
// then records matching pinned keys in pinned order, then everything else
// newest first. Unmatched pinned keys are skipped.
func MasterSort(items []catalog.Record, pinned []string) []catalog.Record {
	if len(items) == 0 {
		return nil
	}

	newest := 0
	for i, r := range items {
		if r.ID > items[newest].ID {
			newest = i
		}
	}

	used := make([]bool, len(items))
	used[newest] = true
	out := make([]catalog.Record, 0, len(items))
	out = append(out, items[newest])

	keys := make([]string, len(items))
	for i, r := range items {
		keys[i] = NormalizeKey(r.Slug, r.Title)
	}
	fold := cases.Fold()
	for _, p := range pinned {
		p = fold.String(strings.TrimSpace(p))
		for i := range items {
			if !used[i] && keys[i] != "" && keys[i] == p {
				used[i] = true
				out = append(out, items[i])
				break
			}
		}
	}

	rest := make([]catalog.Record, 0, len(items)-len(out))
	for i, r := range items {
		if !used[i] {
			rest = append(rest, r)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].ID > rest[j].ID
	})
	return append(out, rest...)
}

// DailyHighlights picks q.Total() records for the day named by seedStr:
// q.Frontend from the frontend pool, the remaining slots from the fullstack
// pool. Yesterday's picks are avoided while enough other candidates exist.
func DailyHighlights(records []catalog.Record, seedStr string, q Quota) []catalog.Record {
	var frontend, fullstack []catalog.Record
	for _, r := range records {
		if r.Category == classify.Frontend {
			frontend = append(frontend, r)
		} else {
			fullstack = append(fullstack, r)
		}
	}

	exclude := yesterday(seedStr, func(s string) []catalog.Record {
		return buildHighlights(frontend, fullstack, s, q, nil)
	})
	return buildHighlights(frontend, fullstack, seedStr, q, exclude)
}

func buildHighlights(frontend, fullstack []catalog.Record, seedStr string, q Quota, exclude map[int]bool) []catalog.Record {
	count := q.Total()
	fe := prng.Shuffle(frontend, seed.Derive(seedStr, frontendSuffix))
	fs := prng.Shuffle(fullstack, seed.Derive(seedStr, fullstackSuffix))

	s := newSelection(count)
	s.take(fe, q.Frontend, exclude)
	// The frontend quota holds even if every candidate was shown yesterday.
	s.take(fe, q.Frontend-len(s.out), nil)
	s.take(fs, count-len(s.out), exclude)
	s.take(fs, count-len(s.out), nil)
	s.take(fe, count-len(s.out), nil)
	return s.out
}

// DailyFeatured picks count records from a single pool for the day named by
// seedStr, avoiding yesterday's picks while enough other candidates exist.
func DailyFeatured(records []catalog.Record, seedStr string, count int) []catalog.Record {
	exclude := yesterday(seedStr, func(s string) []catalog.Record {
		return buildFeatured(records, s, count, nil)
	})
	return buildFeatured(records, seedStr, count, exclude)
}

func buildFeatured(records []catalog.Record, seedStr string, count int, exclude map[int]bool) []catalog.Record {
	shuffled := prng.Shuffle(records, seed.Derive(seedStr, featuredSuffix))
	s := newSelection(count)
	s.take(shuffled, count, exclude)
	s.take(shuffled, count-len(s.out), nil)
	return s.out
}

// yesterday returns the ids build selects for the day before seedStr.
// A malformed seed string disables the exclusion.
func yesterday(seedStr string, build func(string) []catalog.Record) map[int]bool {
	prev, err := seed.OffsetSeedString(seedStr, -1)
	if err != nil {
		return nil
	}
	ids := map[int]bool{}
	for _, r := range build(prev) {
		ids[r.ID] = true
	}
	return ids
}

type selection struct {
	out   []catalog.Record
	used  map[int]bool
	limit int
}

func newSelection(limit int) *selection {
	if limit < 0 {
		limit = 0
	}
	return &selection{out: make([]catalog.Record, 0, limit), used: map[int]bool{}, limit: limit}
}

// take appends up to n unused records from list, skipping excluded ids.
func (s *selection) take(list []catalog.Record, n int, exclude map[int]bool) {
	for _, r := range list {
		if n <= 0 || len(s.out) >= s.limit {
			return
		}
		if s.used[r.ID] || exclude[r.ID] {
			continue
		}
		s.used[r.ID] = true
		s.out = append(s.out, r)
		n--
	}
}
