package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/classify"
)

// categoryFilter narrows the master listing to one category. Slot 0 is
// "All"; slot i is categories[i-1].
type categoryFilter struct {
	categories []classify.Category
	selected   classify.Category // empty shows every category
	cursor     int
	choosing   bool
	counts     map[classify.Category]int
	total      int
}

func newCategoryFilter() categoryFilter {
	return categoryFilter{categories: classify.AllCategories()}
}

func (f *categoryFilter) slots() int { return len(f.categories) + 1 }

func (f *categoryFilter) move(delta int) {
	f.cursor = min(max(f.cursor+delta, 0), f.slots()-1)
}

// choose selects the slot under the cursor.
func (f *categoryFilter) choose() {
	f.pick(f.cursor)
}

// pick selects slot i; out of range is ignored.
func (f *categoryFilter) pick(i int) {
	if i < 0 || i >= f.slots() {
		return
	}
	f.cursor = i
	if i == 0 {
		f.selected = ""
		return
	}
	f.selected = f.categories[i-1]
}

// count tallies the unfiltered listing so every tab shows its size.
func (f *categoryFilter) count(records []catalog.Record) {
	f.counts = make(map[classify.Category]int, len(f.categories))
	for _, r := range records {
		f.counts[r.Category]++
	}
	f.total = len(records)
}

func (f *categoryFilter) label() string {
	if f.selected == "" {
		return "All"
	}
	return string(f.selected)
}

func (f *categoryFilter) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	parts := []string{f.tab(0, "All", f.total, f.selected == "", tabActiveStyle)}
	for i, c := range f.categories {
		active := tabActiveStyle.Foreground(categoryStyle(c).GetForeground())
		parts = append(parts, f.tab(i+1, string(c), f.counts[c], f.selected == c, active))
	}

	// Stop adding tabs once the row would overflow
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}

func (f *categoryFilter) tab(slot int, name string, n int, on bool, active lipgloss.Style) string {
	label := fmt.Sprintf("%s %d", name, n)
	if f.choosing && slot == f.cursor {
		label = "[" + label + "]"
	}
	if on {
		return active.Render(label)
	}
	return tabInactiveStyle.Render(label)
}
