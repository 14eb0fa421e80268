package rotation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/classify"
	"github.com/matheuskafuri/folio/internal/seed"
)

func fe(id int) catalog.Record {
	return catalog.Record{ID: id, Title: "Frontend piece", Category: classify.Frontend}
}

func fs(id int) catalog.Record {
	return catalog.Record{ID: id, Title: "Fullstack piece", Category: classify.Fullstack}
}

// sampleCatalog interleaves the pools; partitioning keeps relative order.
func sampleCatalog() []catalog.Record {
	return []catalog.Record{
		fs(1), fe(101), fs(2), fs(3), fs(4), fe(102), fs(5), fs(6), fs(7), fe(103), fs(8),
	}
}

func days(start string, n int) []string {
	t, _ := seed.Parse(start, time.UTC)
	out := make([]string, n)
	for i := range out {
		out[i] = t.AddDate(0, 0, i).Format(seed.Layout)
	}
	return out
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		slug, title string
		want        string
	}{
		{"", "LedgerX - Finance Management Application", "ledgerx"},
		{"NestFi", "Something else", "nestfi"},
		{"  ", "EduManage: School ERP", "edumanage"},
		{"", "", ""},
		{"", "   ", ""},
		{"", "(Quill)", "quill"},
		{"", "Café-Bar app", "cafébar"},
	}
	for _, tt := range tests {
		if got := NormalizeKey(tt.slug, tt.title); got != tt.want {
			t.Errorf("NormalizeKey(%q, %q) = %q, want %q", tt.slug, tt.title, got, tt.want)
		}
	}
}

func TestMasterSortPinnedExample(t *testing.T) {
	items := []catalog.Record{
		{ID: 1, Slug: "a"},
		{ID: 5, Slug: "ledgerx"},
		{ID: 3, Slug: "b"},
		{ID: 2, Slug: "nestfi"},
	}
	got := catalog.IDs(MasterSort(items, []string{"nestfi", "edumanage", "ledgerx"}))
	if diff := cmp.Diff([]int{5, 2, 3, 1}, got); diff != "" {
		t.Errorf("MasterSort mismatch (-want +got):\n%s", diff)
	}
}

func TestMasterSortMatchesTitleKeys(t *testing.T) {
	items := []catalog.Record{
		{ID: 4, Title: "Orbit Tracker"},
		{ID: 9, Title: "Quill Editor"},
		{ID: 2, Title: "LedgerX - Finance Management Application"},
		{ID: 6, Title: "EduManage School Suite"},
		{ID: 1, Title: "NestFi Budgeting"},
	}
	got := catalog.IDs(MasterSort(items, DefaultPinned))
	if diff := cmp.Diff([]int{9, 1, 6, 2, 4}, got); diff != "" {
		t.Errorf("MasterSort mismatch (-want +got):\n%s", diff)
	}
}

func TestMasterSortPinnedUsedOnce(t *testing.T) {
	items := []catalog.Record{
		{ID: 10, Slug: "latest"},
		{ID: 3, Slug: "nestfi"},
		{ID: 7, Slug: "nestfi"},
	}
	got := catalog.IDs(MasterSort(items, []string{"nestfi", "nestfi"}))
	// Each pinned key entry claims the first unused match.
	if diff := cmp.Diff([]int{10, 3, 7}, got); diff != "" {
		t.Errorf("MasterSort mismatch (-want +got):\n%s", diff)
	}
}

func TestMasterSortNoPinned(t *testing.T) {
	items := []catalog.Record{{ID: 2}, {ID: 8}, {ID: 5}}
	got := catalog.IDs(MasterSort(items, nil))
	if diff := cmp.Diff([]int{8, 5, 2}, got); diff != "" {
		t.Errorf("MasterSort mismatch (-want +got):\n%s", diff)
	}
}

func TestMasterSortEmpty(t *testing.T) {
	if got := MasterSort(nil, DefaultPinned); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestMasterSortDoesNotMutate(t *testing.T) {
	items := []catalog.Record{{ID: 1}, {ID: 3}, {ID: 2}}
	MasterSort(items, nil)
	if diff := cmp.Diff([]int{1, 3, 2}, catalog.IDs(items)); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestDailyHighlightsKnownDay(t *testing.T) {
	got := catalog.IDs(DailyHighlights(sampleCatalog(), "2024-03-14", DefaultQuota))
	if diff := cmp.Diff([]int{101, 3, 6, 4}, got); diff != "" {
		t.Errorf("highlights for 2024-03-14 mismatch (-want +got):\n%s", diff)
	}
	got = catalog.IDs(DailyHighlights(sampleCatalog(), "2024-03-15", DefaultQuota))
	if diff := cmp.Diff([]int{102, 4, 7, 5}, got); diff != "" {
		t.Errorf("highlights for 2024-03-15 mismatch (-want +got):\n%s", diff)
	}
}

func TestDailyHighlightsQuota(t *testing.T) {
	records := sampleCatalog()
	for _, day := range days("2024-01-01", 120) {
		got := DailyHighlights(records, day, DefaultQuota)
		if len(got) != 4 {
			t.Fatalf("%s: expected 4 records, got %d", day, len(got))
		}
		var nFE, nFS int
		seen := map[int]bool{}
		for _, r := range got {
			if seen[r.ID] {
				t.Fatalf("%s: duplicate id %d", day, r.ID)
			}
			seen[r.ID] = true
			if r.Category == classify.Frontend {
				nFE++
			} else {
				nFS++
			}
		}
		if nFE != 1 || nFS != 3 {
			t.Errorf("%s: expected 1 frontend + 3 fullstack, got %d + %d", day, nFE, nFS)
		}
		if got[0].Category != classify.Frontend {
			t.Errorf("%s: expected the frontend pick first", day)
		}
	}
}

func TestDailyHighlightsAvoidsYesterday(t *testing.T) {
	records := sampleCatalog() // 8 fullstack: enough to avoid all 3 of yesterday's
	for _, day := range days("2024-02-20", 30) {
		prev, _ := seed.OffsetSeedString(day, -1)
		before := buildHighlights(frontendOf(records), fullstackOf(records), prev, DefaultQuota, nil)
		today := DailyHighlights(records, day, DefaultQuota)

		prevIDs := map[int]bool{}
		for _, r := range before {
			prevIDs[r.ID] = true
		}
		for _, r := range today {
			if prevIDs[r.ID] {
				t.Errorf("%s: id %d was also picked on %s", day, r.ID, prev)
			}
		}
	}
}

func TestDailyHighlightsExactlyThreeFullstackRepeats(t *testing.T) {
	records := []catalog.Record{fe(101), fe(102), fs(1), fs(2), fs(3)}
	for _, day := range days("2024-05-01", 10) {
		got := DailyHighlights(records, day, DefaultQuota)
		fsIDs := map[int]bool{}
		for _, r := range got[1:] {
			fsIDs[r.ID] = true
		}
		if len(fsIDs) != 3 || !fsIDs[1] || !fsIDs[2] || !fsIDs[3] {
			t.Errorf("%s: expected all three fullstack records, got %v", day, catalog.IDs(got))
		}
	}
}

func TestDailyHighlightsSingleFrontendRelaxed(t *testing.T) {
	records := []catalog.Record{fe(101), fs(1), fs(2), fs(3), fs(4), fs(5), fs(6), fs(7)}
	got := DailyHighlights(records, "2024-07-04", DefaultQuota)
	if len(got) != 4 || got[0].ID != 101 {
		t.Errorf("expected the only frontend record despite yesterday, got %v", catalog.IDs(got))
	}
}

func TestDailyHighlightsStableWithinDay(t *testing.T) {
	records := sampleCatalog()
	first := catalog.IDs(DailyHighlights(records, "2024-03-14", DefaultQuota))
	second := catalog.IDs(DailyHighlights(records, "2024-03-14", DefaultQuota))
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same day produced different selections (-first +second):\n%s", diff)
	}
}

func TestDailyHighlightsBackfill(t *testing.T) {
	tests := []struct {
		name    string
		records []catalog.Record
		want    int
		wantFE  int
	}{
		{"empty", nil, 0, 0},
		{"no frontend", []catalog.Record{fs(1), fs(2), fs(3), fs(4), fs(5)}, 4, 0},
		{"few fullstack", []catalog.Record{fe(101), fe(102), fe(103), fs(1)}, 4, 3},
		{"tiny", []catalog.Record{fe(101), fs(1)}, 2, 1},
		{"only frontend", []catalog.Record{fe(101), fe(102)}, 2, 2},
	}
	for _, tt := range tests {
		got := DailyHighlights(tt.records, "2024-03-14", DefaultQuota)
		if len(got) != tt.want {
			t.Errorf("%s: expected %d records, got %d", tt.name, tt.want, len(got))
		}
		nFE := 0
		for _, r := range got {
			if r.Category == classify.Frontend {
				nFE++
			}
		}
		if nFE != tt.wantFE {
			t.Errorf("%s: expected %d frontend records, got %d", tt.name, tt.wantFE, nFE)
		}
	}
}

func TestDailyHighlightsCustomQuota(t *testing.T) {
	got := DailyHighlights(sampleCatalog(), "2024-03-14", Quota{Frontend: 2, Fullstack: 2})
	nFE := 0
	for _, r := range got {
		if r.Category == classify.Frontend {
			nFE++
		}
	}
	if len(got) != 4 || nFE != 2 {
		t.Errorf("expected 2 + 2, got %d records with %d frontend", len(got), nFE)
	}
}

func TestDailyHighlightsMalformedSeed(t *testing.T) {
	got := DailyHighlights(sampleCatalog(), "not-a-date", DefaultQuota)
	if len(got) != 4 {
		t.Errorf("expected a full selection without the exclusion, got %d", len(got))
	}
}

func TestDailyFeatured(t *testing.T) {
	var records []catalog.Record
	for id := 1; id <= 10; id++ {
		records = append(records, catalog.Record{ID: id})
	}
	got := catalog.IDs(DailyFeatured(records, "2024-03-14", 4))
	if diff := cmp.Diff([]int{9, 6, 2, 3}, got); diff != "" {
		t.Errorf("featured mismatch (-want +got):\n%s", diff)
	}
}

func numbered(n int) []catalog.Record {
	records := make([]catalog.Record, 0, n)
	for id := 1; id <= n; id++ {
		records = append(records, catalog.Record{ID: id})
	}
	return records
}

func TestDailyFeaturedAvoidsYesterday(t *testing.T) {
	records := numbered(8) // twice the count: yesterday's picks never needed
	for _, day := range days("2024-02-20", 40) {
		prev, _ := seed.OffsetSeedString(day, -1)
		before := map[int]bool{}
		for _, r := range buildFeatured(records, prev, 4, nil) {
			before[r.ID] = true
		}
		today := DailyFeatured(records, day, 4)
		if len(today) != 4 {
			t.Fatalf("%s: expected 4 records, got %d", day, len(today))
		}
		for _, r := range today {
			if before[r.ID] {
				t.Errorf("%s: id %d was also featured on %s", day, r.ID, prev)
			}
		}
	}
}

func TestDailyFeaturedSmallPoolReuses(t *testing.T) {
	records := numbered(6)
	for _, day := range days("2024-02-20", 20) {
		prev, _ := seed.OffsetSeedString(day, -1)
		before := map[int]bool{}
		for _, r := range buildFeatured(records, prev, 4, nil) {
			before[r.ID] = true
		}
		today := DailyFeatured(records, day, 4)

		ids := map[int]bool{}
		repeats := 0
		for _, r := range today {
			ids[r.ID] = true
			if before[r.ID] {
				repeats++
			}
		}
		// Both records missing yesterday come first, then two repeats fill in
		if len(today) != 4 || len(ids) != 4 || repeats != 2 {
			t.Errorf("%s: expected 4 distinct ids with 2 repeats, got %v (%d repeats)", day, catalog.IDs(today), repeats)
		}
		for _, r := range today[:2] {
			if before[r.ID] {
				t.Errorf("%s: fresh records should lead, got %v", day, catalog.IDs(today))
			}
		}
	}
}

func TestDailyFeaturedSmallCatalog(t *testing.T) {
	records := []catalog.Record{{ID: 1}, {ID: 2}}
	if got := DailyFeatured(records, "2024-03-14", 5); len(got) != 2 {
		t.Errorf("expected 2 records, got %d", len(got))
	}
	if got := DailyFeatured(records, "2024-03-14", 0); len(got) != 0 {
		t.Errorf("expected 0 records for count 0, got %d", len(got))
	}
	if got := DailyFeatured(nil, "2024-03-14", 4); len(got) != 0 {
		t.Errorf("expected 0 records for empty catalog, got %d", len(got))
	}
}

func frontendOf(records []catalog.Record) []catalog.Record {
	var out []catalog.Record
	for _, r := range records {
		if r.Category == classify.Frontend {
			out = append(out, r)
		}
	}
	return out
}

func fullstackOf(records []catalog.Record) []catalog.Record {
	var out []catalog.Record
	for _, r := range records {
		if r.Category != classify.Frontend {
			out = append(out, r)
		}
	}
	return out
}
