package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/classify"
	"github.com/matheuskafuri/folio/internal/rotation"
	"github.com/matheuskafuri/folio/internal/store"
	"github.com/matheuskafuri/folio/internal/watch"
)

type fakeCatalog struct {
	records []catalog.Record
	err     error
	logged  []rotation.Selection
}

func (f *fakeCatalog) Records(opts store.QueryOpts) ([]catalog.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []catalog.Record
	for _, r := range f.records {
		if opts.Kind == "" || r.Kind == opts.Kind {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCatalog) RecordSelection(kind catalog.Kind, sel rotation.Selection) error {
	f.logged = append(f.logged, sel)
	return nil
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func record(id int, cat classify.Category) catalog.Record {
	return catalog.Record{ID: id, Kind: catalog.CaseStudy, Title: "Record", Category: cat}
}

func testCatalog() *fakeCatalog {
	fe := func(id int) catalog.Record { return record(id, classify.Frontend) }
	fs := func(id int) catalog.Record { return record(id, classify.Fullstack) }
	return &fakeCatalog{records: []catalog.Record{
		fs(1), fe(101), fs(2), fs(3), fs(4), fe(102), fs(5), fs(6), fs(7), fe(103), fs(8),
		{ID: 900, Kind: catalog.Project, Title: "Other kind", Category: classify.Fullstack},
	}}
}

func newTestApp(t *testing.T, db Catalog, clock *testClock) *App {
	t.Helper()
	engine := rotation.NewEngine()
	engine.Clock = clock
	return NewApp(RunOpts{DB: db, Engine: engine, SiteURL: "https://me.dev"})
}

func loaded(t *testing.T, a *App) *App {
	t.Helper()
	model, cmd := a.Update(a.loadCmd()())
	if cmd != nil {
		cmd()
	}
	return model.(*App)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(a *App, keys ...string) *App {
	for _, k := range keys {
		model, _ := a.Update(key(k))
		a = model.(*App)
	}
	return a
}

func cardIDs(a *App) []int {
	ids := make([]int, len(a.briefing.Cards))
	for i, c := range a.briefing.Cards {
		ids[i] = c.Record.ID
	}
	return ids
}

func march14() *testClock {
	return &testClock{t: time.Date(2024, 3, 14, 9, 0, 0, 0, time.Local)}
}

func TestLoadSelectsTodaysHighlights(t *testing.T) {
	db := testCatalog()
	a := loaded(t, newTestApp(t, db, march14()))

	if a.loading {
		t.Error("expected loading to finish")
	}
	if diff := cmp.Diff([]int{101, 3, 6, 4}, cardIDs(a)); diff != "" {
		t.Errorf("cards mismatch (-want +got):\n%s", diff)
	}
	if len(db.logged) != 1 || db.logged[0].Date != "2024-03-14" || db.logged[0].View != rotation.ViewHighlights {
		t.Errorf("expected one logged highlights selection, got %+v", db.logged)
	}
	if a.briefing.Scanned != 11 {
		t.Errorf("expected only case studies scanned, got %d", a.briefing.Scanned)
	}
}

func TestCardNavigation(t *testing.T) {
	a := loaded(t, newTestApp(t, testCatalog(), march14()))

	a = press(a, "enter")
	if a.mode != modeCard || a.cardCursor != 0 {
		t.Fatalf("expected first card, got mode %d cursor %d", a.mode, a.cardCursor)
	}
	a = press(a, "right", "right", "right", "right", "right")
	if a.cardCursor != 3 {
		t.Errorf("expected cursor clamped at 3, got %d", a.cardCursor)
	}
	a = press(a, "left", "left", "left")
	if a.cardCursor != 0 || a.mode != modeCard {
		t.Errorf("expected first card, got mode %d cursor %d", a.mode, a.cardCursor)
	}
	a = press(a, "left")
	if a.mode != modeOpening {
		t.Errorf("expected opening screen after leaving first card, got %d", a.mode)
	}
}

func TestEnterWithoutCardsStaysOnOpening(t *testing.T) {
	a := loaded(t, newTestApp(t, &fakeCatalog{}, march14()))
	a = press(a, "enter")
	if a.mode != modeOpening {
		t.Errorf("expected opening mode with no cards, got %d", a.mode)
	}
}

func TestMasterToggle(t *testing.T) {
	a := loaded(t, newTestApp(t, testCatalog(), march14()))

	a = press(a, "m")
	if a.mode != modeMaster {
		t.Fatalf("expected master mode, got %d", a.mode)
	}
	want := []int{103, 102, 101, 8, 7, 6, 5, 4, 3, 2, 1}
	if diff := cmp.Diff(want, catalog.IDs(a.master)); diff != "" {
		t.Errorf("master order mismatch (-want +got):\n%s", diff)
	}

	a = press(a, "j", "j")
	if r := a.selectedRecord(); r == nil || r.ID != 101 {
		t.Errorf("expected cursor on 101, got %+v", r)
	}

	a = press(a, "m")
	if a.mode != modeOpening {
		t.Errorf("expected m to return to cards, got %d", a.mode)
	}
}

func TestCategoryFilter(t *testing.T) {
	a := loaded(t, newTestApp(t, testCatalog(), march14()))
	a = press(a, "m", "f", "1", "esc")
	if a.mode != modeMaster {
		t.Fatalf("expected master mode after filter, got %d", a.mode)
	}
	if diff := cmp.Diff([]int{103, 102, 101}, catalog.IDs(a.master)); diff != "" {
		t.Errorf("frontend filter mismatch (-want +got):\n%s", diff)
	}
	if a.filter.label() != "frontend" {
		t.Errorf("unexpected filter label %q", a.filter.label())
	}
	if a.filter.total != 11 || a.filter.counts[classify.Frontend] != 3 || a.filter.counts[classify.Fullstack] != 8 {
		t.Errorf("unexpected tab counts: total %d, %v", a.filter.total, a.filter.counts)
	}
}

func TestCategoryFilterCursor(t *testing.T) {
	a := loaded(t, newTestApp(t, testCatalog(), march14()))
	a = press(a, "m", "f", "right", "right", "right", "enter")
	if a.filter.selected != classify.Fullstack {
		t.Fatalf("expected cursor to stop on the last category, got %q", a.filter.selected)
	}
	if diff := cmp.Diff([]int{8, 7, 6, 5, 4, 3, 2, 1}, catalog.IDs(a.master)); diff != "" {
		t.Errorf("fullstack filter mismatch (-want +got):\n%s", diff)
	}

	a = press(a, "0")
	if a.filter.label() != "All" || len(a.master) != 11 {
		t.Errorf("expected 0 to clear the filter, got %q with %d records", a.filter.label(), len(a.master))
	}
	a = press(a, "7")
	if a.filter.label() != "All" {
		t.Errorf("out of range slot should be ignored, got %q", a.filter.label())
	}
}

func TestViewZeroHeight(t *testing.T) {
	a := loaded(t, newTestApp(t, testCatalog(), march14()))
	model, _ := a.Update(tea.WindowSizeMsg{Width: 80, Height: 0})
	a = model.(*App)
	for _, m := range []mode{modeOpening, modeCard, modeHelp, modeMaster} {
		a.mode = m
		if out := a.View(); out == "" {
			t.Errorf("mode %d: expected a placeholder view", m)
		}
	}
}

func TestViewToggle(t *testing.T) {
	db := testCatalog()
	a := loaded(t, newTestApp(t, db, march14()))

	model, cmd := a.Update(key("v"))
	a = model.(*App)
	if cmd != nil {
		cmd()
	}
	if a.view != rotation.ViewFeatured || a.briefing.View != rotation.ViewFeatured {
		t.Fatalf("expected featured view, got %s", a.view)
	}
	if len(a.briefing.Cards) != 4 {
		t.Errorf("expected 4 featured cards, got %d", len(a.briefing.Cards))
	}
	if last := db.logged[len(db.logged)-1]; last.View != rotation.ViewFeatured {
		t.Errorf("expected featured selection logged, got %s", last.View)
	}
}

func TestRolloverReselects(t *testing.T) {
	clock := march14()
	a := loaded(t, newTestApp(t, testCatalog(), clock))

	clock.set(time.Date(2024, 3, 15, 0, 0, 1, 0, time.Local))
	model, _ := a.Update(watchEventMsg{event: watch.Event{Kind: watch.Rollover, Date: "2024-03-15"}})
	a = model.(*App)

	if diff := cmp.Diff([]int{102, 4, 7, 5}, cardIDs(a)); diff != "" {
		t.Errorf("next day's cards mismatch (-want +got):\n%s", diff)
	}
	if a.briefing.Date != "2024-03-15" {
		t.Errorf("expected briefing for 2024-03-15, got %s", a.briefing.Date)
	}
	if !strings.Contains(a.notice, "2024-03-15") {
		t.Errorf("expected rollover notice, got %q", a.notice)
	}
}

func TestCatalogChangeReloads(t *testing.T) {
	db := testCatalog()
	reloaded := false
	engine := rotation.NewEngine()
	engine.Clock = march14()
	a := NewApp(RunOpts{
		DB:     db,
		Engine: engine,
		Reload: func(context.Context) error {
			reloaded = true
			db.records = db.records[:3]
			return nil
		},
	})
	a = loaded(t, a)

	model, cmd := a.Update(watchEventMsg{event: watch.Event{Kind: watch.CatalogChanged, Path: "case-studies.json"}})
	a = model.(*App)
	if !a.loading || cmd == nil {
		t.Fatal("expected reload to start")
	}

	msg := a.reloadCmd()()
	if !reloaded {
		t.Error("expected reload func to run")
	}
	model, _ = a.Update(msg)
	a = model.(*App)
	if len(a.records) != 3 || a.loading {
		t.Errorf("expected 3 records after reload, got %d (loading=%v)", len(a.records), a.loading)
	}
}

func TestReloadError(t *testing.T) {
	a := NewApp(RunOpts{
		DB:     testCatalog(),
		Engine: rotation.NewEngine(),
		Reload: func(context.Context) error { return errors.New("disk gone") },
	})
	msg := a.reloadCmd()()
	model, _ := a.Update(msg)
	a = model.(*App)
	if a.err == nil || !strings.Contains(a.err.Error(), "disk gone") {
		t.Errorf("expected reload error, got %v", a.err)
	}
}

func TestLoadErrorClearsOnKey(t *testing.T) {
	a := newTestApp(t, &fakeCatalog{err: errors.New("boom")}, march14())
	model, _ := a.Update(a.loadCmd()())
	a = model.(*App)
	if a.err == nil {
		t.Fatal("expected load error")
	}
	a = press(a, "?")
	if a.err != nil {
		t.Error("expected error cleared on keypress")
	}
}

func TestWatchClosed(t *testing.T) {
	events := make(chan watch.Event)
	close(events)
	a := NewApp(RunOpts{DB: testCatalog(), Engine: rotation.NewEngine(), Events: events})
	msg := a.waitForEvent()()
	if _, ok := msg.(watchClosedMsg); !ok {
		t.Fatalf("expected watchClosedMsg, got %T", msg)
	}
	model, _ := a.Update(msg)
	if model.(*App).waitForEvent() != nil {
		t.Error("expected no further event subscription")
	}
}

func TestViewRendersCard(t *testing.T) {
	db := testCatalog()
	db.records[1].Title = "Aurora Landing"
	a := loaded(t, newTestApp(t, db, march14()))
	model, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	a = model.(*App)

	if out := a.View(); !strings.Contains(out, "Thu, Mar 14") {
		t.Errorf("opening screen missing date:\n%s", out)
	}
	a = press(a, "enter")
	if out := a.View(); !strings.Contains(out, "Aurora Landing") || !strings.Contains(out, "1/4") {
		t.Errorf("card view missing title or counter:\n%s", out)
	}
	a = press(a, "m")
	if out := a.View(); !strings.Contains(out, "11 records") {
		t.Errorf("master view missing record count:\n%s", out)
	}
}
