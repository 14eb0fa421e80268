package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/folio/internal/briefing"
	"github.com/matheuskafuri/folio/internal/browser"
	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/rotation"
	"github.com/matheuskafuri/folio/internal/store"
	"github.com/matheuskafuri/folio/internal/watch"
)

// Catalog is the record snapshot the preview reads and logs selections to.
// *store.Store satisfies it.
type Catalog interface {
	Records(opts store.QueryOpts) ([]catalog.Record, error)
	RecordSelection(kind catalog.Kind, sel rotation.Selection) error
}

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeOpening mode = iota
	modeCard
	modeMaster
	modeSearch
	modeFilter
	modeHelp
)

type App struct {
	db      Catalog
	engine  rotation.Engine
	kind    catalog.Kind
	view    rotation.View
	siteURL string
	events  <-chan watch.Event
	reload  func(context.Context) error

	records  []catalog.Record
	briefing *briefing.Briefing
	master   []catalog.Record

	cursor     int
	cardCursor int
	focus      focusPane
	mode       mode

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model
	filter      categoryFilter

	loading       bool
	previewScroll int
	notice        string
	err           error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	DB      Catalog
	Engine  rotation.Engine
	Kind    catalog.Kind
	View    rotation.View // highlights or featured
	SiteURL string
	// Events drives re-selection. Nil disables live updates.
	Events <-chan watch.Event
	// Reload re-imports the catalog after a source file changes.
	Reload func(context.Context) error
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search records..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	view := opts.View
	if view != rotation.ViewFeatured {
		view = rotation.ViewHighlights
	}
	kind := opts.Kind
	if kind == "" {
		kind = catalog.CaseStudy
	}

	return &App{
		db:          opts.DB,
		engine:      opts.Engine,
		kind:        kind,
		view:        view,
		siteURL:     opts.SiteURL,
		events:      opts.Events,
		reload:      opts.Reload,
		searchInput: ti,
		spinner:     sp,
		filter:      newCategoryFilter(),
		mode:        modeOpening,
		loading:     true,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCmd(), a.spinner.Tick, a.waitForEvent())
}

// loadCmd reads the catalog snapshot for the app's kind.
func (a *App) loadCmd() tea.Cmd {
	db := a.db
	kind := a.kind
	return func() tea.Msg {
		records, err := db.Records(store.QueryOpts{Kind: kind})
		if err != nil {
			return loadErrMsg{err: err}
		}
		return catalogLoadedMsg{records: records}
	}
}

func (a *App) reloadCmd() tea.Cmd {
	reload := a.reload
	load := a.loadCmd()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := reload(ctx); err != nil {
			return loadErrMsg{err: fmt.Errorf("re-importing catalog: %w", err)}
		}
		return load()
	}
}

func (a *App) waitForEvent() tea.Cmd {
	if a.events == nil {
		return nil
	}
	events := a.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watchClosedMsg{}
		}
		return watchEventMsg{event: ev}
	}
}

func (a *App) recordSelectionCmd(sel rotation.Selection) tea.Cmd {
	db := a.db
	kind := a.kind
	return func() tea.Msg {
		if err := db.RecordSelection(kind, sel); err != nil {
			return loadErrMsg{err: fmt.Errorf("logging selection: %w", err)}
		}
		return nil
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return loadErrMsg{err: err}
		}
		return nil
	}
}

// reselect recomputes today's cards and the master listing.
func (a *App) reselect() tea.Cmd {
	sel := a.engine.Select(a.view, a.records)
	a.briefing = briefing.FromSelection(sel, a.records, a.siteURL)
	if a.engine.Clock != nil {
		a.briefing.WithGreeting(a.engine.Clock.Now())
	}
	if a.cardCursor >= len(a.briefing.Cards) {
		a.cardCursor = max(0, len(a.briefing.Cards)-1)
	}
	a.refreshMaster()
	return a.recordSelectionCmd(sel)
}

func (a *App) refreshMaster() {
	all := a.engine.Master(a.records).Records
	a.filter.count(all)
	a.master = filterRecords(all, a.filter.selected, a.searchInput.Value())
	if a.cursor >= len(a.master) {
		a.cursor = max(0, len(a.master)-1)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case catalogLoadedMsg:
		a.loading = false
		a.records = msg.records
		return a, a.reselect()

	case loadErrMsg:
		a.loading = false
		a.err = msg.err
		return a, nil

	case watchEventMsg:
		switch msg.event.Kind {
		case watch.CatalogChanged:
			a.notice = "catalog changed"
			if a.reload != nil && !a.loading {
				a.loading = true
				return a, tea.Batch(a.reloadCmd(), a.spinner.Tick, a.waitForEvent())
			}
		case watch.Rollover:
			a.notice = "new day " + msg.event.Date
			return a, tea.Batch(a.reselect(), a.waitForEvent())
		}
		return a, a.waitForEvent()

	case watchClosedMsg:
		a.events = nil
		return a, nil

	case spinner.TickMsg:
		if a.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeOpening:
		return a.handleOpeningKey(msg)
	case modeCard:
		return a.handleCardKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeOpening
		}
		return a, nil
	}
	return a.handleMasterKey(msg)
}

func (a *App) handleOpeningKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "right", "l":
		if a.briefing != nil && len(a.briefing.Cards) > 0 {
			a.mode = modeCard
			a.cardCursor = 0
		}
		return a, nil
	case "m":
		a.mode = modeMaster
		return a, nil
	case "v":
		return a, a.toggleView()
	case "?":
		a.mode = modeHelp
		return a, nil
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleCardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "l", "right":
		if a.briefing != nil && a.cardCursor < len(a.briefing.Cards)-1 {
			a.cardCursor++
		}
		return a, nil
	case "p", "h", "left":
		if a.cardCursor > 0 {
			a.cardCursor--
		} else {
			a.mode = modeOpening
		}
		return a, nil
	case "o", "enter":
		if card, ok := a.currentCard(); ok && card.Link != "" {
			return a, openBrowserCmd(card.Link)
		}
		return a, nil
	case "m":
		a.mode = modeMaster
		return a, nil
	case "v":
		return a, a.toggleView()
	case "esc":
		a.mode = modeOpening
		return a, nil
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) handleMasterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.master)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if r := a.selectedRecord(); r != nil {
			link, err := browser.RecordURL(a.siteURL, *r)
			if err != nil {
				a.err = err
				return a, nil
			}
			return a, openBrowserCmd(link)
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.mode = modeFilter
		a.filter.choosing = true
		return a, nil
	case "m", "esc":
		a.mode = modeOpening
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeMaster
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.refreshMaster()
		return a, nil
	case "enter":
		a.mode = modeMaster
		a.searchInput.Blur()
		a.cursor = 0
		a.refreshMaster()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "f":
		a.mode = modeMaster
		a.filter.choosing = false
		return a, nil
	case "left", "h":
		a.filter.move(-1)
		return a, nil
	case "right", "l":
		a.filter.move(1)
		return a, nil
	case " ", "enter":
		a.filter.choose()
		a.cursor = 0
		a.refreshMaster()
		return a, nil
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		a.filter.pick(int(msg.String()[0] - '0'))
		a.cursor = 0
		a.refreshMaster()
		return a, nil
	}
	return a, nil
}

// toggleView switches between the highlights and featured selections.
func (a *App) toggleView() tea.Cmd {
	if a.view == rotation.ViewHighlights {
		a.view = rotation.ViewFeatured
	} else {
		a.view = rotation.ViewHighlights
	}
	a.cardCursor = 0
	if a.records == nil {
		return nil
	}
	return a.reselect()
}

func (a *App) currentCard() (briefing.Card, bool) {
	if a.briefing == nil || a.cardCursor >= len(a.briefing.Cards) {
		return briefing.Card{}, false
	}
	return a.briefing.Cards[a.cardCursor], true
}

func (a *App) selectedRecord() *catalog.Record {
	if len(a.master) == 0 || a.cursor >= len(a.master) {
		return nil
	}
	return &a.master[a.cursor]
}

func (a *App) withBottomBar(content string, hints string) string {
	notice := a.notice
	if a.loading {
		notice = a.spinner.View() + " loading"
	}
	if a.err != nil {
		notice = a.err.Error()
	}
	bar := renderBottomBar(notice, hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 || a.height < 1 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  folio")
	}

	if a.briefing == nil {
		return a.withBottomBar("", "q quit")
	}

	switch a.mode {
	case modeOpening:
		return a.withBottomBar(renderOpeningScreen(a.briefing, a.kind, a.height), "enter start  v view  m master  ? help  q quit")
	case modeCard:
		if card, ok := a.currentCard(); ok {
			return a.withBottomBar(
				renderCardView(card, len(a.briefing.Cards), a.width, a.height),
				"← prev  → next  o open  v view  m master  q quit",
			)
		}
	case modeHelp:
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	}

	return a.renderMaster()
}

func (a *App) renderMaster() string {
	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.35)
	previewWidth := a.width - listWidth - 1

	if contentHeight < 3 {
		contentHeight = 3
	}

	headerLeft := headerStyle.Render("folio · all " + kindLabel(a.kind))
	headerRight := headerDateStyle.Render(a.briefing.DateLabel)
	header := spread(headerLeft, headerRight, a.width)

	filter := a.filter.render(a.width)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	listContent := renderList(a.master, a.cursor, contentHeight, listWidth-4)
	listStyle := listPaneStyle
	if a.focus == focusList {
		listStyle = listPaneActiveStyle
	}
	listPane := listStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	selected := a.selectedRecord()
	var link string
	if selected != nil {
		link, _ = browser.RecordURL(a.siteURL, *selected)
	}
	previewContent := renderPreview(selected, link, previewWidth-4, contentHeight, a.previewScroll)
	previewStyle := previewPaneStyle
	if a.focus == focusPreview {
		previewStyle = previewPaneActiveStyle
	}
	previewPane := previewStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(len(a.master), a.filter.label(), a.width, a.mode == modeSearch, a.notice)
	if a.loading {
		status = a.spinner.View() + " " + status
	}
	if a.err != nil {
		status = errorStyle.Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("folio")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Cards") + "\n" +
		"  enter         Start today's cards\n" +
		"  ←/→, p/n      Previous / next card\n" +
		"  o             Open the record on the site\n" +
		"  v             Switch highlights / featured\n\n" +
		dim.Render("Master listing") + "\n" +
		"  m             Toggle master listing\n" +
		"  j/k, ↑/↓      Move through records\n" +
		"  tab           Switch focus between list and preview\n" +
		"  /             Search records\n" +
		"  f             Filter by category\n" +
		"  0-9, ←/→      Pick a category while filtering\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
