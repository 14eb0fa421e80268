// Package watch tells a long-running host when today's selection may have
// changed: at each local midnight, and whenever a catalog file is edited.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/matheuskafuri/folio/internal/logger"
	"github.com/matheuskafuri/folio/internal/seed"
)

// Kind says why an Event was sent.
type Kind int

const (
	Rollover Kind = iota
	CatalogChanged
)

func (k Kind) String() string {
	switch k {
	case Rollover:
		return "rollover"
	case CatalogChanged:
		return "catalog-changed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Event is one recompute trigger. Date is the seed string at send time.
type Event struct {
	Kind Kind
	Date string
	Path string
}

// NextMidnight returns the start of the calendar day after now, in now's location.
func NextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// Midnight sends a Rollover event each time the clock's calendar day changes.
// It sleeps until the next midnight instead of polling.
type Midnight struct {
	Clock seed.Clock
	// After defaults to time.After. Tests swap it to drive a fake clock.
	After func(time.Duration) <-chan time.Time
}

// Run blocks until ctx is done.
func (m Midnight) Run(ctx context.Context, out chan<- Event) {
	clock := m.Clock
	if clock == nil {
		clock = seed.SystemClock{}
	}
	after := m.After
	if after == nil {
		after = time.After
	}

	last := seed.Today(clock)
	for {
		now := clock.Now()
		select {
		case <-ctx.Done():
			return
		case <-after(NextMidnight(now).Sub(now)):
		}

		today := seed.Today(clock)
		if today == last {
			continue
		}
		last = today
		if !send(ctx, out, Event{Kind: Rollover, Date: today}) {
			return
		}
	}
}

// Watcher merges midnight rollovers and catalog file edits into one stream.
type Watcher struct {
	Midnight Midnight
	Paths    []string
	Debounce time.Duration
}

// New returns a Watcher on clock for the given catalog files.
func New(clock seed.Clock, paths []string) *Watcher {
	return &Watcher{
		Midnight: Midnight{Clock: clock},
		Paths:    paths,
		Debounce: 250 * time.Millisecond,
	}
}

// Start begins watching. The returned channel is closed once ctx is done
// and every goroutine has exited.
func (w *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	log := logger.With("watch")

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	// Watch directories: editors often replace a file rather than write to it.
	targets := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range w.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			log.Warn().Err(err).Str("dir", d).Msg("cannot watch catalog directory")
			continue
		}
		log.Debug().Str("dir", d).Msg("watching catalog directory")
	}

	out := make(chan Event, 8)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.Midnight.Run(ctx, out)
	}()
	go func() {
		defer wg.Done()
		defer fw.Close()
		w.runFiles(ctx, fw, targets, out)
	}()
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

func (w *Watcher) runFiles(ctx context.Context, fw *fsnotify.Watcher, targets map[string]bool, out chan<- Event) {
	log := logger.With("watch")
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if !targets[filepath.Clean(ev.Name)] {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			log.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("catalog file event")
			pending = ev.Name
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("file watcher error")

		case <-timerC:
			timerC = nil
			if !send(ctx, out, Event{Kind: CatalogChanged, Date: seed.Today(w.clock()), Path: pending}) {
				return
			}
		}
	}
}

func (w *Watcher) clock() seed.Clock {
	if w.Midnight.Clock == nil {
		return seed.SystemClock{}
	}
	return w.Midnight.Clock
}

func send(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
