package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/config"
	"github.com/matheuskafuri/folio/internal/feed"
	"github.com/matheuskafuri/folio/internal/logger"
	"github.com/matheuskafuri/folio/internal/rotation"
	"github.com/matheuskafuri/folio/internal/seed"
	"github.com/matheuskafuri/folio/internal/store"
)

// env is what every command needs after startup.
type env struct {
	cfg    *config.Config
	db     *store.Store
	engine rotation.Engine

	// imported is the record count when setup already ran an import, else -1
	imported int
}

func (e *env) Close() error {
	return e.db.Close()
}

// setup loads config, configures logging, opens the store and imports the
// catalog when it is stale or --import is set.
func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger.Init(logger.FromEnv(cfg.LogLevel, cfg.LogFormat))

	clock, err := clockFor(flagDate)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(storePath())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	e := &env{cfg: cfg, db: db, engine: newEngine(cfg, clock), imported: -1}
	if flagImport || db.NeedsImport(cfg.ImportDuration()) {
		n, err := e.importCatalog(ctx)
		if err != nil {
			db.Close()
			return nil, err
		}
		e.imported = n
	}
	return e, nil
}

func storePath() string {
	if flagStore != "" {
		return flagStore
	}
	return config.StorePath()
}

// clockFor pins the clock to --date when given.
func clockFor(day string) (seed.Clock, error) {
	if day == "" {
		return seed.SystemClock{}, nil
	}
	t, err := seed.Parse(day, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid --date value: %w", err)
	}
	// Midday keeps the date stable under any later zone conversion
	return seed.FixedClock{T: t.Add(12 * time.Hour)}, nil
}

func newEngine(cfg *config.Config, clock seed.Clock) rotation.Engine {
	return rotation.Engine{
		Clock:         clock,
		Pinned:        cfg.Pinned,
		Quota:         cfg.GetQuota(),
		FeaturedCount: cfg.GetFeaturedCount(),
	}
}

// engineOn returns a copy of e fixed to the given seed string.
func engineOn(e rotation.Engine, day string) (rotation.Engine, error) {
	clock, err := clockFor(day)
	if err != nil {
		return e, err
	}
	e.Clock = clock
	return e, nil
}

func fetchers() catalog.Fetchers {
	rss := feed.NewRSSFetcher()
	return catalog.Fetchers{
		"json": catalog.FileFetcher{},
		"yaml": catalog.FileFetcher{},
		"rss":  rss,
		"atom": rss,
	}
}

// importCatalog reloads every enabled source into the store. Source errors
// are logged and a kind with a failed source keeps its stored snapshot; the
// import fails only if nothing could be read at all.
func (e *env) importCatalog(ctx context.Context) (int, error) {
	log := logger.With("import")

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sources := e.cfg.EnabledSources()
	result := catalog.LoadAll(ctx, sources, fetchers())
	for _, err := range result.Errors {
		log.Warn().Err(err).Msg("catalog source")
	}
	if len(result.Records) == 0 && len(result.Errors) > 0 {
		return 0, fmt.Errorf("importing catalog: %w", errors.Join(result.Errors...))
	}

	var kinds []catalog.Kind
	for _, k := range catalog.Kinds() {
		if result.Complete(k) {
			kinds = append(kinds, k)
			continue
		}
		log.Warn().Str("kind", string(k)).Msg("source failed, keeping stored snapshot")
	}
	if err := e.db.ReplaceCatalog(kinds, result.Records); err != nil {
		return 0, fmt.Errorf("storing catalog: %w", err)
	}
	if err := e.db.SetLastImport(); err != nil {
		return 0, fmt.Errorf("recording import time: %w", err)
	}

	// Selection history is trimmed after each import
	if n, err := e.db.Prune(e.engine.SeedString(), e.cfg.RetentionDuration()); err != nil {
		log.Warn().Err(err).Msg("pruning selection history")
	} else if n > 0 {
		log.Debug().Int64("deleted", n).Msg("pruned selection history")
	}

	log.Info().
		Int("sources", len(sources)).
		Int("records", len(result.Records)).
		Int("errors", len(result.Errors)).
		Msg("catalog imported")
	return len(result.Records), nil
}

// records returns the stored catalog for one kind.
func (e *env) records(kind catalog.Kind) ([]catalog.Record, error) {
	records, err := e.db.Records(store.QueryOpts{Kind: kind})
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return records, nil
}

func parseKind(s string) (catalog.Kind, error) {
	switch catalog.Kind(s) {
	case catalog.CaseStudy, catalog.Project, catalog.Article:
		return catalog.Kind(s), nil
	}
	switch s {
	case "case-studies", "cases", "cs":
		return catalog.CaseStudy, nil
	case "projects":
		return catalog.Project, nil
	case "articles", "journal", "posts":
		return catalog.Article, nil
	}
	return "", fmt.Errorf("unknown kind %q (want case-study, project or article)", s)
}

func parseView(s string) (rotation.View, error) {
	switch rotation.View(s) {
	case rotation.ViewHighlights, rotation.ViewFeatured, rotation.ViewMaster:
		return rotation.View(s), nil
	}
	return "", fmt.Errorf("unknown view %q (want highlights, featured or master)", s)
}
