package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/logger"
	"github.com/matheuskafuri/folio/internal/rotation"
	"github.com/matheuskafuri/folio/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-select at midnight and on catalog edits",
	Long: `Run in the foreground and keep the selection log current: at every local
midnight the new day's views are computed and logged, and edits to local
catalog files trigger a re-import. With --out, the export file is rewritten
each time as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagDate != "" {
			return fmt.Errorf("--date cannot be combined with watch")
		}
		kind, err := parseKind(flagKind)
		if err != nil {
			return err
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := logger.With("watch")
		events, err := watch.New(e.engine.Clock, e.cfg.WatchPaths()).Start(ctx)
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}

		if err := e.refresh(kind); err != nil {
			return err
		}
		log.Info().Strs("paths", e.cfg.WatchPaths()).Msg("watching")

		for ev := range events {
			log.Info().Str("event", ev.Kind.String()).Str("date", ev.Date).Str("path", ev.Path).Msg("recomputing")
			if ev.Kind == watch.CatalogChanged {
				if _, err := e.importCatalog(ctx); err != nil {
					log.Error().Err(err).Msg("re-import failed, keeping previous catalog")
				}
			}
			if err := e.refresh(kind); err != nil {
				log.Error().Err(err).Msg("refresh failed")
			}
		}
		log.Info().Msg("stopped")
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&flagKind, "kind", "case-study", "catalog to watch: case-study, project or article")
	watchCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "also rewrite this export file on every change")
	watchCmd.Flags().IntVar(&flagExportDays, "days", 1, "number of days in the export file")
}

// refresh logs today's selections for kind and rewrites the export file
// when one is configured.
func (e *env) refresh(kind catalog.Kind) error {
	records, err := e.records(kind)
	if err != nil {
		return err
	}
	for _, view := range []rotation.View{rotation.ViewHighlights, rotation.ViewFeatured} {
		sel := e.engine.Select(view, records)
		if err := e.db.RecordSelection(kind, sel); err != nil {
			return err
		}
		logger.With("watch").Info().
			Str("date", sel.Date).
			Str("view", string(view)).
			Ints("ids", sel.IDs()).
			Msg("selection")
	}

	if flagExportOut == "" {
		return nil
	}
	doc, err := buildExport(e.engine, kind, records, flagExportDays, 0)
	if err != nil {
		return err
	}
	if flagExportOut == "-" {
		return writeJSON(os.Stdout, doc)
	}
	return writeFileAtomic(flagExportOut, func(w io.Writer) error { return writeJSON(w, doc) })
}
