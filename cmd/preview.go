package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/matheuskafuri/folio/internal/logger"
	"github.com/matheuskafuri/folio/internal/tui"
	"github.com/matheuskafuri/folio/internal/watch"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Browse today's selection in the terminal",
	Long: `Open an interactive preview of today's cards and the master listing.
The preview follows the clock: at midnight it re-selects for the new day, and
edits to local catalog files are re-imported as they happen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(flagKind)
		if err != nil {
			return err
		}
		view, err := parseView(flagView)
		if err != nil {
			return err
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		// Log lines would tear the alternate screen
		logger.Init(logger.Options{Level: "error", Writer: io.Discard})

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		opts := tui.RunOpts{
			DB:      e.db,
			Engine:  e.engine,
			Kind:    kind,
			View:    view,
			SiteURL: e.cfg.SiteURL,
			Reload: func(ctx context.Context) error {
				_, err := e.importCatalog(ctx)
				return err
			},
		}
		// A pinned --date never rolls over
		if flagDate == "" {
			events, err := watch.New(e.engine.Clock, e.cfg.WatchPaths()).Start(ctx)
			if err != nil {
				return fmt.Errorf("starting watcher: %w", err)
			}
			opts.Events = events
		}

		return tui.Run(opts)
	},
}

func init() {
	previewCmd.Flags().StringVar(&flagKind, "kind", "case-study", "catalog to preview: case-study, project or article")
	previewCmd.Flags().StringVar(&flagView, "view", "highlights", "cards to start with: highlights or featured")
}
