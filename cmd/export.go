package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/logger"
	"github.com/matheuskafuri/folio/internal/rotation"
	"github.com/matheuskafuri/folio/internal/seed"
	"github.com/spf13/cobra"
)

var (
	flagExportOut  string
	flagExportDays int
)

// exportDay is the daily views for one date.
type exportDay struct {
	Date       string           `json:"date"`
	Highlights []catalog.Record `json:"highlights"`
	Featured   []catalog.Record `json:"featured"`
}

// exportFile is what a static site build reads to render the rotating sections.
type exportFile struct {
	Kind      catalog.Kind     `json:"kind"`
	Generated string           `json:"generated"`
	Master    []catalog.Record `json:"master"`
	Days      []exportDay      `json:"days"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write selections to a JSON file for a static site build",
	Long: `Write the master listing plus the highlights and featured selections for
one or more consecutive days, starting today (or --date), to a JSON file.

Use --out - to write to stdout.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(flagKind)
		if err != nil {
			return err
		}
		if flagExportDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		records, err := e.records(kind)
		if err != nil {
			return err
		}

		doc, err := buildExport(e.engine, kind, records, flagExportDays, flagCount)
		if err != nil {
			return err
		}

		if flagExportOut == "-" {
			return writeJSON(cmd.OutOrStdout(), doc)
		}
		if err := writeFileAtomic(flagExportOut, func(w io.Writer) error { return writeJSON(w, doc) }); err != nil {
			return err
		}
		logger.With("export").Info().
			Str("out", flagExportOut).
			Str("kind", string(kind)).
			Int("days", len(doc.Days)).
			Msg("selections exported")
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "output file, or - for stdout")
	exportCmd.Flags().IntVar(&flagExportDays, "days", 1, "number of consecutive days to export")
	exportCmd.Flags().StringVar(&flagKind, "kind", "case-study", "catalog to export: case-study, project or article")
	exportCmd.Flags().IntVar(&flagCount, "count", 0, "number of featured records per day (default from config)")
	_ = exportCmd.MarkFlagRequired("out")
}

// buildExport runs the engine for days consecutive dates starting at the
// engine's today.
func buildExport(engine rotation.Engine, kind catalog.Kind, records []catalog.Record, days, count int) (exportFile, error) {
	start := engine.SeedString()
	doc := exportFile{
		Kind:      kind,
		Generated: time.Now().UTC().Format(time.RFC3339),
		Master:    engine.Master(records).Records,
	}
	for i := 0; i < days; i++ {
		day, err := seed.OffsetSeedString(start, i)
		if err != nil {
			return doc, err
		}
		on, err := engineOn(engine, day)
		if err != nil {
			return doc, err
		}
		doc.Days = append(doc.Days, exportDay{
			Date:       day,
			Highlights: on.Highlights(records).Records,
			Featured:   on.Featured(records, count).Records,
		})
	}
	return doc, nil
}

// writeFileAtomic writes to a temp file next to path and renames it into place.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".folio-export-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("moving export into place: %w", err)
	}
	return nil
}
