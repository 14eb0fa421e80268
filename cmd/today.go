package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/matheuskafuri/folio/internal/briefing"
	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/logger"
	"github.com/matheuskafuri/folio/internal/rotation"
	"github.com/spf13/cobra"
)

var (
	flagCount int
	flagJSON  bool
	flagKind  string
	flagView  string
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Print today's selection",
	Long: `Print the records shown today. The highlights view takes a fixed split of
frontend and fullstack records; the featured view draws from one pool; the
master view is the full listing order.

Use --date to see what any other day would show.`,
	RunE: runToday,
}

func init() {
	addSelectionFlags(todayCmd)
}

func addSelectionFlags(c *cobra.Command) {
	c.Flags().IntVar(&flagCount, "count", 0, "number of featured records (featured view only)")
	c.Flags().BoolVar(&flagJSON, "json", false, "print the selection as JSON")
	c.Flags().StringVar(&flagKind, "kind", string(catalog.CaseStudy), "catalog to select from: case-study, project or article")
	c.Flags().StringVar(&flagView, "view", string(rotation.ViewHighlights), "highlights, featured or master")
}

func runToday(cmd *cobra.Command, args []string) error {
	kind, err := parseKind(flagKind)
	if err != nil {
		return err
	}
	view, err := parseView(flagView)
	if err != nil {
		return err
	}
	if flagCount > 0 && !cmd.Flags().Changed("view") {
		view = rotation.ViewFeatured
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

	b := briefing.Generate(briefing.GenerateOpts{
		Records: records,
		Engine:  e.engine,
		View:    view,
		Count:   flagCount,
		SiteURL: e.cfg.SiteURL,
	})
	sel := b.Selection()
	if err := e.db.RecordSelection(kind, sel); err != nil {
		logger.With("today").Warn().Err(err).Msg("logging selection")
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(out, sel)
	}
	writeBriefing(out, b, kind)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeBriefing(w io.Writer, b *briefing.Briefing, kind catalog.Kind) {
	title := strings.ToUpper(string(b.View[:1])) + string(b.View[1:])
	fmt.Fprintf(w, "%s for %s (%s)\n", title, b.DateLabel, kind)
	if len(b.Cards) == 0 {
		fmt.Fprintln(w, "  Nothing to show. Run `folio import` to load the catalog.")
		return
	}
	fmt.Fprintln(w)
	for _, c := range b.Cards {
		fmt.Fprintf(w, "%3d. %-10s %s\n", c.Index, c.Record.Category, c.Record.Title)
		if c.Excerpt != "" {
			fmt.Fprintf(w, "     %s\n", c.Excerpt)
		}
		if c.Link != "" {
			fmt.Fprintf(w, "     %s\n", c.Link)
		}
	}
	if len(b.Themes) > 0 {
		fmt.Fprintf(w, "\nThemes: %s\n", strings.Join(b.Themes, ", "))
	}
}
