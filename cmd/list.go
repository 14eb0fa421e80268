package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/matheuskafuri/folio/internal/classify"
	"github.com/matheuskafuri/folio/internal/rotation"
	"github.com/matheuskafuri/folio/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagListCategory string
	flagListSearch   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the full listing in master order",
	Long: `Print every record of one kind in master order: the newest record first,
then the pinned flagship records, then everything else newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := parseKind(flagKind)
		if err != nil {
			return err
		}
		opts := store.QueryOpts{Kind: kind, Search: flagListSearch}
		if flagListCategory != "" {
			cat, err := classify.Resolve(flagListCategory)
			if err != nil {
				return err
			}
			opts.Category = cat
		}

		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		records, err := e.db.Records(opts)
		if err != nil {
			return fmt.Errorf("reading catalog: %w", err)
		}
		sel := e.engine.Master(records)

		out := cmd.OutOrStdout()
		if flagJSON {
			return writeJSON(out, sel)
		}
		writeListing(cmd, sel)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&flagKind, "kind", "case-study", "catalog to list: case-study, project or article")
	listCmd.Flags().StringVar(&flagListCategory, "category", "", "only list this category (frontend, fullstack or an alias)")
	listCmd.Flags().StringVar(&flagListSearch, "search", "", "only list records whose title or summary contains this text")
	listCmd.Flags().BoolVar(&flagJSON, "json", false, "print the listing as JSON")
}

func writeListing(cmd *cobra.Command, sel rotation.Selection) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tDATE\tTITLE")
	for _, r := range sel.Records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.ID, r.Category, r.Date, r.Title)
	}
	tw.Flush()
}
