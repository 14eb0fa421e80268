package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Reload the catalog from every enabled source",
	Long: `Read every enabled source (local JSON/YAML catalogs and RSS/Atom feeds)
and replace the stored catalog snapshot. Commands import on their own once
the snapshot is older than import_interval; this forces it now.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		n := e.imported
		if n < 0 {
			if n, err = e.importCatalog(cmd.Context()); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d record(s) from %d source(s).\n", n, len(e.cfg.EnabledSources()))
		return nil
	},
}
