package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig string
	flagStore  string
	flagDate   string
	flagImport bool
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Deterministic daily rotation for portfolio content",
	Long: `folio picks which case studies, projects and journal posts a portfolio
shows each day. The choice is a pure function of the catalog and the calendar
date: stable for the whole day, different tomorrow, and never a straight
repeat of yesterday when the catalog is large enough.

Running folio with no subcommand prints today's highlights.`,
	SilenceUsage: true,
	RunE:         runToday,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "path to the local database (default: XDG cache dir)")
	rootCmd.PersistentFlags().StringVar(&flagDate, "date", "", "select as if today were this date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().BoolVar(&flagImport, "import", false, "force a catalog import before running")

	addSelectionFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "folio %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
