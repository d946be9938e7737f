// ABOUTME: CLI command for writing the materialized SQLite database.
// ABOUTME: Ingests the CSV once so later runs can open it with --db.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/chococrunch/internal/storage"
	"github.com/spf13/cobra"
)

var materializeCmd = withDataset(&cobra.Command{
	Use:   "materialize <output.db>",
	Short: "Write the normalized tables to a SQLite file",
	Long: `Load the CSV, derive the metric tiers and write product_info, nutrient_info,
derived_metrics and (when present) market_analysis to a SQLite database.

The output file is replaced if it exists. Open it later with --db to skip
CSV parsing:

EXAMPLES:

  chococrunch materialize chococrunch.db
  chococrunch --csv other.csv materialize other.db
  chococrunch --db chococrunch.db serve`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if session.Dataset == nil {
			return fmt.Errorf("materialize reads a CSV; drop --db")
		}

		ctx := cmd.Context()
		if err := session.Store.SaveCopy(ctx, args[0]); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Materialized %s to %s", session.Source, args[0]))

		faint := color.New(color.Faint)
		for _, table := range storage.AllTables {
			n, err := session.Store.Count(ctx, table)
			if err != nil {
				continue
			}
			fmt.Fprintf(out, "  %s %d rows\n", padRight(table, 18), n)
		}

		r := session.Dataset.Report
		if r.Duplicates > 0 || r.SkippedEmptyCode > 0 {
			faint.Fprintf(out, "  dropped %d duplicate codes, %d rows without a code\n", r.Duplicates, r.SkippedEmptyCode)
		}
		return nil
	},
})

func init() {
	rootCmd.AddCommand(materializeCmd)
}
