// ABOUTME: CLI command for the data summary.
// ABOUTME: Prints the load report, per-column statistics and nutrient field summaries.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/chococrunch/internal/eda"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var summaryFormat string

var summaryCmd = withDataset(&cobra.Command{
	Use:   "summary",
	Short: "Show the data summary",
	Long: `Show what was loaded and how complete each column is.

OUTPUT:

  text   Load report, column table and nutrient describe rows (default)
  json   Same content as /api/summary
  yaml   Same content as YAML

EXAMPLES:

  chococrunch summary
  chococrunch summary --format yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := session.Summary()
		out := cmd.OutOrStdout()

		switch strings.ToLower(summaryFormat) {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		case "yaml", "yml":
			enc := yaml.NewEncoder(out)
			defer enc.Close()
			return enc.Encode(s)
		case "text", "":
			printSummary(out, s)
			return nil
		}
		return fmt.Errorf("unknown summary format %q (use text, json or yaml)", summaryFormat)
	},
})

func printSummary(w io.Writer, s *eda.DataSummary) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Fprintf(w, "Source: %s\n", s.Source)
	r := s.Report
	fmt.Fprintf(w, "  products %d  rows %d  market rows %d  duplicates %d  skipped %d\n",
		r.Products, r.Rows, r.MarketRows, r.Duplicates, r.SkippedEmptyCode)
	if len(r.IgnoredColumns) > 0 {
		faint.Fprintf(w, "  ignored columns: %s\n", strings.Join(r.IgnoredColumns, ", "))
	}

	if len(s.Columns) > 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Columns")
		for _, c := range s.Columns {
			line := fmt.Sprintf("  %s %5d non-null %5d missing (%5.1f%%) %5d unique",
				padRight(c.Name, 28), c.NonNull, c.Missing, c.MissingPct, c.Unique)
			if c.Numeric != nil {
				line += faint.Sprintf("  min %g max %g", c.Numeric.Min, c.Numeric.Max)
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(s.Fields) > 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Nutrients")
		for _, f := range s.Fields {
			d := f.Describe
			fmt.Fprintf(w, "  %s n=%-4d mean %8.2f  std %8.2f  min %8.2f  median %8.2f  max %8.2f\n",
				padRight(f.Label, 20), d.Count, d.Mean, d.Std, d.Min, d.P50, d.Max)
		}
	}
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", "text", "output format: text, json, yaml")
	rootCmd.AddCommand(summaryCmd)
}
