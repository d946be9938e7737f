// ABOUTME: CLI command for exporting query results.
// ABOUTME: Writes JSON, YAML, Markdown or CSV to stdout, a file, or one file per query in a directory.
package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/harperreed/chococrunch/internal/catalog"
	"github.com/spf13/cobra"
)

var (
	exportFormat  string
	exportOutput  string
	exportDir     string
	exportSection string
)

var exportCmd = withDataset(&cobra.Command{
	Use:   "export [query-id...]",
	Short: "Export query results",
	Long: `Export catalog query results.

FORMATS:

  json       Envelope with export id, timestamp, columns and rows (default)
  yaml       Same envelope with one mapping per row
  markdown   Heading plus a table (alias: md)
  csv        Header row then values

EXAMPLES:

  chococrunch export top-brands
  chococrunch export top-brands -f csv -o top-brands.csv
  chococrunch export --section joins -f markdown --dir reports/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := catalog.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		ids := args
		if exportSection != "" {
			if _, err := session.Catalog.SectionInfo(catalog.Section(exportSection)); err != nil {
				return err
			}
			for _, q := range session.Catalog.List(catalog.Section(exportSection)) {
				ids = append(ids, q.ID)
			}
		}
		if len(ids) == 0 {
			return fmt.Errorf("name at least one query id or use --section")
		}
		if len(ids) > 1 && exportDir == "" {
			return fmt.Errorf("exporting %d queries needs --dir", len(ids))
		}

		if exportDir != "" {
			if err := os.MkdirAll(exportDir, 0750); err != nil {
				return fmt.Errorf("create %s: %w", exportDir, err)
			}
		}

		for _, id := range ids {
			res, err := session.Catalog.Run(cmd.Context(), id)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := catalog.Export(&buf, res, format); err != nil {
				return err
			}

			path := exportOutput
			if exportDir != "" {
				path = filepath.Join(exportDir, id+"."+format.Extension())
			}
			if path == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Exported %s to %s", id, path))
		}
		return nil
	},
})

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(catalog.FormatJSON), "output format: json, yaml, markdown, csv")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "write one file per query into this directory")
	exportCmd.Flags().StringVarP(&exportSection, "section", "s", "", "export every query of a section")
	rootCmd.AddCommand(exportCmd)
}
