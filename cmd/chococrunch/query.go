// ABOUTME: CLI commands for listing and running catalog queries.
// ABOUTME: Prints results as aligned tables; failures in a section are reported inline.
package main

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/harperreed/chococrunch/internal/catalog"
	"github.com/harperreed/chococrunch/internal/storage"
	"github.com/spf13/cobra"
)

var (
	querySection string
	queryWidth   int
	querySQL     bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "List and run analytics queries",
	Long: `List and run the catalog of analytics queries.

Every query has a stable id (e.g. top-brands) and a number matching its
position on the dashboard.

EXAMPLES:

  chococrunch query list
  chococrunch query list --section joins
  chococrunch query run top-brands
  chococrunch query run high-sugar-high-calorie --sql
  chococrunch query section overview`,
}

var queryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog queries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := catalog.New(nil, logger)
		section := catalog.Section(querySection)
		if section != "" {
			if _, err := c.SectionInfo(section); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		faint := color.New(color.Faint)
		bold := color.New(color.Bold)
		for _, sec := range c.Sections() {
			if section != "" && sec.ID != section {
				continue
			}
			bold.Fprintf(out, "%s\n", sec.Title)
			for _, q := range c.List(sec.ID) {
				fmt.Fprintf(out, "  %s %s %s\n",
					faint.Sprintf("%2d.", q.Number),
					padRight(q.ID, 32),
					q.Title)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

var queryRunCmd = withDataset(&cobra.Command{
	Use:   "run <query-id>...",
	Short: "Run one or more queries",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for i, id := range args {
			res, err := session.Catalog.Run(cmd.Context(), id)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(out)
			}
			printResult(out, res)
		}
		return nil
	},
})

var querySectionCmd = withDataset(&cobra.Command{
	Use:   "section <section-id>",
	Short: "Run every query of a dashboard section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcomes, err := session.Catalog.RunSection(cmd.Context(), catalog.Section(args[0]))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		failed := 0
		for i, o := range outcomes {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if o.Err != nil {
				failed++
				printHeading(out, o.Query)
				fmt.Fprintln(out, color.RedString("Query failed: %v", o.Err))
				continue
			}
			printResult(out, o.Result)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d queries failed", failed, len(outcomes))
		}
		return nil
	},
})

func printHeading(w io.Writer, q catalog.Query) {
	color.New(color.Bold).Fprintf(w, "%d. %s\n", q.Number, q.Title)
}

func printResult(w io.Writer, res *catalog.Result) {
	printHeading(w, res.Query)
	if querySQL {
		color.New(color.Faint).Fprintln(w, strings.TrimSpace(res.Query.SQL))
	}
	if res.Empty() {
		color.New(color.FgYellow).Fprintln(w, "No data")
		return
	}
	printTable(w, res.Set, queryWidth)
	color.New(color.Faint).Fprintf(w, "%d rows in %s\n", res.Set.Len(), res.Elapsed.Round(time.Microsecond))
}

// printTable writes rs as left-aligned columns, truncating cells to width.
func printTable(w io.Writer, rs *storage.ResultSet, width int) {
	widths := make([]int, len(rs.Columns))
	cells := make([][]string, len(rs.Rows))
	for i, col := range rs.Columns {
		widths[i] = utf8.RuneCountInString(col)
	}
	for r, row := range rs.Rows {
		cells[r] = make([]string, len(row))
		for i, v := range row {
			s := "NULL"
			if v != nil {
				s = truncate(storage.FormatValue(v), width)
			}
			cells[r][i] = s
			if n := utf8.RuneCountInString(s); n > widths[i] {
				widths[i] = n
			}
		}
	}

	header := color.New(color.Bold, color.FgCyan)
	faint := color.New(color.Faint)
	for i, col := range rs.Columns {
		header.Fprint(w, padRight(col, widths[i]))
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintln(w)
	for r, row := range cells {
		for i, s := range row {
			if rs.Rows[r][i] == nil {
				faint.Fprint(w, padRight(s, widths[i]))
			} else {
				fmt.Fprint(w, padRight(s, widths[i]))
			}
			fmt.Fprint(w, "  ")
		}
		fmt.Fprintln(w)
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 3 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, length int) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

func init() {
	queryListCmd.Flags().StringVarP(&querySection, "section", "s", "", "only list queries of this section")
	queryCmd.PersistentFlags().IntVarP(&queryWidth, "width", "w", 40, "max characters per cell")
	queryCmd.PersistentFlags().BoolVar(&querySQL, "sql", false, "print each query's SQL")

	queryCmd.AddCommand(queryListCmd, queryRunCmd, querySectionCmd)
	rootCmd.AddCommand(queryCmd)
}
