// ABOUTME: Export of query results to JSON, YAML, Markdown and CSV.
// ABOUTME: Every format carries the query id, title and rows in column order.
package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/chococrunch/internal/storage"
	"gopkg.in/yaml.v3"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// Formats lists every supported export format.
var Formats = []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatCSV}

// ParseFormat accepts a format name or common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown format %q (use json, yaml, markdown or csv)", s)
}

// ContentType returns the HTTP media type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	}
	return "application/octet-stream"
}

// Extension returns the file extension for a format, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ExportData is the envelope written by JSON and YAML exports.
type ExportData struct {
	Version    string    `json:"version" yaml:"version"`
	ExportID   string    `json:"export_id" yaml:"export_id"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Tool       string    `json:"tool" yaml:"tool"`
	QueryID    string    `json:"query_id" yaml:"query_id"`
	Section    Section   `json:"section" yaml:"section"`
	Title      string    `json:"title" yaml:"title"`
	Columns    []string  `json:"columns" yaml:"columns"`
	Rows       [][]any   `json:"rows" yaml:"-"`
}

// Export writes res to w in format.
func Export(w io.Writer, res *Result, format Format) error {
	if res == nil || res.Set == nil {
		return fmt.Errorf("export: no result")
	}
	switch format {
	case FormatJSON:
		return exportJSON(w, res)
	case FormatYAML:
		return exportYAML(w, res)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(res))
		return err
	case FormatCSV:
		return exportCSV(w, res.Set)
	}
	return fmt.Errorf("export: unknown format %q", format)
}

func envelope(res *Result) ExportData {
	return ExportData{
		Version:    "1.0",
		ExportID:   uuid.NewString(),
		ExportedAt: res.RunAt,
		Tool:       "chococrunch",
		QueryID:    res.Query.ID,
		Section:    res.Query.Section,
		Title:      res.Query.Title,
		Columns:    res.Set.Columns,
		Rows:       res.Set.Rows,
	}
}

func exportJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(envelope(res)); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func exportYAML(w io.Writer, res *Result) error {
	rows := make([]*yaml.Node, 0, len(res.Set.Rows))
	for _, row := range res.Set.Rows {
		n, err := rowNode(res.Set.Columns, row)
		if err != nil {
			return fmt.Errorf("encode yaml row: %w", err)
		}
		rows = append(rows, n)
	}

	doc := struct {
		ExportData `yaml:",inline"`
		Rows       []*yaml.Node `yaml:"rows"`
	}{ExportData: envelope(res), Rows: rows}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// rowNode builds a mapping node that keeps column order.
func rowNode(cols []string, row []any) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i, c := range cols {
		var v yaml.Node
		if err := v.Encode(row[i]); err != nil {
			return nil, err
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c}
		n.Content = append(n.Content, key, &v)
	}
	return n, nil
}

func exportCSV(w io.Writer, rs *storage.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			record[i] = storage.FormatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Markdown renders a result as a titled Markdown table.
func Markdown(res *Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %d. %s\n\n", res.Query.Number, res.Query.Title)
	if res.Query.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", res.Query.Description)
	}
	sb.WriteString(MarkdownTable(res.Set))
	return sb.String()
}

// MarkdownTable renders rows as a Markdown table, or a no-data line.
func MarkdownTable(rs *storage.ResultSet) string {
	if rs.Empty() {
		return "_No data_\n"
	}
	var sb strings.Builder
	sb.WriteString("|")
	for _, c := range rs.Columns {
		fmt.Fprintf(&sb, " %s |", escapeCell(c))
	}
	sb.WriteString("\n|")
	for range rs.Columns {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, row := range rs.Rows {
		sb.WriteString("|")
		for _, v := range row {
			fmt.Fprintf(&sb, " %s |", escapeCell(storage.FormatValue(v)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
