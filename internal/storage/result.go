// ABOUTME: Generic read-only query execution returning tabular result sets.
// ABOUTME: Scans arbitrary columns and normalizes driver values for display.
package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// ResultSet is an ordered table of query output.
type ResultSet struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// Len returns the number of rows.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Empty reports whether the result has no rows.
func (r *ResultSet) Empty() bool {
	return r.Len() == 0
}

// ColumnIndex returns the position of col or -1.
func (r *ResultSet) ColumnIndex(col string) int {
	for i, c := range r.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Value returns the cell at row for col, or nil when col is unknown.
func (r *ResultSet) Value(row int, col string) any {
	i := r.ColumnIndex(col)
	if i < 0 || row < 0 || row >= len(r.Rows) {
		return nil
	}
	return r.Rows[row][i]
}

// Maps returns every row keyed by column name.
func (r *ResultSet) Maps() []map[string]any {
	out := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		m := make(map[string]any, len(r.Columns))
		for j, c := range r.Columns {
			m[c] = row[j]
		}
		out[i] = m
	}
	return out
}

// Query runs a read-only statement and collects every row.
func (d *DB) Query(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	rs := &ResultSet{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		scans := make([]any, len(cols))
		for i := range values {
			scans[i] = &values[i]
		}
		if err := rows.Scan(scans...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i := range values {
			values[i] = normalizeValue(values[i])
		}
		rs.Rows = append(rs.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return rs, nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		return v
	}
}

// FormatValue renders a cell for text output. Nulls render as "".
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
