// ABOUTME: Typed load failure for dataset ingestion.
// ABOUTME: LoadError distinguishes missing files, bad columns and bad values.
package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a LoadError.
type ErrorKind int

const (
	KindMissingFile ErrorKind = iota + 1
	KindUnreadable
	KindMissingColumns
	KindMalformedValue
	KindEmpty
	KindInvalidDatabase
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingFile:
		return "missing file"
	case KindUnreadable:
		return "unreadable file"
	case KindMissingColumns:
		return "missing columns"
	case KindMalformedValue:
		return "malformed value"
	case KindEmpty:
		return "empty dataset"
	case KindInvalidDatabase:
		return "invalid database"
	default:
		return "load failure"
	}
}

// LoadError reports a failure to load the dataset. It is fatal: no query
// runs after one.
type LoadError struct {
	Kind    ErrorKind
	Source  string
	Line    int
	Column  string
	Columns []string
	Err     error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "load %s: %s", e.Source, e.Kind)
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " in column %q", e.Column)
	}
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Columns, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is or wraps a LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
