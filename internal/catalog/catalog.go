// ABOUTME: Named, parameterless analytics queries grouped into dashboard sections.
// ABOUTME: Looks up, lists and runs catalog entries against a read-only store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/chococrunch/internal/storage"
	"go.uber.org/zap"
)

// ErrUnknownQuery is returned for ids that are not in the catalog.
var ErrUnknownQuery = errors.New("unknown query")

// ErrUnknownSection is returned for section ids that are not in the catalog.
var ErrUnknownSection = errors.New("unknown section")

// Section groups related queries on one dashboard page.
type Section string

const (
	SectionOverview Section = "overview"
	SectionProduct  Section = "product"
	SectionNutrient Section = "nutrient"
	SectionDerived  Section = "derived"
	SectionJoins    Section = "joins"
	SectionMarket   Section = "market"
)

// SectionInfo describes a section for navigation.
type SectionInfo struct {
	ID          Section `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
}

var sections = []SectionInfo{
	{SectionOverview, "Overview", "Key metrics across the whole dataset"},
	{SectionProduct, "Product Info", "Queries over product_info"},
	{SectionNutrient, "Nutrient Info", "Queries over nutrient_info"},
	{SectionDerived, "Derived Metrics", "Queries over the derived categories and ratios"},
	{SectionJoins, "Joins", "Queries combining products, nutrients and derived metrics"},
	{SectionMarket, "Market", "Sales, share and rating by region and brand"},
}

// ChartKind selects how a result is plotted.
type ChartKind string

const (
	ChartBar ChartKind = "bar"
	ChartPie ChartKind = "pie"
)

// ChartSpec names the result columns a chart plots.
type ChartSpec struct {
	Kind  ChartKind `json:"kind" yaml:"kind"`
	Label string    `json:"label" yaml:"label"`
	Value string    `json:"value" yaml:"value"`
}

// Query is one catalog entry.
type Query struct {
	ID          string     `json:"id" yaml:"id"`
	Section     Section    `json:"section" yaml:"section"`
	Number      int        `json:"number" yaml:"number"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	SQL         string     `json:"sql" yaml:"sql"`
	Chart       *ChartSpec `json:"chart,omitempty" yaml:"chart,omitempty"`
}

// Runner executes read-only SQL.
type Runner interface {
	Query(ctx context.Context, query string, args ...any) (*storage.ResultSet, error)
}

// Result is the output of one query run.
type Result struct {
	Query   Query              `json:"query" yaml:"query"`
	Set     *storage.ResultSet `json:"result" yaml:"result"`
	RunAt   time.Time          `json:"run_at" yaml:"run_at"`
	Elapsed time.Duration      `json:"elapsed_ns" yaml:"elapsed_ns"`
}

// Empty reports whether the query returned no rows.
func (r *Result) Empty() bool {
	return r == nil || r.Set.Empty()
}

// Outcome pairs a query with its result or error.
type Outcome struct {
	Query  Query
	Result *Result
	Err    error
}

// Catalog runs registered queries against a store.
type Catalog struct {
	store   Runner
	log     *zap.Logger
	queries []Query
	byID    map[string]int
}

// New builds the catalog of every built-in query. A nil logger is allowed.
func New(store Runner, log *zap.Logger) *Catalog {
	return newCatalog(store, log, builtinQueries())
}

func newCatalog(store Runner, log *zap.Logger, queries []Query) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Catalog{
		store:   store,
		log:     log,
		queries: queries,
		byID:    make(map[string]int, len(queries)),
	}
	for i, q := range queries {
		c.byID[q.ID] = i
	}
	return c
}

// Sections returns every section in navigation order.
func (c *Catalog) Sections() []SectionInfo {
	out := make([]SectionInfo, len(sections))
	copy(out, sections)
	return out
}

// SectionInfo returns the description of one section.
func (c *Catalog) SectionInfo(id Section) (SectionInfo, error) {
	for _, s := range sections {
		if s.ID == id {
			return s, nil
		}
	}
	return SectionInfo{}, fmt.Errorf("%w: %s", ErrUnknownSection, id)
}

// List returns the queries of section in number order, or all queries when
// section is empty.
func (c *Catalog) List(section Section) []Query {
	var out []Query
	for _, q := range c.queries {
		if section == "" || q.Section == section {
			out = append(out, q)
		}
	}
	return out
}

// Get returns the query with id.
func (c *Catalog) Get(id string) (Query, error) {
	i, ok := c.byID[id]
	if !ok {
		return Query{}, fmt.Errorf("%w: %s", ErrUnknownQuery, id)
	}
	return c.queries[i], nil
}

// Run executes one query. Store failures are returned as *QueryError.
func (c *Catalog) Run(ctx context.Context, id string) (*Result, error) {
	q, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, q)
}

func (c *Catalog) run(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	rs, err := c.store.Query(ctx, q.SQL)
	elapsed := time.Since(start)
	if err != nil {
		c.log.Warn("query failed", zap.String("query", q.ID), zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, &QueryError{ID: q.ID, Err: err}
	}
	c.log.Debug("query ran", zap.String("query", q.ID), zap.Int("rows", rs.Len()), zap.Duration("elapsed", elapsed))
	return &Result{Query: q, Set: rs, RunAt: start.UTC(), Elapsed: elapsed}, nil
}

// RunSection runs every query of a section. A failing query yields an
// Outcome with Err set and does not stop the others.
func (c *Catalog) RunSection(ctx context.Context, section Section) ([]Outcome, error) {
	if _, err := c.SectionInfo(section); err != nil {
		return nil, err
	}
	queries := c.List(section)
	out := make([]Outcome, 0, len(queries))
	for _, q := range queries {
		res, err := c.run(ctx, q)
		out = append(out, Outcome{Query: q, Result: res, Err: err})
	}
	return out, nil
}

// QueryError reports a failed catalog query. The session continues.
type QueryError struct {
	ID  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.ID, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// IsQueryError reports whether err is or wraps a QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}
