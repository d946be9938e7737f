// ABOUTME: MCP tool implementations over the query catalog.
// ABOUTME: Lists queries, runs one by id and summarises the overview section.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/chococrunch/internal/catalog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_queries",
		Description: "List the analytics queries, optionally filtered by section (overview, product, nutrient, derived, joins, market)",
	}, s.handleListQueries)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "run_query",
		Description: "Run one analytics query by id and return its columns and rows",
	}, s.handleRunQuery)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_overview",
		Description: "Headline metrics, top brands and tier distributions for the loaded dataset",
	}, s.handleGetOverview)
}

// Tool input/output types

type listQueriesInput struct {
	Section string `json:"section,omitempty" jsonschema:"Section to list; empty lists every query"`
}

type queryInfo struct {
	ID          string `json:"id"`
	Section     string `json:"section"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Chart       string `json:"chart,omitempty"`
}

type listQueriesOutput struct {
	Queries []queryInfo `json:"queries"`
	Count   int         `json:"count"`
}

type runQueryInput struct {
	ID string `json:"id" jsonschema:"Query id as returned by list_queries"`
}

type queryOutput struct {
	ID       string   `json:"id"`
	Number   int      `json:"number"`
	Title    string   `json:"title"`
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
}

type overviewInput struct{}

type overviewOutput struct {
	Source   string         `json:"source"`
	Products int            `json:"products"`
	Metrics  map[string]any `json:"metrics"`
	Queries  []queryOutput  `json:"queries"`
}

func newQueryInfo(q catalog.Query) queryInfo {
	info := queryInfo{
		ID:          q.ID,
		Section:     string(q.Section),
		Number:      q.Number,
		Title:       q.Title,
		Description: q.Description,
	}
	if q.Chart != nil {
		info.Chart = string(q.Chart.Kind)
	}
	return info
}

func newQueryOutput(res *catalog.Result) queryOutput {
	return queryOutput{
		ID:       res.Query.ID,
		Number:   res.Query.Number,
		Title:    res.Query.Title,
		Columns:  res.Set.Columns,
		Rows:     res.Set.Rows,
		RowCount: res.Set.Len(),
	}
}

// Tool handlers

func (s *Server) handleListQueries(ctx context.Context, req *mcp.CallToolRequest, input listQueriesInput) (*mcp.CallToolResult, listQueriesOutput, error) {
	section := catalog.Section(strings.TrimSpace(input.Section))
	if section != "" {
		if _, err := s.app.Catalog.SectionInfo(section); err != nil {
			return nil, listQueriesOutput{}, err
		}
	}

	out := listQueriesOutput{Queries: []queryInfo{}}
	for _, q := range s.app.Catalog.List(section) {
		out.Queries = append(out.Queries, newQueryInfo(q))
	}
	out.Count = len(out.Queries)
	return nil, out, nil
}

func (s *Server) handleRunQuery(ctx context.Context, req *mcp.CallToolRequest, input runQueryInput) (*mcp.CallToolResult, queryOutput, error) {
	res, err := s.app.Catalog.Run(ctx, strings.TrimSpace(input.ID))
	if err != nil {
		return nil, queryOutput{}, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: catalog.Markdown(res)}},
	}, newQueryOutput(res), nil
}

func (s *Server) handleGetOverview(ctx context.Context, req *mcp.CallToolRequest, input overviewInput) (*mcp.CallToolResult, overviewOutput, error) {
	outcomes, err := s.app.Catalog.RunSection(ctx, catalog.SectionOverview)
	if err != nil {
		return nil, overviewOutput{}, err
	}

	out := overviewOutput{
		Source:   s.app.Source,
		Products: s.app.Products(),
		Metrics:  map[string]any{},
		Queries:  []queryOutput{},
	}
	for _, o := range outcomes {
		if o.Err != nil {
			return nil, overviewOutput{}, fmt.Errorf("overview: %w", o.Err)
		}
		if o.Query.Chart == nil && o.Result.Set.Len() == 1 {
			for k, v := range o.Result.Set.Maps()[0] {
				out.Metrics[k] = v
			}
			continue
		}
		out.Queries = append(out.Queries, newQueryOutput(o.Result))
	}
	return nil, out, nil
}
