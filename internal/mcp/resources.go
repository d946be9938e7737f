// ABOUTME: MCP resource implementations for the analytics dataset.
// ABOUTME: Provides choco://catalog, choco://schema and choco://summary resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/chococrunch/internal/catalog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Resource URIs.
const (
	URICatalog = "choco://catalog"
	URISchema  = "choco://schema"
	URISummary = "choco://summary"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         URICatalog,
		Name:        "Query Catalog",
		Description: "Every analytics query grouped by dashboard section",
		MIMEType:    "application/json",
	}, s.handleCatalogResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         URISchema,
		Name:        "Database Schema",
		Description: "Tables, columns and row counts of the materialized database",
		MIMEType:    "application/json",
	}, s.handleSchemaResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         URISummary,
		Name:        "Data Summary",
		Description: "Load report and per-column statistics of the dataset",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)
}

type catalogSection struct {
	catalog.SectionInfo
	Queries []queryInfo `json:"queries"`
}

// Resource handlers

func (s *Server) handleCatalogResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	var result []catalogSection
	for _, sec := range s.app.Catalog.Sections() {
		cs := catalogSection{SectionInfo: sec, Queries: []queryInfo{}}
		for _, q := range s.app.Catalog.List(sec.ID) {
			cs.Queries = append(cs.Queries, newQueryInfo(q))
		}
		result = append(result, cs)
	}
	return jsonResource(URICatalog, result)
}

func (s *Server) handleSchemaResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	tables, err := s.app.Store.Schema(ctx)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return jsonResource(URISchema, tables)
}

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource(URISummary, s.app.Summary())
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
