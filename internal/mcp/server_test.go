// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, resource handlers and a client session.
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/harperreed/chococrunch/internal/app"
	"github.com/harperreed/chococrunch/internal/config"
	"github.com/harperreed/chococrunch/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap/zaptest"
)

const samplePath = "../../testdata/chococrunch_sample.csv"

// setupTestServer loads the sample dataset and wraps it in a Server.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	a, err := app.Load(context.Background(), &config.Config{CSVPath: samplePath}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Failed to load app: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	server, err := NewServer(a)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func TestNewServer(t *testing.T) {
	server := setupTestServer(t)
	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.app == nil {
		t.Error("Expected non-nil app")
	}

	if _, err := NewServer(nil); err == nil {
		t.Error("Expected error for nil app")
	}
	if _, err := NewServer(&app.App{}); err == nil {
		t.Error("Expected error for unloaded app")
	}
}

func TestHandleListQueries(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		section   string
		wantCount int
		wantErr   bool
	}{
		{"all queries", "", 33, false},
		{"joins section", "joins", 7, false},
		{"product section", " product ", 6, false},
		{"unknown section", "bogus", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleListQueries(ctx, &mcp.CallToolRequest{}, listQueriesInput{Section: tt.section})
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.Count != tt.wantCount || len(output.Queries) != tt.wantCount {
				t.Errorf("Expected %d queries, got %d", tt.wantCount, output.Count)
			}
		})
	}
}

func TestHandleRunQuery(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	result, output, err := server.handleRunQuery(ctx, &mcp.CallToolRequest{}, runQueryInput{ID: "top-brands"})
	if err != nil {
		t.Fatalf("handleRunQuery failed: %v", err)
	}
	if output.RowCount != 5 || len(output.Rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d", output.RowCount)
	}
	if output.Rows[0][0] != "Ferrero" || output.Rows[0][1] != int64(3) {
		t.Errorf("Unexpected first row: %v", output.Rows[0])
	}
	if result == nil || len(result.Content) != 1 {
		t.Fatal("Expected markdown content")
	}
	text, ok := result.Content[0].(*mcp.TextContent)
	if !ok || !strings.Contains(text.Text, "| Ferrero | 3 |") {
		t.Errorf("Unexpected content: %#v", result.Content[0])
	}

	_, _, err = server.handleRunQuery(ctx, &mcp.CallToolRequest{}, runQueryInput{ID: "nope"})
	if err == nil || !strings.Contains(err.Error(), "unknown query") {
		t.Errorf("Expected unknown query error, got %v", err)
	}
}

func TestHandleRunQueryFailure(t *testing.T) {
	server := setupTestServer(t)
	if err := server.app.Store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, _, err := server.handleRunQuery(context.Background(), &mcp.CallToolRequest{}, runQueryInput{ID: "top-brands"})
	if err == nil || !strings.Contains(err.Error(), "query top-brands") {
		t.Errorf("Expected query error, got %v", err)
	}
	_, _, err = server.handleGetOverview(context.Background(), &mcp.CallToolRequest{}, overviewInput{})
	if err == nil {
		t.Error("Expected overview error")
	}
}

func TestHandleGetOverview(t *testing.T) {
	server := setupTestServer(t)

	_, output, err := server.handleGetOverview(context.Background(), &mcp.CallToolRequest{}, overviewInput{})
	if err != nil {
		t.Fatalf("handleGetOverview failed: %v", err)
	}
	if output.Products != 22 {
		t.Errorf("Expected 22 products, got %d", output.Products)
	}
	if output.Metrics["total_products"] != int64(22) {
		t.Errorf("Unexpected total_products: %v", output.Metrics["total_products"])
	}
	if output.Metrics["ultra_processed_pct"] != 72.7 {
		t.Errorf("Unexpected ultra_processed_pct: %v", output.Metrics["ultra_processed_pct"])
	}
	if len(output.Queries) != 3 {
		t.Fatalf("Expected 3 chart queries, got %d", len(output.Queries))
	}
	if output.Queries[0].ID != "top-10-brands" {
		t.Errorf("Expected top-10-brands first, got %s", output.Queries[0].ID)
	}
}

func TestResources(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	result, err := server.handleCatalogResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("catalog resource failed: %v", err)
	}
	var sections []catalogSection
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &sections); err != nil {
		t.Fatalf("Failed to parse catalog: %v", err)
	}
	if len(sections) != 6 {
		t.Errorf("Expected 6 sections, got %d", len(sections))
	}
	total := 0
	for _, sec := range sections {
		total += len(sec.Queries)
	}
	if total != 33 {
		t.Errorf("Expected 33 queries across sections, got %d", total)
	}

	result, err = server.handleSchemaResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("schema resource failed: %v", err)
	}
	var tables []storage.TableInfo
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &tables); err != nil {
		t.Fatalf("Failed to parse schema: %v", err)
	}
	if len(tables) != 4 || tables[0].Name != storage.TableProducts || tables[0].Rows != 22 {
		t.Errorf("Unexpected schema: %+v", tables)
	}
	if result.Contents[0].URI != URISchema {
		t.Errorf("Unexpected URI %s", result.Contents[0].URI)
	}

	result, err = server.handleSummaryResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("summary resource failed: %v", err)
	}
	if !strings.Contains(result.Contents[0].Text, `"duplicates": 1`) {
		t.Errorf("Expected load report in summary, got %s", result.Contents[0].Text[:200])
	}
}

func TestClientSession(t *testing.T) {
	server := setupTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if len(tools.Tools) != 3 {
		t.Errorf("Expected 3 tools, got %d", len(tools.Tools))
	}

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "run_query",
		Arguments: map[string]any{"id": "high-sugar-high-calorie"},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("Unexpected tool error: %+v", res.Content)
	}

	res, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "run_query",
		Arguments: map[string]any{"id": "nope"},
	})
	if err != nil {
		t.Fatalf("CallTool failed: %v", err)
	}
	if !res.IsError {
		t.Error("Expected a tool error for an unknown query")
	}

	read, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: URICatalog})
	if err != nil {
		t.Fatalf("ReadResource failed: %v", err)
	}
	if len(read.Contents) != 1 || read.Contents[0].MIMEType != "application/json" {
		t.Errorf("Unexpected catalog contents: %+v", read.Contents)
	}
}
