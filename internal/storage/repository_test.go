// ABOUTME: Tests for reading relations back out of the store.
// ABOUTME: Round-trips the sample fixture through materialize and LoadRelations.
package storage

import (
	"context"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/harperreed/chococrunch/internal/ingest"
	"github.com/harperreed/chococrunch/internal/models"
)

// byCode reorders aligned relations by product code.
func byCode(rel models.Relations) models.Relations {
	idx := make([]int, len(rel.Products))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return rel.Products[idx[a]].Code < rel.Products[idx[b]].Code })

	out := models.Relations{Market: rel.Market}
	for _, i := range idx {
		out.Products = append(out.Products, rel.Products[i])
		out.Nutrients = append(out.Nutrients, rel.Nutrients[i])
		out.Derived = append(out.Derived, rel.Derived[i])
	}
	return out
}

func TestLoadRelationsRoundTrip(t *testing.T) {
	ds, err := ingest.LoadFile(samplePath)
	if err != nil {
		t.Fatalf("Failed to load sample: %v", err)
	}
	db := setupTestDB(t)
	ctx := context.Background()
	if _, err := db.Materialize(ctx, ds.Relations); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	got, err := db.LoadRelations(ctx)
	if err != nil {
		t.Fatalf("LoadRelations failed: %v", err)
	}
	if got.Len() != 22 {
		t.Fatalf("Expected 22 products, got %d", got.Len())
	}
	if diff := cmp.Diff(byCode(ds.Relations), got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Relations mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRelationsMarket(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	units, share := 120.0, 0.25
	rel := models.Relations{
		Products:  []models.Product{{Code: "1"}},
		Nutrients: []models.NutrientProfile{{Code: "1"}},
		Derived:   []models.DerivedMetrics{{Code: "1"}},
		Market: []models.MarketAnalysis{
			{Code: "1", Region: "US", SalesUnits: &units},
			{Code: "1", Region: "EU", MarketShare: &share},
		},
	}
	if _, err := db.Materialize(ctx, rel); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	got, err := db.LoadRelations(ctx)
	if err != nil {
		t.Fatalf("LoadRelations failed: %v", err)
	}
	want := []models.MarketAnalysis{rel.Market[1], rel.Market[0]}
	if diff := cmp.Diff(want, got.Market); diff != "" {
		t.Errorf("Market mismatch (-want +got):\n%s", diff)
	}
	if got.Derived[0].UltraProcessed != models.FlagUnknown || got.Derived[0].CalorieTier != models.TierUnknown {
		t.Errorf("Expected unknown derived values, got %+v", got.Derived[0])
	}
}

func TestLoadRelationsEmpty(t *testing.T) {
	db := setupTestDB(t)
	got, err := db.LoadRelations(context.Background())
	if err != nil {
		t.Fatalf("LoadRelations failed: %v", err)
	}
	if got.Len() != 0 || len(got.Market) != 0 {
		t.Errorf("Expected empty relations, got %d products", got.Len())
	}
}
