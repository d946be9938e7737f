// ABOUTME: Application context shared by the dashboard, CLI and MCP server.
// ABOUTME: Loads the dataset once, materializes it and wires the query catalog.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/chococrunch/internal/catalog"
	"github.com/harperreed/chococrunch/internal/config"
	"github.com/harperreed/chococrunch/internal/eda"
	"github.com/harperreed/chococrunch/internal/ingest"
	"github.com/harperreed/chococrunch/internal/storage"
	"go.uber.org/zap"
)

// App is the loaded, read-only state of one session.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Source   string
	Dataset  *ingest.Dataset
	Store    *storage.DB
	Catalog  *catalog.Catalog
	Analysis *eda.Analysis
	LoadedAt time.Time
}

// Load builds an App from cfg. A configured database path is opened as an
// existing materialized store; otherwise the CSV is ingested into an
// in-memory store and optionally saved to cfg's save path. Dataset is nil
// when the source is a database. Load failures are *ingest.LoadError.
func Load(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, Log: log}

	var err error
	if cfg.UsesDatabase() {
		err = a.openDatabase(ctx, cfg.GetDBPath())
	} else {
		err = a.loadCSV(ctx, cfg.GetCSVPath())
	}
	if err != nil {
		return nil, err
	}

	a.Catalog = catalog.New(a.Store, log)
	a.LoadedAt = time.Now()
	log.Info("dataset ready",
		zap.String("source", a.Source),
		zap.Int("products", a.Products()),
		zap.Int("queries", len(a.Catalog.List(""))))
	return a, nil
}

func (a *App) loadCSV(ctx context.Context, path string) error {
	start := time.Now()
	ds, err := ingest.LoadFile(path)
	if err != nil {
		return err
	}
	a.Log.Info("csv loaded",
		zap.String("path", path),
		zap.Int("rows", ds.Report.Rows),
		zap.Int("products", ds.Report.Products),
		zap.Int("duplicates", ds.Report.Duplicates),
		zap.Int("skipped_empty_code", ds.Report.SkippedEmptyCode),
		zap.Strings("ignored_columns", ds.Report.IgnoredColumns),
		zap.Duration("elapsed", time.Since(start)))

	store, err := storage.Open(storage.MemoryPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	summary, err := store.Materialize(ctx, ds.Relations)
	if err != nil {
		store.Close()
		return fmt.Errorf("materialize dataset: %w", err)
	}
	a.Log.Debug("relations materialized",
		zap.Int("product_info", summary.Products),
		zap.Int("nutrient_info", summary.Nutrients),
		zap.Int("derived_metrics", summary.Derived),
		zap.Int("market_analysis", summary.Market))

	if save := a.Config.GetSaveDB(); save != "" {
		if err := store.SaveCopy(ctx, save); err != nil {
			store.Close()
			return fmt.Errorf("save database: %w", err)
		}
		a.Log.Info("database saved", zap.String("path", save))
	}

	a.Source = path
	a.Dataset = ds
	a.Store = store
	a.Analysis = eda.Analyze(ds.Relations, eda.DefaultBins)
	return nil
}

func (a *App) openDatabase(ctx context.Context, path string) error {
	store, err := storage.OpenExisting(ctx, path)
	if err != nil {
		return err
	}
	rel, err := store.LoadRelations(ctx)
	if err != nil {
		store.Close()
		return &ingest.LoadError{Kind: ingest.KindInvalidDatabase, Source: path, Err: err}
	}
	if rel.Len() == 0 {
		store.Close()
		return &ingest.LoadError{Kind: ingest.KindEmpty, Source: path}
	}
	a.Log.Info("database opened", zap.String("path", path), zap.Int("products", rel.Len()))

	a.Source = path
	a.Store = store
	a.Analysis = eda.Analyze(rel, eda.DefaultBins)
	return nil
}

// Products returns the number of products in the store.
func (a *App) Products() int {
	if a.Dataset != nil {
		return a.Dataset.Report.Products
	}
	if a.Store == nil {
		return 0
	}
	n, err := a.Store.Count(context.Background(), storage.TableProducts)
	if err != nil {
		return 0
	}
	return n
}

// Summary returns the data summary page content. Without a CSV dataset only
// the field summaries are available.
func (a *App) Summary() *eda.DataSummary {
	if a.Dataset != nil {
		return eda.Summarise(a.Dataset)
	}
	s := &eda.DataSummary{Source: a.Source, Report: ingest.Report{Products: a.Products()}}
	if a.Analysis != nil {
		s.Fields = a.Analysis.Summaries
	}
	return s
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
