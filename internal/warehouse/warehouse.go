package warehouse

import (
	"context"
	"fmt"

	"print-pricing/internal/config"
	"print-pricing/internal/database"
	"print-pricing/internal/gcp"
	"print-pricing/internal/logger"
	"print-pricing/internal/models"
)

// Warehouse is the table store the registrar loads into. Every table it
// creates carries the pricing record schema.
type Warehouse interface {
	// QualifiedName is the fully qualified name used in logs and queries.
	QualifiedName(table string) string
	TableExists(ctx context.Context, table string) (bool, error)
	CreateTable(ctx context.Context, table string) error
	// CloneSchema creates dst with the column layout of src.
	CloneSchema(ctx context.Context, src, dst string) error
	// DropTable removes table. A missing table is not an error.
	DropTable(ctx context.Context, table string) error
	InsertRecords(ctx context.Context, table string, records []models.PricingRecord) error
	CountRows(ctx context.Context, table string) (int64, error)
	// PriceChanges joins live and staging on the composite key and returns
	// every row whose list, campaign or actual price differs, ordered by key.
	PriceChanges(ctx context.Context, live, staging string) ([]models.PriceDiff, error)
	// ApplyPriceChanges copies prices and start date from staging into the
	// changed live rows and reports how many rows were updated.
	ApplyPriceChanges(ctx context.Context, live, staging string) (int64, error)
	Close() error
}

// New opens the warehouse selected by cfg.WarehouseDriver.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (Warehouse, error) {
	switch cfg.WarehouseDriver {
	case config.DriverBigQuery:
		w, err := NewBigQuery(ctx, cfg.BQProjectID, cfg.BQDatasetID, gcp.ClientOptions(cfg.GoogleCredentials)...)
		if err != nil {
			return nil, err
		}
		return w, nil
	case config.DriverMySQL, config.DriverPostgres:
		db, err := database.Initialize(cfg.WarehouseDriver, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		w, err := NewSQL(db)
		if err != nil {
			database.Close(db)
			return nil, err
		}
		w.owned = true
		return w, nil
	}
	return nil, fmt.Errorf("unknown warehouse driver %q", cfg.WarehouseDriver)
}
