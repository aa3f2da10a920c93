package warehouse

import (
	"context"
	"fmt"

	"print-pricing/internal/database"
	"print-pricing/internal/models"

	"gorm.io/gorm"
)

// insertChunk keeps a single INSERT under every driver's placeholder limit.
const insertChunk = 1000

// SQLWarehouse stores pricing tables in a gorm-managed SQL database.
type SQLWarehouse struct {
	db      *gorm.DB
	dialect Dialect
	owned   bool
}

// NewSQL wraps an open connection. The caller keeps ownership of db.
func NewSQL(db *gorm.DB) (*SQLWarehouse, error) {
	var d Dialect
	switch db.Dialector.Name() {
	case "mysql":
		d = DialectMySQL
	case "postgres":
		d = DialectPostgres
	case "sqlite":
		d = DialectSQLite
	default:
		return nil, fmt.Errorf("unsupported gorm dialect %q", db.Dialector.Name())
	}
	return &SQLWarehouse{db: db, dialect: d}, nil
}

func (w *SQLWarehouse) QualifiedName(table string) string {
	return w.dialect.quote(table)
}

func (w *SQLWarehouse) TableExists(ctx context.Context, table string) (bool, error) {
	return w.db.WithContext(ctx).Migrator().HasTable(table), nil
}

func (w *SQLWarehouse) CreateTable(ctx context.Context, table string) error {
	return w.db.WithContext(ctx).Table(table).Migrator().CreateTable(&models.PricingRecord{})
}

func (w *SQLWarehouse) CloneSchema(ctx context.Context, src, dst string) error {
	db := w.db.WithContext(ctx)
	switch w.dialect {
	case DialectMySQL:
		return db.Exec(fmt.Sprintf("CREATE TABLE %s LIKE %s", w.dialect.quote(dst), w.dialect.quote(src))).Error
	case DialectPostgres:
		return db.Exec(fmt.Sprintf("CREATE TABLE %s (LIKE %s INCLUDING ALL)", w.dialect.quote(dst), w.dialect.quote(src))).Error
	}
	if !db.Migrator().HasTable(src) {
		return fmt.Errorf("clone schema: source table %s does not exist", src)
	}
	return w.CreateTable(ctx, dst)
}

func (w *SQLWarehouse) DropTable(ctx context.Context, table string) error {
	return w.db.WithContext(ctx).Migrator().DropTable(table)
}

func (w *SQLWarehouse) InsertRecords(ctx context.Context, table string, records []models.PricingRecord) error {
	if len(records) == 0 {
		return nil
	}
	return w.db.WithContext(ctx).Table(table).CreateInBatches(records, insertChunk).Error
}

func (w *SQLWarehouse) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := w.db.WithContext(ctx).Table(table).Count(&n).Error
	return n, err
}

func (w *SQLWarehouse) PriceChanges(ctx context.Context, live, staging string) ([]models.PriceDiff, error) {
	var rows []diffRow
	q := w.dialect.DiffQuery(w.dialect.quote(live), w.dialect.quote(staging))
	if err := w.db.WithContext(ctx).Raw(q).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.PriceDiff, len(rows))
	for i, r := range rows {
		out[i] = r.diff()
	}
	return out, nil
}

func (w *SQLWarehouse) ApplyPriceChanges(ctx context.Context, live, staging string) (int64, error) {
	res := w.db.WithContext(ctx).Exec(w.dialect.ApplyStatement(w.dialect.quote(live), w.dialect.quote(staging)))
	return res.RowsAffected, res.Error
}

// Close releases the connection only when the warehouse opened it.
func (w *SQLWarehouse) Close() error {
	if !w.owned {
		return nil
	}
	return database.Close(w.db)
}
