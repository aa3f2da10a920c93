package warehouse

import (
	"context"
	"errors"
	"fmt"

	"print-pricing/internal/gcp"
	"print-pricing/internal/models"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// pricingSchema mirrors models.PricingRecord.
var pricingSchema = bigquery.Schema{
	{Name: "yid", Type: bigquery.IntegerFieldType},
	{Name: "oid1", Type: bigquery.IntegerFieldType},
	{Name: "oid2", Type: bigquery.IntegerFieldType},
	{Name: "oid3", Type: bigquery.IntegerFieldType},
	{Name: "oid4", Type: bigquery.IntegerFieldType},
	{Name: "shape", Type: bigquery.IntegerFieldType},
	{Name: "size", Type: bigquery.StringFieldType},
	{Name: "color", Type: bigquery.IntegerFieldType},
	{Name: "path", Type: bigquery.StringFieldType},
	{Name: "is_variable", Type: bigquery.BooleanFieldType},
	{Name: "pid", Type: bigquery.IntegerFieldType},
	{Name: "weight", Type: bigquery.IntegerFieldType},
	{Name: "day", Type: bigquery.IntegerFieldType},
	{Name: "set", Type: bigquery.IntegerFieldType},
	{Name: "List_price", Type: bigquery.IntegerFieldType},
	{Name: "campaign_price", Type: bigquery.IntegerFieldType},
	{Name: "Actual_price", Type: bigquery.IntegerFieldType},
	{Name: "start_date", Type: bigquery.DateFieldType},
}

// BigQueryWarehouse stores pricing tables in one BigQuery dataset.
type BigQueryWarehouse struct {
	client  *bigquery.Client
	project string
	dataset string
}

func NewBigQuery(ctx context.Context, projectID, datasetID string, opts ...option.ClientOption) (*BigQueryWarehouse, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	return &BigQueryWarehouse{client: client, project: projectID, dataset: datasetID}, nil
}

func (w *BigQueryWarehouse) table(name string) *bigquery.Table {
	return w.client.Dataset(w.dataset).Table(name)
}

func (w *BigQueryWarehouse) QualifiedName(table string) string {
	return fmt.Sprintf("%s.%s.%s", w.project, w.dataset, table)
}

func (w *BigQueryWarehouse) ref(table string) string {
	return DialectBigQuery.quote(w.QualifiedName(table))
}

func (w *BigQueryWarehouse) TableExists(ctx context.Context, table string) (bool, error) {
	_, err := w.table(table).Metadata(ctx)
	if gcp.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (w *BigQueryWarehouse) CreateTable(ctx context.Context, table string) error {
	return w.table(table).Create(ctx, &bigquery.TableMetadata{Schema: pricingSchema})
}

func (w *BigQueryWarehouse) CloneSchema(ctx context.Context, src, dst string) error {
	md, err := w.table(src).Metadata(ctx)
	if err != nil {
		return fmt.Errorf("read schema of %s: %w", src, err)
	}
	return w.table(dst).Create(ctx, &bigquery.TableMetadata{Schema: md.Schema})
}

func (w *BigQueryWarehouse) DropTable(ctx context.Context, table string) error {
	err := w.table(table).Delete(ctx)
	if gcp.IsNotFound(err) {
		return nil
	}
	return err
}

// recordSaver streams one record. Rows carry no insert id so identical
// records are never deduplicated away.
type recordSaver struct {
	r models.PricingRecord
}

func (s recordSaver) Save() (map[string]bigquery.Value, string, error) {
	r := s.r
	return map[string]bigquery.Value{
		"yid":            r.YID,
		"oid1":           r.OID1,
		"oid2":           r.OID2,
		"oid3":           r.OID3,
		"oid4":           r.OID4,
		"shape":          r.Shape,
		"size":           r.Size,
		"color":          r.Color,
		"path":           r.Path,
		"is_variable":    r.IsVariable,
		"pid":            r.PID,
		"weight":         r.Weight,
		"day":            r.Day,
		"set":            r.Set,
		"List_price":     r.ListPrice,
		"campaign_price": r.CampaignPrice,
		"Actual_price":   r.ActualPrice,
		"start_date":     r.StartDate.Date,
	}, bigquery.NoDedupeID, nil
}

func (w *BigQueryWarehouse) InsertRecords(ctx context.Context, table string, records []models.PricingRecord) error {
	if len(records) == 0 {
		return nil
	}
	savers := make([]recordSaver, len(records))
	for i, r := range records {
		savers[i] = recordSaver{r}
	}
	if err := w.table(table).Inserter().Put(ctx, savers); err != nil {
		var multi bigquery.PutMultiError
		if errors.As(err, &multi) && len(multi) > 0 {
			return fmt.Errorf("insert into %s: %d rows rejected, first: %v", table, len(multi), multi[0].Error())
		}
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

func (w *BigQueryWarehouse) CountRows(ctx context.Context, table string) (int64, error) {
	it, err := w.client.Query(DialectBigQuery.CountQuery(w.ref(table))).Read(ctx)
	if err != nil {
		return 0, err
	}
	var row struct {
		N int64 `bigquery:"n"`
	}
	if err := it.Next(&row); err != nil {
		return 0, err
	}
	return row.N, nil
}

func (w *BigQueryWarehouse) PriceChanges(ctx context.Context, live, staging string) ([]models.PriceDiff, error) {
	it, err := w.client.Query(DialectBigQuery.DiffQuery(w.ref(live), w.ref(staging))).Read(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.PriceDiff
	for {
		var row diffRow
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row.diff())
	}
	return out, nil
}

func (w *BigQueryWarehouse) ApplyPriceChanges(ctx context.Context, live, staging string) (int64, error) {
	job, err := w.client.Query(DialectBigQuery.ApplyStatement(w.ref(live), w.ref(staging))).Run(ctx)
	if err != nil {
		return 0, err
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, err
	}
	if err := status.Err(); err != nil {
		return 0, err
	}
	if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		return stats.NumDMLAffectedRows, nil
	}
	return 0, nil
}

func (w *BigQueryWarehouse) Close() error {
	return w.client.Close()
}
