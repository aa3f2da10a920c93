package warehouse

import (
	"fmt"
	"strings"

	"print-pricing/internal/models"
)

// Dialect selects quoting, key concatenation and UPDATE syntax.
type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
	DialectBigQuery Dialect = "bigquery"
)

func (d Dialect) quote(ident string) string {
	switch d {
	case DialectMySQL, DialectBigQuery:
		return "`" + strings.ReplaceAll(ident, "`", "") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, "") + `"`
}

func (d Dialect) col(alias, name string) string {
	return alias + "." + d.quote(name)
}

// keyExpr rebuilds the composite key of alias from its key columns, joined
// with models.KeySeparator.
func (d Dialect) keyExpr(alias string) string {
	parts := make([]string, 0, 2*len(models.KeyColumns)-1)
	sep := "'" + models.KeySeparator + "'"
	for i, c := range models.KeyColumns {
		if i > 0 {
			parts = append(parts, sep)
		}
		expr := d.col(alias, c)
		if d == DialectBigQuery {
			expr = "CAST(" + expr + " AS STRING)"
		}
		parts = append(parts, expr)
	}
	if d == DialectSQLite {
		return strings.Join(parts, " || ")
	}
	return "CONCAT(" + strings.Join(parts, ", ") + ")"
}

func (d Dialect) priceDiffers(live, staging string) string {
	conds := make([]string, len(models.PriceColumns))
	for i, c := range models.PriceColumns {
		conds[i] = d.col(live, c) + " <> " + d.col(staging, c)
	}
	return "(" + strings.Join(conds, " OR ") + ")"
}

// DiffQuery selects composite_key, old_* and new_* for every changed row.
func (d Dialect) DiffQuery(live, staging string) string {
	return fmt.Sprintf(
		"SELECT %s AS composite_key, "+
			"%s AS old_list, %s AS old_campaign, %s AS old_actual, "+
			"%s AS new_list, %s AS new_campaign, %s AS new_actual "+
			"FROM %s AS l JOIN %s AS s ON %s = %s "+
			"WHERE %s ORDER BY composite_key",
		d.keyExpr("l"),
		d.col("l", "List_price"), d.col("l", "campaign_price"), d.col("l", "Actual_price"),
		d.col("s", "List_price"), d.col("s", "campaign_price"), d.col("s", "Actual_price"),
		live, staging, d.keyExpr("l"), d.keyExpr("s"),
		d.priceDiffers("l", "s"),
	)
}

// ApplyStatement updates changed live rows from staging. live and staging
// must already be quoted or qualified for the dialect.
func (d Dialect) ApplyStatement(live, staging string) string {
	updated := append(append([]string{}, models.PriceColumns...), "start_date")
	join := d.keyExpr("l") + " = " + d.keyExpr("s")

	if d == DialectMySQL {
		sets := make([]string, len(updated))
		for i, c := range updated {
			sets[i] = d.col("l", c) + " = " + d.col("s", c)
		}
		return fmt.Sprintf("UPDATE %s AS l JOIN %s AS s ON %s SET %s WHERE %s",
			live, staging, join, strings.Join(sets, ", "), d.priceDiffers("l", "s"))
	}

	sets := make([]string, len(updated))
	for i, c := range updated {
		sets[i] = d.quote(c) + " = " + d.col("s", c)
	}
	return fmt.Sprintf("UPDATE %s AS l SET %s FROM %s AS s WHERE %s AND %s",
		live, strings.Join(sets, ", "), staging, join, d.priceDiffers("l", "s"))
}

// CountQuery counts the rows of a quoted table.
func (d Dialect) CountQuery(table string) string {
	return "SELECT COUNT(*) AS n FROM " + table
}

// diffRow is the scan target of DiffQuery.
type diffRow struct {
	CompositeKey string `gorm:"column:composite_key" bigquery:"composite_key"`
	OldList      int64  `gorm:"column:old_list" bigquery:"old_list"`
	OldCampaign  int64  `gorm:"column:old_campaign" bigquery:"old_campaign"`
	OldActual    int64  `gorm:"column:old_actual" bigquery:"old_actual"`
	NewList      int64  `gorm:"column:new_list" bigquery:"new_list"`
	NewCampaign  int64  `gorm:"column:new_campaign" bigquery:"new_campaign"`
	NewActual    int64  `gorm:"column:new_actual" bigquery:"new_actual"`
}

func (r diffRow) diff() models.PriceDiff {
	return models.PriceDiff{
		CompositeKey: r.CompositeKey,
		Old:          models.Prices{List: r.OldList, Campaign: r.OldCampaign, Actual: r.OldActual},
		New:          models.Prices{List: r.NewList, Campaign: r.NewCampaign, Actual: r.NewActual},
	}
}
