package export

import (
	"fmt"
	"io"

	"print-pricing/internal/models"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the records.
const SheetName = "prices"

// Columns is the header row, in schema order.
var Columns = []string{
	"yid", "oid1", "oid2", "oid3", "oid4", "shape", "size", "color", "path",
	"is_variable", "pid", "weight", "day", "set",
	"List_price", "campaign_price", "Actual_price", "start_date",
}

func row(r models.PricingRecord) []interface{} {
	return []interface{}{
		r.YID, r.OID1, r.OID2, r.OID3, r.OID4, r.Shape, r.Size, r.Color, r.Path,
		r.IsVariable, r.PID, r.Weight, r.Day, r.Set,
		r.ListPrice, r.CampaignPrice, r.ActualPrice, r.StartDate.String(),
	}
}

// WriteXLSX writes one row per record, in the given order, under a styled
// header with an autofilter.
func WriteXLSX(w io.Writer, records []models.PricingRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	headerStyleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#548235"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyleID); err != nil {
		return err
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(r)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", lastCol, 14); err != nil {
		return err
	}
	if err := f.AutoFilter(SheetName, fmt.Sprintf("A1:%s%d", lastCol, len(records)+1), nil); err != nil {
		return err
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}

	return f.Write(w)
}
