package crawler

import (
	"fmt"
	"regexp"
	"strconv"

	"print-pricing/internal/catalog"
	"print-pricing/internal/models"
	"print-pricing/internal/services/printpac"
)

var sealSizePattern = regexp.MustCompile(`(\d+)\s*mm\s*[×xX]\s*(\d+)\s*mm`)

// ExtractSealSize turns "正方形60mm×60mm" into "6060". Labels without a
// dimension, or with a side over 99mm, map to "Unknown".
func ExtractSealSize(label string) (string, error) {
	m := sealSizePattern.FindStringSubmatch(label)
	if m == nil {
		return catalog.UnknownValue, &catalog.UnknownOptionError{Table: "seal size", Code: label}
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil || w > 99 || h > 99 {
		return catalog.UnknownValue, &catalog.UnknownOptionError{Table: "seal size", Code: label}
	}
	return fmt.Sprintf("%02d%02d", w, h), nil
}

// Normalize maps one raw price cell to a pricing record. Lookup misses are
// returned as issues and the affected fields carry their not-found sentinel.
func Normalize(category catalog.ProductCategory, raw printpac.RawPriceRecord, startDate models.Date) (models.PricingRecord, []error) {
	var issues []error
	note := func(err error) {
		if err != nil {
			issues = append(issues, err)
		}
	}
	d := raw.Descriptor

	if d.Lamination == catalog.LaminationNotFound {
		note(&catalog.UnknownOptionError{Table: category.String() + " process", Code: d.ProcessID})
	}

	var (
		paper catalog.PIDInfo
		err   error
		shape catalog.Shape
		size  string
		color catalog.Color
	)
	switch category {
	case catalog.Seal:
		paper, err = catalog.SealPID(d.PaperGroupID, d.PaperID)
		note(err)
		shape, err = catalog.ShapeFromLabel(d.SizeLabel)
		note(err)
		size, err = ExtractSealSize(d.SizeLabel)
		note(err)
		color = catalog.FourColors
		if d.Lamination.HasWhitePlate() {
			color = catalog.FiveColors
		}
	case catalog.Sticker:
		paper, err = catalog.StickerPID(d.PaperID)
		note(err)
		shape = catalog.ShapeFree
		size = catalog.UnknownValue
		if s, err := catalog.StickerSizeByRange(d.SizeLabel); err == nil {
			size = s.Range
		} else {
			note(err)
		}
		color, err = catalog.ColorForPrintOption(d.ColorID)
		note(err)
	case catalog.MultiSticker:
		paper, err = catalog.MultiStickerPID(d.PaperID)
		note(err)
		shape = catalog.ShapeMulti
		size = catalog.UnknownValue
		if s, err := catalog.MultiStickerSheetByID(d.SizeID); err == nil {
			size = s.Code
		} else {
			note(err)
		}
		color, err = catalog.ColorForPrintOption(d.ColorID)
		note(err)
	default:
		paper = catalog.PIDInfo{PID: catalog.PIDNotFound, Glue: catalog.GlueNotFound}
		size = catalog.UnknownValue
		note(fmt.Errorf("unknown product category %d", category))
	}

	path, err := catalog.HalfCutPath(category, d.CutAmountID)
	note(err)

	list, campaign, actual := splitPrices(raw.Price, raw.Price2)

	return models.PricingRecord{
		YID:           catalog.FixedYID,
		OID1:          d.Lamination.OID1(),
		OID2:          int64(category.Form()),
		OID3:          int64(paper.Glue),
		OID4:          catalog.FixedOID4,
		Shape:         int64(shape),
		Size:          size,
		Color:         int64(color),
		Path:          path,
		IsVariable:    category.IsVariable(),
		PID:           paper.PID,
		Weight:        catalog.FixedWeight,
		Day:           raw.Day,
		Set:           raw.Unit,
		ListPrice:     list,
		CampaignPrice: campaign,
		ActualPrice:   actual,
		StartDate:     startDate,
	}, issues
}

// splitPrices applies the vendor's campaign convention: with no secondary
// price the sole price is list and actual; otherwise the secondary price is
// the list price and the primary is the campaign (and actual) price.
func splitPrices(price, price2 printpac.NullInt) (list, campaign, actual int64) {
	if !price2.Valid {
		return price.Value, 0, price.Value
	}
	return price2.Value, price.Value, price.Value
}

// RecordSet accumulates normalized records under a monotonically increasing index.
type RecordSet struct {
	next    int
	records map[int]models.PricingRecord
}

func NewRecordSet() *RecordSet {
	return &RecordSet{records: make(map[int]models.PricingRecord)}
}

func (s *RecordSet) Add(r models.PricingRecord) int {
	s.next++
	s.records[s.next] = r
	return s.next
}

func (s *RecordSet) Len() int { return len(s.records) }

func (s *RecordSet) Records() map[int]models.PricingRecord { return s.records }
