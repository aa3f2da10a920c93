package crawler

import (
	"errors"
	"testing"

	"print-pricing/internal/catalog"
	"print-pricing/internal/enumerator"
	"print-pricing/internal/models"
	"print-pricing/internal/services/printpac"
)

func runDate(t *testing.T) models.Date {
	t.Helper()
	d, err := models.ParseDate("2024-06-20")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	return d
}

func clearPETDescriptor() enumerator.OptionDescriptor {
	return enumerator.OptionDescriptor{
		Category:     catalog.Seal,
		SizeID:       "600",
		SizeLabel:    "正方形60mm×60mm",
		PaperGroupID: "8",
		PaperID:      "173",
		PaperName:    "透明PET",
		ProcessID:    "5",
		Lamination:   catalog.GlossyLaminatedPPWithWhitePlate,
	}
}

func TestNormalizePriceRule(t *testing.T) {
	cases := []struct {
		name                   string
		price, price2          printpac.NullInt
		list, campaign, actual int64
	}{
		{"no campaign", printpac.Int(1000), printpac.NullInt{}, 1000, 0, 1000},
		{"campaign", printpac.Int(900), printpac.Int(1200), 1200, 900, 900},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			raw := printpac.RawPriceRecord{Price: c.price, Price2: c.price2, Unit: 100, Day: 3, Descriptor: clearPETDescriptor()}
			rec, issues := Normalize(catalog.Seal, raw, runDate(t))
			if len(issues) != 0 {
				t.Fatalf("issues: %v", issues)
			}
			if rec.ListPrice != c.list || rec.CampaignPrice != c.campaign || rec.ActualPrice != c.actual {
				t.Fatalf("prices: want=%d/%d/%d got=%d/%d/%d", c.list, c.campaign, c.actual, rec.ListPrice, rec.CampaignPrice, rec.ActualPrice)
			}
		})
	}
}

func TestNormalizeClearPETWhitePlateExample(t *testing.T) {
	raw := printpac.RawPriceRecord{
		SID:        "123",
		Price:      printpac.Int(500),
		Price2:     printpac.Int(650),
		Unit:       100,
		Day:        3,
		Descriptor: clearPETDescriptor(),
	}
	rec, issues := Normalize(catalog.Seal, raw, runDate(t))
	if len(issues) != 0 {
		t.Fatalf("issues: %v", issues)
	}

	want := models.PricingRecord{
		YID: 21, OID1: 2, OID2: 82, OID3: 1, OID4: 1,
		Shape: 1, Size: "6060", Color: 50, Path: "0", IsVariable: false,
		PID: 238, Weight: 0, Day: 3, Set: 100,
		ListPrice: 650, CampaignPrice: 500, ActualPrice: 500,
		StartDate: runDate(t),
	}
	if rec != want {
		t.Fatalf("record:\nwant=%+v\ngot= %+v", want, rec)
	}
}

func TestNormalizeSealWithoutWhitePlateIsFourColor(t *testing.T) {
	d := clearPETDescriptor()
	d.ProcessID = "2"
	d.Lamination = catalog.GlossyLaminatedPP
	rec, _ := Normalize(catalog.Seal, printpac.RawPriceRecord{Price: printpac.Int(1), Descriptor: d}, runDate(t))
	if rec.Color != int64(catalog.FourColors) {
		t.Fatalf("color: want=40 got=%d", rec.Color)
	}
}

func TestNormalizeLookupFailuresUseSentinels(t *testing.T) {
	d := clearPETDescriptor()
	d.SizeLabel = "ハート形"
	d.PaperID = "999"
	d.Lamination = catalog.LaminationNotFound

	rec, issues := Normalize(catalog.Seal, printpac.RawPriceRecord{Price: printpac.Int(100), Unit: 10, Day: 1, Descriptor: d}, runDate(t))
	if len(issues) != 4 {
		t.Fatalf("issues: want=4 got=%d (%v)", len(issues), issues)
	}
	var uerr *catalog.UnknownOptionError
	for _, e := range issues {
		if !errors.As(e, &uerr) {
			t.Fatalf("issue: want UnknownOptionError got=%T", e)
		}
	}
	if rec.Size != "Unknown" || rec.Shape != 0 || rec.PID != -1 || rec.OID3 != -1 || rec.OID1 != 0 {
		t.Fatalf("sentinels: got=%+v", rec)
	}
	if rec.ListPrice != 100 || rec.Set != 10 {
		t.Fatalf("record still carries prices: got=%+v", rec)
	}
}

func TestNormalizeSticker(t *testing.T) {
	d := enumerator.OptionDescriptor{
		Category: catalog.Sticker, SizeID: "70", SizeLabel: "2500",
		PaperID: "4", ProcessID: "2", Lamination: catalog.MatteLaminated,
		ColorID: "2", CutAmountID: "3",
	}
	rec, issues := Normalize(catalog.Sticker, printpac.RawPriceRecord{Price: printpac.Int(1110), Price2: printpac.Int(1420), Unit: 10, Day: 4, Descriptor: d}, runDate(t))
	if len(issues) != 0 {
		t.Fatalf("issues: %v", issues)
	}
	if rec.OID1 != 5 || rec.OID2 != 82 || rec.OID3 != 1 || rec.PID != 1002 {
		t.Fatalf("ids: got=%+v", rec)
	}
	if rec.Shape != 6 || rec.Size != "2500" || rec.Color != 50 || rec.Path != "2" || !rec.IsVariable {
		t.Fatalf("shape fields: got=%+v", rec)
	}
}

func TestNormalizeMultiSticker(t *testing.T) {
	d := enumerator.OptionDescriptor{
		Category: catalog.MultiSticker, SizeID: "14", SizeLabel: "ハガキサイズ（100×148mm）",
		PaperID: "409", ProcessID: "1", Lamination: catalog.GlossyLaminated,
		ColorID: "1", CutAmountID: "3",
	}
	rec, issues := Normalize(catalog.MultiSticker, printpac.RawPriceRecord{Price: printpac.Int(800), Unit: 5, Day: 6, Descriptor: d}, runDate(t))
	if len(issues) != 0 {
		t.Fatalf("issues: %v", issues)
	}
	if rec.OID1 != 2 || rec.OID2 != 80 || rec.PID != 1001 || rec.Shape != 7 || rec.Size != "1001" || rec.Color != 40 || rec.Path != "10" {
		t.Fatalf("record: got=%+v", rec)
	}
	if rec.ListPrice != 800 || rec.CampaignPrice != 0 || rec.ActualPrice != 800 {
		t.Fatalf("prices: got=%+v", rec)
	}
}

func TestExtractSealSize(t *testing.T) {
	cases := map[string]string{
		"正方形60mm×60mm":    "6060",
		"楕円形75mm×50mm":    "7550",
		"円形8mm×8mm":       "0808",
		"長方形90mm x 55mm":  "9055",
		"長方形120mm×60mm":   "Unknown",
		"フリーサイズ":          "Unknown",
	}
	for label, want := range cases {
		got, err := ExtractSealSize(label)
		if got != want {
			t.Fatalf("ExtractSealSize(%q): want=%s got=%s", label, want, got)
		}
		if (want == "Unknown") != (err != nil) {
			t.Fatalf("ExtractSealSize(%q): unexpected err=%v", label, err)
		}
	}
}

func TestRecordSetIndexesAreMonotonic(t *testing.T) {
	s := NewRecordSet()
	a := s.Add(models.PricingRecord{Day: 1})
	b := s.Add(models.PricingRecord{Day: 2})
	if a != 1 || b != 2 || s.Len() != 2 {
		t.Fatalf("indexes: got=%d,%d len=%d", a, b, s.Len())
	}
	if s.Records()[1].Day != 1 || s.Records()[2].Day != 2 {
		t.Fatalf("records bled into each other: %+v", s.Records())
	}
}
