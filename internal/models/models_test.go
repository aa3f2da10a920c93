package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleRecord() PricingRecord {
	return PricingRecord{
		YID: 21, OID1: 2, OID2: 82, OID3: 1, OID4: 1,
		Shape: 1, Size: "6060", Color: 50, Path: "0",
		PID: 238, Day: 3, Set: 100,
		ListPrice: 650, CampaignPrice: 500, ActualPrice: 500,
		StartDate: DateOf(time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)),
	}
}

func TestCompositeKeyRoundTrip(t *testing.T) {
	r := sampleRecord()
	key := r.CompositeKey()
	if key != "2_82_1_1_6060_50_0_238_3_100" {
		t.Fatalf("key: got=%q", key)
	}

	f, err := ParseCompositeKey(key)
	if err != nil {
		t.Fatalf("ParseCompositeKey: %v", err)
	}
	want := KeyFields{OID1: 2, OID2: 82, OID3: 1, Shape: 1, Size: "6060", Color: 50, Path: "0", PID: 238, Day: 3, Set: 100}
	if f != want {
		t.Fatalf("fields: want=%+v got=%+v", want, f)
	}
}

func TestCompositeKeyRoundTripSentinels(t *testing.T) {
	r := sampleRecord()
	r.OID3 = -1
	r.PID = -1
	r.Size = "Unknown"
	r.Path = "15"

	f, err := ParseCompositeKey(r.CompositeKey())
	if err != nil {
		t.Fatalf("ParseCompositeKey: %v", err)
	}
	if f.OID3 != -1 || f.PID != -1 || f.Size != "Unknown" || f.Path != "15" {
		t.Fatalf("fields: got=%+v", f)
	}
}

func TestCompositeKeySeparatorInField(t *testing.T) {
	r := sampleRecord()
	r.Size = "60_60"

	if err := r.ValidateKey(); err == nil {
		t.Fatalf("ValidateKey: expected error for size with separator")
	}
	if _, err := ParseCompositeKey(r.CompositeKey()); err == nil {
		t.Fatalf("ParseCompositeKey: expected field count error")
	}

	r = sampleRecord()
	r.Path = "a_b"
	if err := r.ValidateKey(); err == nil {
		t.Fatalf("ValidateKey: expected error for path with separator")
	}
}

func TestParseCompositeKeyRejectsNonNumeric(t *testing.T) {
	if _, err := ParseCompositeKey("x_82_1_1_6060_50_0_238_3_100"); err == nil {
		t.Fatalf("ParseCompositeKey: expected error")
	}
}

func TestPricingRecordJSONFieldNames(t *testing.T) {
	b, err := json.Marshal(sampleRecord())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(b)
	for _, f := range []string{`"List_price":650`, `"campaign_price":500`, `"Actual_price":500`, `"set":100`, `"start_date":"2024-06-20"`, `"is_variable":false`} {
		if !strings.Contains(s, f) {
			t.Fatalf("json: missing %s in %s", f, s)
		}
	}

	var back PricingRecord
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != sampleRecord() {
		t.Fatalf("decoded: want=%+v got=%+v", sampleRecord(), back)
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2024-06-20 00:00:00"); err != nil {
		t.Fatalf("Scan string: %v", err)
	}
	if d.String() != "2024-06-20" {
		t.Fatalf("Scan string: got=%s", d)
	}
	if err := d.Scan(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan time: %v", err)
	}
	if d.String() != "2025-01-02" {
		t.Fatalf("Scan time: got=%s", d)
	}
	if err := d.Scan(42); err == nil {
		t.Fatalf("Scan int: expected error")
	}
}

func TestEffectivePrice(t *testing.T) {
	cases := []struct {
		p    Prices
		want int64
	}{
		{Prices{List: 1000, Campaign: 0, Actual: 1000}, 1000},
		{Prices{List: 1200, Campaign: 900, Actual: 900}, 900},
		{Prices{}, 0},
		{Prices{List: 0, Campaign: 0, Actual: 700}, 700},
	}
	for _, c := range cases {
		if got := c.p.Effective(); got != c.want {
			t.Fatalf("Effective(%+v): want=%d got=%d", c.p, c.want, got)
		}
	}
}
