package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PricingRecord is one sellable configuration at one quantity tier and lead time.
type PricingRecord struct {
	YID           int64  `json:"yid" gorm:"column:yid"`
	OID1          int64  `json:"oid1" gorm:"column:oid1"`
	OID2          int64  `json:"oid2" gorm:"column:oid2"`
	OID3          int64  `json:"oid3" gorm:"column:oid3"`
	OID4          int64  `json:"oid4" gorm:"column:oid4"`
	Shape         int64  `json:"shape" gorm:"column:shape"`
	Size          string `json:"size" gorm:"column:size;type:varchar(32)"`
	Color         int64  `json:"color" gorm:"column:color"`
	Path          string `json:"path" gorm:"column:path;type:varchar(32)"`
	IsVariable    bool   `json:"is_variable" gorm:"column:is_variable"`
	PID           int64  `json:"pid" gorm:"column:pid"`
	Weight        int64  `json:"weight" gorm:"column:weight"`
	Day           int64  `json:"day" gorm:"column:day"`
	Set           int64  `json:"set" gorm:"column:set"`
	ListPrice     int64  `json:"List_price" gorm:"column:List_price"`
	CampaignPrice int64  `json:"campaign_price" gorm:"column:campaign_price"`
	ActualPrice   int64  `json:"Actual_price" gorm:"column:Actual_price"`
	StartDate     Date   `json:"start_date" gorm:"column:start_date;type:date"`
}

// KeySeparator joins composite key fields. No key field may contain it.
const KeySeparator = "_"

// KeyColumns are the composite key fields in key order.
var KeyColumns = []string{"oid1", "oid2", "oid3", "shape", "size", "color", "path", "pid", "day", "set"}

// PriceColumns are the fields compared when diffing two loads.
var PriceColumns = []string{"List_price", "campaign_price", "Actual_price"}

// CompositeKey identifies the configuration across crawl runs.
func (r PricingRecord) CompositeKey() string {
	return strings.Join([]string{
		strconv.FormatInt(r.OID1, 10),
		strconv.FormatInt(r.OID2, 10),
		strconv.FormatInt(r.OID3, 10),
		strconv.FormatInt(r.Shape, 10),
		r.Size,
		strconv.FormatInt(r.Color, 10),
		r.Path,
		strconv.FormatInt(r.PID, 10),
		strconv.FormatInt(r.Day, 10),
		strconv.FormatInt(r.Set, 10),
	}, KeySeparator)
}

// ValidateKey rejects records whose string key fields would break ParseCompositeKey.
func (r PricingRecord) ValidateKey() error {
	if strings.Contains(r.Size, KeySeparator) {
		return fmt.Errorf("size %q contains key separator", r.Size)
	}
	if strings.Contains(r.Path, KeySeparator) {
		return fmt.Errorf("path %q contains key separator", r.Path)
	}
	return nil
}

// Prices returns the three price fields.
func (r PricingRecord) Prices() Prices {
	return Prices{List: r.ListPrice, Campaign: r.CampaignPrice, Actual: r.ActualPrice}
}

// KeyFields is a parsed composite key.
type KeyFields struct {
	OID1  int64
	OID2  int64
	OID3  int64
	Shape int64
	Size  string
	Color int64
	Path  string
	PID   int64
	Day   int64
	Set   int64
}

// ParseCompositeKey splits a key produced by CompositeKey.
func ParseCompositeKey(key string) (KeyFields, error) {
	parts := strings.Split(key, KeySeparator)
	if len(parts) != len(KeyColumns) {
		return KeyFields{}, fmt.Errorf("composite key %q: want %d fields, got %d", key, len(KeyColumns), len(parts))
	}

	ints := make([]int64, len(parts))
	for i, p := range parts {
		if KeyColumns[i] == "size" || KeyColumns[i] == "path" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return KeyFields{}, fmt.Errorf("composite key %q: field %s: %w", key, KeyColumns[i], err)
		}
		ints[i] = v
	}

	return KeyFields{
		OID1:  ints[0],
		OID2:  ints[1],
		OID3:  ints[2],
		Shape: ints[3],
		Size:  parts[4],
		Color: ints[5],
		Path:  parts[6],
		PID:   ints[7],
		Day:   ints[8],
		Set:   ints[9],
	}, nil
}

// RunLog persists one crawl or registration run.
type RunLog struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	RunID        string     `json:"run_id" gorm:"uniqueIndex;size:64;not null"`
	Kind         string     `json:"kind" gorm:"size:16;index"`
	Target       string     `json:"target" gorm:"size:128;index"`
	Status       string     `json:"status" gorm:"size:16"`
	Message      string     `json:"message" gorm:"type:text"`
	ArtifactKey  string     `json:"artifact_key,omitempty" gorm:"size:255"`
	Records      int        `json:"records"`
	Changed      int        `json:"changed"`
	SuccessRatio float64    `json:"success_ratio"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (RunLog) TableName() string {
	return "pricing_runs"
}
