package artifact

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"print-pricing/internal/models"
)

// TimestampLayout is the artifact name timestamp.
const TimestampLayout = "2006-01-02-15-04-05"

// Location addresses one artifact in a store.
type Location struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func (l Location) String() string {
	if l.Bucket == "" {
		return l.Key
	}
	return l.Bucket + "/" + l.Key
}

// Name builds "<prefix>_<timestamp>.json".
func Name(prefix string, t time.Time) string {
	return prefix + "_" + t.Format(TimestampLayout) + ".json"
}

// Key joins the configured subdirectory and an artifact name.
func Key(subdir, name string) string {
	subdir = strings.Trim(subdir, "/")
	if subdir == "" {
		return name
	}
	return subdir + "/" + name
}

// ProductPrefix extracts the product prefix from an artifact key.
func ProductPrefix(key string) (string, error) {
	base := path.Base(key)
	if !strings.HasSuffix(base, ".json") {
		return "", fmt.Errorf("artifact %q: not a .json file", key)
	}
	i := strings.Index(base, "_")
	if i <= 0 {
		return "", fmt.Errorf("artifact %q: no product prefix", key)
	}
	return base[:i], nil
}

// Timestamp parses the creation time encoded in an artifact key.
func Timestamp(key string) (time.Time, error) {
	base := strings.TrimSuffix(path.Base(key), ".json")
	i := strings.Index(base, "_")
	if i < 0 {
		return time.Time{}, fmt.Errorf("artifact %q: no timestamp", key)
	}
	return time.ParseInLocation(TimestampLayout, base[i+1:], time.Local)
}

// Encode writes records as {"<index>": record, ...}.
func Encode(records map[int]models.PricingRecord) ([]byte, error) {
	return json.Marshal(records)
}

// Decode reads a body produced by Encode.
func Decode(body []byte) (map[int]models.PricingRecord, error) {
	var out map[int]models.PricingRecord
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if out == nil {
		out = map[int]models.PricingRecord{}
	}
	return out, nil
}

// Ordered returns records sorted by index.
func Ordered(records map[int]models.PricingRecord) []models.PricingRecord {
	idx := make([]int, 0, len(records))
	for i := range records {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([]models.PricingRecord, len(idx))
	for n, i := range idx {
		out[n] = records[i]
	}
	return out
}
