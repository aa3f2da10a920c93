package artifact

import (
	"context"
	"errors"
	"testing"
	"time"

	"print-pricing/internal/models"
)

func TestNameAndPrefix(t *testing.T) {
	ts := time.Date(2024, 6, 20, 9, 5, 7, 0, time.Local)
	name := Name("printpac-multi-sticker", ts)
	if name != "printpac-multi-sticker_2024-06-20-09-05-07.json" {
		t.Fatalf("Name: got=%q", name)
	}

	key := Key("pricing/", name)
	if key != "pricing/"+name {
		t.Fatalf("Key: got=%q", key)
	}

	prefix, err := ProductPrefix(key)
	if err != nil {
		t.Fatalf("ProductPrefix: %v", err)
	}
	if prefix != "printpac-multi-sticker" {
		t.Fatalf("ProductPrefix: got=%q", prefix)
	}

	got, err := Timestamp(key)
	if err != nil {
		t.Fatalf("Timestamp: %v", err)
	}
	if !got.Equal(ts) {
		t.Fatalf("Timestamp: want=%v got=%v", ts, got)
	}
}

func TestProductPrefixRejectsBadKeys(t *testing.T) {
	for _, k := range []string{"pricing/notes.txt", "pricing/_2024.json", "nounderscore.json"} {
		if _, err := ProductPrefix(k); err == nil {
			t.Fatalf("ProductPrefix(%q): expected error", k)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	d, _ := models.ParseDate("2024-06-20")
	in := map[int]models.PricingRecord{
		1: {YID: 21, OID1: 2, Size: "6060", Path: "0", Set: 100, Day: 3, ListPrice: 650, StartDate: d},
		2: {YID: 21, OID1: 1, Size: "6060", Path: "0", Set: 100, Day: 5, ListPrice: 400, StartDate: d},
	}
	body, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := Decode(body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != 2 || out[1] != in[1] || out[2] != in[2] {
		t.Fatalf("Decode: want=%+v got=%+v", in, out)
	}

	ordered := Ordered(out)
	if ordered[0].Day != 3 || ordered[1].Day != 5 {
		t.Fatalf("Ordered: got=%+v", ordered)
	}

	if _, err := Decode([]byte(`[1,2]`)); err == nil {
		t.Fatalf("Decode(array): expected error")
	}
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStore(t.TempDir())

	older := Location{Bucket: "b", Key: Key("pricing", "printpac-sticker_2024-06-19-00-00-00.json")}
	newer := Location{Bucket: "b", Key: Key("pricing", "printpac-sticker_2024-06-20-00-00-00.json")}
	other := Location{Bucket: "b", Key: Key("pricing", "printpac-label-seal_2024-06-21-00-00-00.json")}
	for _, loc := range []Location{newer, older, other} {
		if err := s.Put(ctx, loc, []byte(`{}`)); err != nil {
			t.Fatalf("Put(%s): %v", loc, err)
		}
	}

	body, err := s.Get(ctx, newer)
	if err != nil || string(body) != "{}" {
		t.Fatalf("Get: body=%q err=%v", body, err)
	}
	if _, err := s.Get(ctx, Location{Bucket: "b", Key: "missing.json"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing): want ErrNotFound got=%v", err)
	}

	keys, err := s.List(ctx, "b", "pricing/printpac-sticker_")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 || keys[0] != older.Key {
		t.Fatalf("List: got=%v", keys)
	}

	latest, err := Latest(ctx, s, "b", "pricing/", "printpac-sticker")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest != newer.Key {
		t.Fatalf("Latest: want=%s got=%s", newer.Key, latest)
	}

	if _, err := Latest(ctx, s, "empty", "pricing/", "printpac-sticker"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Latest(empty): want ErrNotFound got=%v", err)
	}

	if err := s.Put(ctx, Location{Bucket: "b", Key: "../../escape.json"}, nil); err == nil {
		t.Fatalf("Put(escape): expected error")
	}
}
