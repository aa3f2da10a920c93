package crawler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"print-pricing/internal/artifact"
	"print-pricing/internal/catalog"
	"print-pricing/internal/config"
	"print-pricing/internal/enumerator"
	"print-pricing/internal/logger"
	"print-pricing/internal/services/printpac"
)

type staticOptions struct {
	vo  enumerator.VendorOptions
	err error
}

func (s staticOptions) FetchOptions(context.Context, catalog.ProductCategory) (enumerator.VendorOptions, error) {
	return s.vo, s.err
}

type priceFunc func(d enumerator.OptionDescriptor) ([]printpac.RawPriceRecord, error)

func (f priceFunc) FetchPrices(_ context.Context, d enumerator.OptionDescriptor) ([]printpac.RawPriceRecord, error) {
	return f(d)
}

func sealOptions() staticOptions {
	return staticOptions{vo: enumerator.VendorOptions{
		Sizes:       []enumerator.Option{{ID: "600", Name: "正方形60mm×60mm"}},
		PaperGroups: []enumerator.Option{{ID: "8", Name: "透明PET"}},
	}}
}

func testCrawler(t *testing.T, options OptionSource, prices PriceSource) (*Crawler, *artifact.LocalStore, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		ArtifactBucket:      "bucket",
		ArtifactSubdir:      "pricing/",
		FetchWorkers:        1,
		SaveCombinationsDir: t.TempDir(),
	}
	store := artifact.NewLocalStore(t.TempDir())
	c := New(cfg, logger.Nop(), options, prices, store)
	c.now = func() time.Time { return time.Date(2024, 6, 20, 9, 30, 0, 0, time.Local) }
	return c, store, cfg
}

func TestCrawlWritesArtifact(t *testing.T) {
	prices := priceFunc(func(d enumerator.OptionDescriptor) ([]printpac.RawPriceRecord, error) {
		if d.ProcessID == "1" {
			return nil, &printpac.FetchError{Descriptor: d.Key(), Err: printpac.ErrCombinationNotExist}
		}
		return []printpac.RawPriceRecord{
			{Price: printpac.Int(500), Price2: printpac.Int(650), Unit: 100, Day: 3, Descriptor: d},
			{Price: printpac.Int(800), Unit: 200, Day: 3, Descriptor: d},
		}, nil
	})
	c, store, cfg := testCrawler(t, sealOptions(), prices)

	var lastDone int
	c.OnProgress(func(target string, done, total int) {
		if target != "crawl_seal_prices_printpac" {
			t.Errorf("progress target: got=%s", target)
		}
		if done > lastDone {
			lastDone = done
		}
	})

	report, err := c.Crawl(context.Background(), "crawl_seal_prices_printpac")
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}

	// group 8 offers processes 1, 2, 3 and 5
	if report.Combinations != 4 || report.Succeeded != 3 || report.NotExist != 1 {
		t.Fatalf("report: got=%+v", report)
	}
	if report.Records != 6 || report.DuplicateKeys != 0 || report.LookupIssues != 0 {
		t.Fatalf("records: got=%+v", report)
	}
	if lastDone != 4 {
		t.Fatalf("progress: want=4 got=%d", lastDone)
	}

	wantKey := "pricing/printpac-label-seal_2024-06-20-09-30-00.json"
	if report.Artifact.Bucket != "bucket" || report.Artifact.Key != wantKey {
		t.Fatalf("artifact: want=bucket/%s got=%s", wantKey, report.Artifact)
	}
	body, err := store.Get(context.Background(), report.Artifact)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	records, err := artifact.Decode(body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("artifact records: want=6 got=%d", len(records))
	}
	for i := 1; i <= 6; i++ {
		r, ok := records[i]
		if !ok {
			t.Fatalf("artifact index %d missing", i)
		}
		if r.Size != "6060" || r.PID != 238 || r.StartDate.String() != "2024-06-20" {
			t.Fatalf("record %d: got=%+v", i, r)
		}
	}

	saved := filepath.Join(cfg.SaveCombinationsDir, "printpac-label-seal_combination.json")
	if _, err := os.Stat(saved); err != nil {
		t.Fatalf("combinations file: %v", err)
	}
}

func TestCrawlUnknownTarget(t *testing.T) {
	c, _, _ := testCrawler(t, sealOptions(), priceFunc(func(enumerator.OptionDescriptor) ([]printpac.RawPriceRecord, error) {
		t.Errorf("no request expected")
		return nil, nil
	}))
	if _, err := c.Crawl(context.Background(), "crawl_envelope_prices_printpac"); !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("err: want ErrUnknownTarget got=%v", err)
	}
}

func TestCrawlWithoutSuccessWritesNothing(t *testing.T) {
	prices := priceFunc(func(d enumerator.OptionDescriptor) ([]printpac.RawPriceRecord, error) {
		return nil, &printpac.FetchError{Descriptor: d.Key(), StatusCode: 503, Err: errors.New("unavailable")}
	})
	c, store, cfg := testCrawler(t, sealOptions(), prices)

	report, err := c.Crawl(context.Background(), "crawl_seal_prices_printpac")
	if err == nil {
		t.Fatalf("Crawl: expected error")
	}
	if report.Failed != 4 || report.SuccessRatio != 0 {
		t.Fatalf("report: got=%+v", report)
	}
	keys, err := store.List(context.Background(), cfg.ArtifactBucket, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("artifacts: want none got=%v", keys)
	}
}

func TestCrawlOptionFailure(t *testing.T) {
	c, _, _ := testCrawler(t, staticOptions{err: errors.New("page moved")}, priceFunc(func(enumerator.OptionDescriptor) ([]printpac.RawPriceRecord, error) {
		return nil, nil
	}))
	if _, err := c.Crawl(context.Background(), "crawl_seal_prices_printpac"); err == nil {
		t.Fatalf("Crawl: expected error")
	}
}

func TestCrawlDuplicateKeyWritesNothing(t *testing.T) {
	prices := priceFunc(func(d enumerator.OptionDescriptor) ([]printpac.RawPriceRecord, error) {
		if d.ProcessID == "1" {
			return nil, &printpac.FetchError{Descriptor: d.Key(), Err: printpac.ErrCombinationNotExist}
		}
		recs := []printpac.RawPriceRecord{{Price: printpac.Int(500), Unit: 100, Day: 3, Descriptor: d}}
		if d.ProcessID == "2" {
			recs = append(recs, printpac.RawPriceRecord{Price: printpac.Int(520), Unit: 100, Day: 3, Descriptor: d})
		}
		return recs, nil
	})
	c, store, cfg := testCrawler(t, sealOptions(), prices)

	report, err := c.Crawl(context.Background(), "crawl_seal_prices_printpac")
	var dup *DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("err: want DuplicateKeyError got=%v", err)
	}
	if dup.First == "" || dup.Second == "" || dup.Key == "" {
		t.Fatalf("duplicate: got=%+v", dup)
	}
	if report.DuplicateKeys != 1 {
		t.Fatalf("duplicates: want=1 got=%d", report.DuplicateKeys)
	}
	keys, err := store.List(context.Background(), cfg.ArtifactBucket, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("artifacts: want none got=%v", keys)
	}
}
