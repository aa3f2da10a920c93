package crawler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"print-pricing/internal/catalog"
	"print-pricing/internal/enumerator"
	"print-pricing/internal/logger"
	"print-pricing/internal/services/printpac"
)

type fakePrices struct {
	mu       sync.Mutex
	calls    int
	inFlight int
	maxSeen  int
	fail     map[string]error
	delay    time.Duration
}

func (f *fakePrices) FetchPrices(ctx context.Context, d enumerator.OptionDescriptor) ([]printpac.RawPriceRecord, error) {
	f.mu.Lock()
	f.calls++
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err, ok := f.fail[d.SizeID]; ok {
		return nil, err
	}
	return []printpac.RawPriceRecord{
		{Price: printpac.Int(100), Unit: 10, Day: 3, Descriptor: d},
		{Price: printpac.Int(200), Unit: 20, Day: 3, Descriptor: d},
	}, nil
}

func descriptors(n int) []enumerator.OptionDescriptor {
	out := make([]enumerator.OptionDescriptor, n)
	for i := range out {
		out[i] = enumerator.OptionDescriptor{Category: catalog.Seal, SizeID: string(rune('a' + i))}
	}
	return out
}

func TestFetchAllContinuesPastFailures(t *testing.T) {
	src := &fakePrices{fail: map[string]error{
		"b": &printpac.FetchError{Descriptor: "b", StatusCode: 500, Err: errors.New("boom")},
		"d": &printpac.FetchError{Descriptor: "d", Err: printpac.ErrCombinationNotExist},
	}}
	f := NewFetcher(src, 0, 1, logger.Nop())

	results, stats, err := f.FetchAll(context.Background(), descriptors(5))
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if src.calls != 5 {
		t.Fatalf("calls: want=5 got=%d", src.calls)
	}
	if stats.Total != 5 || stats.Succeeded != 3 || stats.Failed != 2 || stats.NotExist != 1 {
		t.Fatalf("stats: got=%+v", stats)
	}
	if got := stats.SuccessRatio(); got != 0.6 {
		t.Fatalf("ratio: want=0.6 got=%v", got)
	}
	if results[1] != nil || results[3] != nil {
		t.Fatalf("failed slots should be empty: %+v", results)
	}
	for _, i := range []int{0, 2, 4} {
		if len(results[i]) != 2 || results[i][0].Descriptor.SizeID != descriptors(5)[i].SizeID {
			t.Fatalf("slot %d: got=%+v", i, results[i])
		}
	}
}

func TestFetchAllBoundedWorkers(t *testing.T) {
	src := &fakePrices{delay: 5 * time.Millisecond}
	f := NewFetcher(src, 0, 3, logger.Nop())

	var mu sync.Mutex
	var last int
	f.OnProgress(func(done, total int) {
		mu.Lock()
		if done > last {
			last = done
		}
		mu.Unlock()
	})

	_, stats, err := f.FetchAll(context.Background(), descriptors(12))
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if stats.Succeeded != 12 {
		t.Fatalf("succeeded: want=12 got=%d", stats.Succeeded)
	}
	if src.maxSeen > 3 {
		t.Fatalf("in flight: want<=3 got=%d", src.maxSeen)
	}
	if last != 12 {
		t.Fatalf("progress: want=12 got=%d", last)
	}
}

func TestFetchAllRespectsInterval(t *testing.T) {
	src := &fakePrices{}
	f := NewFetcher(src, 20*time.Millisecond, 4, logger.Nop())

	start := time.Now()
	if _, _, err := f.FetchAll(context.Background(), descriptors(4)); err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	// first token is immediate, the other three wait one interval each
	if elapsed := time.Since(start); elapsed < 55*time.Millisecond {
		t.Fatalf("elapsed: want>=60ms got=%v", elapsed)
	}
}

func TestFetchAllStopsOnCancel(t *testing.T) {
	src := &fakePrices{}
	f := NewFetcher(src, time.Hour, 1, logger.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, stats, err := f.FetchAll(ctx, descriptors(3))
	if err == nil {
		t.Fatalf("FetchAll: expected context error")
	}
	if stats.Succeeded > 1 {
		t.Fatalf("succeeded: want<=1 got=%d", stats.Succeeded)
	}
}
