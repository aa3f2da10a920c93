package crawler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"print-pricing/internal/enumerator"
	"print-pricing/internal/logger"
	"print-pricing/internal/services/printpac"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// PriceSource fetches the price table of one descriptor.
type PriceSource interface {
	FetchPrices(ctx context.Context, d enumerator.OptionDescriptor) ([]printpac.RawPriceRecord, error)
}

// ProgressFunc is called after every finished request.
type ProgressFunc func(done, total int)

// FetchStats summarizes one fetch pass.
type FetchStats struct {
	Total      int       `json:"total"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	NotExist   int       `json:"not_exist"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// SuccessRatio is successful fetches over all combinations.
func (s FetchStats) SuccessRatio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total)
}

// Fetcher runs one request per descriptor through a bounded pool. The limiter
// is shared, so the request interval holds across all workers.
type Fetcher struct {
	source   PriceSource
	limiter  *rate.Limiter
	workers  int
	log      *logger.Logger
	progress ProgressFunc
}

func NewFetcher(source PriceSource, interval time.Duration, workers int, log *logger.Logger) *Fetcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if workers < 1 {
		workers = 1
	}
	return &Fetcher{
		source:  source,
		limiter: rate.NewLimiter(limit, 1),
		workers: workers,
		log:     log,
	}
}

func (f *Fetcher) OnProgress(fn ProgressFunc) {
	f.progress = fn
}

// FetchAll returns one result slot per descriptor, in input order. A failed
// descriptor leaves its slot nil and is counted, never aborting the pass.
// Only context cancellation stops it early.
func (f *Fetcher) FetchAll(ctx context.Context, descriptors []enumerator.OptionDescriptor) ([][]printpac.RawPriceRecord, FetchStats, error) {
	total := len(descriptors)
	results := make([][]printpac.RawPriceRecord, total)
	stats := FetchStats{Total: total, StartedAt: time.Now()}

	var (
		mu   sync.Mutex
		done atomic.Int64
	)
	step := (total + 9) / 10

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.workers)
	for i, d := range descriptors {
		if gctx.Err() != nil {
			break
		}
		i, d := i, d
		g.Go(func() error {
			if err := f.limiter.Wait(gctx); err != nil {
				return err
			}
			recs, err := f.source.FetchPrices(gctx, d)

			mu.Lock()
			switch {
			case err == nil:
				results[i] = recs
				stats.Succeeded++
			case errors.Is(err, printpac.ErrCombinationNotExist):
				stats.Failed++
				stats.NotExist++
				f.log.Debug("Combination not offered", "descriptor", d.Key())
			default:
				stats.Failed++
				f.log.Warn("Price request failed", "descriptor", d.Key(), "error", err)
			}
			mu.Unlock()

			n := int(done.Add(1))
			if step > 0 && (n%step == 0 || n == total) {
				f.log.Info("Fetch progress", "done", n, "total", total, "percent", n*100/total)
			}
			if f.progress != nil {
				f.progress(n, total)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	stats.FinishedAt = time.Now()
	return results, stats, err
}
