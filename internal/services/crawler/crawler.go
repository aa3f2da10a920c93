package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"print-pricing/internal/artifact"
	"print-pricing/internal/catalog"
	"print-pricing/internal/config"
	"print-pricing/internal/enumerator"
	"print-pricing/internal/logger"
	"print-pricing/internal/models"
)

// ErrUnknownTarget is returned for a crawl selector with no registered product.
var ErrUnknownTarget = errors.New("unknown crawl target")

// DuplicateKeyError reports two normalized records sharing a composite key.
// First and Second are the descriptors that produced them.
type DuplicateKeyError struct {
	Key    string
	First  string
	Second string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate composite key %s from %s and %s", e.Key, e.First, e.Second)
}

// OptionSource scrapes a product page's option lists.
type OptionSource interface {
	FetchOptions(ctx context.Context, category catalog.ProductCategory) (enumerator.VendorOptions, error)
}

// Report is the outcome of one crawl.
type Report struct {
	Target        string            `json:"target"`
	Product       string            `json:"product"`
	Artifact      artifact.Location `json:"artifact"`
	Combinations  int               `json:"combinations"`
	Succeeded     int               `json:"succeeded"`
	Failed        int               `json:"failed"`
	NotExist      int               `json:"not_exist"`
	SuccessRatio  float64           `json:"success_ratio"`
	Records       int               `json:"records"`
	DuplicateKeys int               `json:"duplicate_keys"`
	LookupIssues  int               `json:"lookup_issues"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    time.Time         `json:"finished_at"`
}

// Crawler runs enumerate -> fetch -> normalize -> persist for one product.
type Crawler struct {
	cfg      *config.Config
	log      *logger.Logger
	options  OptionSource
	prices   PriceSource
	store    artifact.Store
	now      func() time.Time
	progress func(target string, done, total int)
}

func New(cfg *config.Config, log *logger.Logger, options OptionSource, prices PriceSource, store artifact.Store) *Crawler {
	return &Crawler{
		cfg:     cfg,
		log:     log.With("component", "crawler"),
		options: options,
		prices:  prices,
		store:   store,
		now:     time.Now,
	}
}

// OnProgress registers a per-request progress hook.
func (c *Crawler) OnProgress(fn func(target string, done, total int)) {
	c.progress = fn
}

// Crawl runs the product named by target and uploads its artifact. Nothing is
// written unless the whole pass completes.
func (c *Crawler) Crawl(ctx context.Context, target string) (*Report, error) {
	product, ok := catalog.ProductByTarget(target)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	log := c.log.With("target", target)
	started := c.now()
	report := &Report{Target: target, Product: product.ArtifactPrefix, StartedAt: started}

	opts, err := c.options.FetchOptions(ctx, product.Category)
	if err != nil {
		return report, fmt.Errorf("fetch options: %w", err)
	}
	descriptors, err := enumerator.Build(product.Category, opts)
	if err != nil {
		return report, fmt.Errorf("enumerate combinations: %w", err)
	}
	report.Combinations = len(descriptors)
	log.Info("Combinations enumerated", "combinations", len(descriptors))

	if c.cfg.SaveCombinationsDir != "" {
		if err := c.saveCombinations(product, descriptors); err != nil {
			log.Warn("Failed to save combinations", "error", err)
		}
	}

	fetcher := NewFetcher(c.prices, c.cfg.RequestInterval, c.cfg.FetchWorkers, log)
	if c.progress != nil {
		fetcher.OnProgress(func(done, total int) { c.progress(target, done, total) })
	}
	results, stats, err := fetcher.FetchAll(ctx, descriptors)
	report.Succeeded, report.Failed, report.NotExist = stats.Succeeded, stats.Failed, stats.NotExist
	report.SuccessRatio = stats.SuccessRatio()
	if err != nil {
		return report, fmt.Errorf("fetch prices: %w", err)
	}
	if stats.Succeeded == 0 {
		return report, fmt.Errorf("no combination returned prices (%d attempted)", stats.Total)
	}

	startDate := models.DateOf(started)
	set := NewRecordSet()
	issues := map[string]int{}
	seen := map[string]string{}
	var dup *DuplicateKeyError
	for _, recs := range results {
		for _, raw := range recs {
			rec, errs := Normalize(product.Category, raw, startDate)
			for _, e := range errs {
				issues[e.Error()]++
			}
			if err := rec.ValidateKey(); err != nil {
				return report, fmt.Errorf("normalize %s: %w", raw.Descriptor.Key(), err)
			}
			key := rec.CompositeKey()
			from := fmt.Sprintf("%s set=%d day=%d", raw.Descriptor.Key(), raw.Unit, raw.Day)
			if first, ok := seen[key]; ok {
				report.DuplicateKeys++
				if dup == nil {
					dup = &DuplicateKeyError{Key: key, First: first, Second: from}
				}
				continue
			}
			seen[key] = from
			set.Add(rec)
		}
	}
	report.Records = set.Len()
	for _, msg := range sortedIssueKeys(issues) {
		report.LookupIssues += issues[msg]
		log.Warn("Lookup failed during normalization", "issue", msg, "records", issues[msg])
	}
	if dup != nil {
		log.Error("Duplicate composite keys in crawl output", "duplicates", report.DuplicateKeys, "key", dup.Key)
		return report, dup
	}

	body, err := artifact.Encode(set.Records())
	if err != nil {
		return report, err
	}
	loc := artifact.Location{
		Bucket: c.cfg.ArtifactBucket,
		Key:    artifact.Key(c.cfg.ArtifactSubdir, artifact.Name(product.ArtifactPrefix, started)),
	}
	if err := c.store.Put(ctx, loc, body); err != nil {
		return report, fmt.Errorf("upload artifact: %w", err)
	}
	report.Artifact = loc
	report.FinishedAt = c.now()

	log.Info("Crawl finished",
		"artifact", loc.String(),
		"records", report.Records,
		"success_rate", fmt.Sprintf("%.2f%%", report.SuccessRatio*100),
		"failed", report.Failed,
		"duration", report.FinishedAt.Sub(started).String(),
	)
	return report, nil
}

func (c *Crawler) saveCombinations(product catalog.Product, descriptors []enumerator.OptionDescriptor) error {
	if err := os.MkdirAll(c.cfg.SaveCombinationsDir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(descriptors, "", "    ")
	if err != nil {
		return err
	}
	p := filepath.Join(c.cfg.SaveCombinationsDir, product.ArtifactPrefix+"_combination.json")
	return os.WriteFile(p, b, 0o644)
}

func sortedIssueKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
