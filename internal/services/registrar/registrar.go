package registrar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"print-pricing/internal/artifact"
	"print-pricing/internal/catalog"
	"print-pricing/internal/config"
	"print-pricing/internal/logger"
	"print-pricing/internal/models"
	"print-pricing/internal/warehouse"

	"github.com/google/uuid"
)

// Notifier delivers the price change digest of one product. Errors are
// logged by the registrar and never fail a run.
type Notifier interface {
	Notify(ctx context.Context, category catalog.ProductCategory, diffs []models.PriceDiff) error
}

// Result describes one registration run.
type Result struct {
	Table        string             `json:"table"`
	Warehouse    string             `json:"warehouse"`
	States       []State            `json:"states"`
	FirstRun     bool               `json:"first_run"`
	StagingTable string             `json:"staging_table,omitempty"`
	Loaded       int                `json:"loaded"`
	Changed      int                `json:"changed"`
	Applied      int64              `json:"applied"`
	Notified     bool               `json:"notified"`
	Diffs        []models.PriceDiff `json:"-"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
}

// Last is the most recent state.
func (r *Result) Last() State {
	if len(r.States) == 0 {
		return ""
	}
	return r.States[len(r.States)-1]
}

// Registrar loads a crawl's records into a product's live table through a
// uniquely named staging table.
type Registrar struct {
	cfg      *config.Config
	wh       warehouse.Warehouse
	notifier Notifier
	log      *logger.Logger

	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	token      func() string
	transition func(table string, s State)
}

func New(cfg *config.Config, wh warehouse.Warehouse, notifier Notifier, log *logger.Logger) *Registrar {
	return &Registrar{
		cfg:      cfg,
		wh:       wh,
		notifier: notifier,
		log:      log.With("component", "registrar"),
		now:      time.Now,
		sleep:    sleepCtx,
		token:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "")[:6] },
	}
}

// OnTransition registers a hook called on every state change.
func (r *Registrar) OnTransition(fn func(table string, s State)) {
	r.transition = fn
}

func (r *Registrar) enter(res *Result, s State) {
	res.States = append(res.States, s)
	r.log.Info("Registration state", "table", res.Table, "state", string(s))
	if r.transition != nil {
		r.transition(res.Table, s)
	}
}

// StagingName is "<table>_temp_<timestamp>_<token>".
func (r *Registrar) StagingName(table string) string {
	return fmt.Sprintf("%s_temp_%s_%s", table, r.now().Format("20060102150405"), r.token())
}

// RegisterArtifact reads an artifact and registers it into the table of the
// product named by its filename prefix.
func (r *Registrar) RegisterArtifact(ctx context.Context, store artifact.Store, loc artifact.Location) (*Result, error) {
	prefix, err := artifact.ProductPrefix(loc.Key)
	if err != nil {
		return nil, err
	}
	product, ok := catalog.ProductByPrefix(prefix)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProduct, prefix)
	}
	body, err := store.Get(ctx, loc)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", loc, err)
	}
	records, err := artifact.Decode(body)
	if err != nil {
		return nil, err
	}
	r.log.Info("Artifact loaded", "artifact", loc.String(), "records", len(records), "table", product.Table)
	return r.Register(ctx, product, records)
}

// Register loads records into product.Table. On a first run the table is
// created and loaded directly. Otherwise the records are staged, verified,
// diffed, notified and only changed rows are applied. The staging table is
// dropped on every exit path.
func (r *Registrar) Register(ctx context.Context, product catalog.Product, records map[int]models.PricingRecord) (*Result, error) {
	res := &Result{Table: product.Table, Warehouse: r.wh.QualifiedName(product.Table), StartedAt: r.now()}
	defer func() { res.FinishedAt = r.now() }()

	if len(records) == 0 {
		return res, fmt.Errorf("no records to register into %s", product.Table)
	}
	if err := uniqueKeys(product.Table, records); err != nil {
		return res, err
	}
	ordered := artifact.Ordered(records)

	exists, err := r.wh.TableExists(ctx, product.Table)
	if err != nil {
		return res, fmt.Errorf("check table %s: %w", product.Table, err)
	}
	if !exists {
		return res, r.firstRun(ctx, res, ordered)
	}

	r.enter(res, StateMainTableExists)
	staging := r.StagingName(product.Table)
	res.StagingTable = staging

	err = r.staged(ctx, res, product, staging, ordered)
	if err != nil {
		r.enter(res, StateCleanupAndFail)
	} else {
		r.enter(res, StateCleanup)
	}
	r.dropStaging(ctx, staging)
	if err != nil {
		r.log.Error("Registration failed", "table", product.Table, "staging_table", staging, "error", err)
		return res, err
	}

	r.enter(res, StateDone)
	r.log.Info("Registration finished",
		"table", product.Table,
		"records", res.Loaded,
		"changed", res.Changed,
		"applied", res.Applied,
	)
	return res, nil
}

// uniqueKeys rejects input in which two records share a composite key. The
// diff and apply joins assume one staging row per live row.
func uniqueKeys(table string, records map[int]models.PricingRecord) error {
	indexes := make([]int, 0, len(records))
	for i := range records {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	seen := make(map[string]int, len(records))
	for _, i := range indexes {
		key := records[i].CompositeKey()
		if first, ok := seen[key]; ok {
			return &DuplicateKeyError{Table: table, Key: key, First: first, Second: i}
		}
		seen[key] = i
	}
	return nil
}

func (r *Registrar) firstRun(ctx context.Context, res *Result, records []models.PricingRecord) error {
	res.FirstRun = true
	r.enter(res, StateNoMainTable)
	if err := r.wh.CreateTable(ctx, res.Table); err != nil {
		r.enter(res, StateCleanupAndFail)
		return fmt.Errorf("create table %s: %w", res.Table, err)
	}
	if err := r.sleep(ctx, r.cfg.CreatePause); err != nil {
		r.failFirstRun(ctx, res)
		return err
	}

	r.enter(res, StateDirectLoad)
	err := r.load(ctx, res.Table, records)
	if err == nil {
		err = r.verifyCount(ctx, res.Table, len(records))
	}
	if err != nil {
		r.failFirstRun(ctx, res)
		r.log.Error("Direct load failed", "table", res.Table, "error", err)
		return fmt.Errorf("direct load into %s: %w", res.Table, err)
	}
	res.Loaded = len(records)
	r.enter(res, StateDone)
	r.log.Info("First run loaded directly", "table", res.Table, "records", res.Loaded)
	return nil
}

// failFirstRun drops a live table that was created by this run so the next
// run starts over as a first run.
func (r *Registrar) failFirstRun(ctx context.Context, res *Result) {
	r.enter(res, StateCleanupAndFail)
	if err := r.wh.DropTable(context.WithoutCancel(ctx), res.Table); err != nil {
		r.log.Warn("Failed to drop partially loaded table", "table", res.Table, "error", err)
	}
}

func (r *Registrar) staged(ctx context.Context, res *Result, product catalog.Product, staging string, records []models.PricingRecord) error {
	r.enter(res, StateStaging)
	if err := r.wh.CloneSchema(ctx, product.Table, staging); err != nil {
		return &StagingTableError{Table: staging, Op: "create", Err: err}
	}
	if err := r.sleep(ctx, r.cfg.CreatePause); err != nil {
		return err
	}

	r.enter(res, StateLoadStaged)
	if err := r.load(ctx, staging, records); err != nil {
		return &StagingTableError{Table: staging, Op: "load", Err: err}
	}

	r.enter(res, StateVerifyCount)
	if err := r.verifyCount(ctx, staging, len(records)); err != nil {
		return err
	}
	res.Loaded = len(records)

	r.enter(res, StateDiffAndNotify)
	diffs, err := r.wh.PriceChanges(ctx, product.Table, staging)
	if err != nil {
		return fmt.Errorf("diff %s against %s: %w", product.Table, staging, err)
	}
	res.Changed = len(diffs)
	res.Diffs = diffs
	res.Notified = r.notify(ctx, product.Category, diffs)

	r.enter(res, StateApplyChanges)
	if len(diffs) > 0 {
		applied, err := r.wh.ApplyPriceChanges(ctx, product.Table, staging)
		if err != nil {
			return fmt.Errorf("apply changes to %s: %w", product.Table, err)
		}
		res.Applied = applied
	}

	r.enter(res, StateVerifyNoDiff)
	pending, err := r.wh.PriceChanges(ctx, product.Table, staging)
	if err != nil {
		return fmt.Errorf("re-diff %s against %s: %w", product.Table, staging, err)
	}
	if len(pending) > 0 {
		return &VerificationError{Table: product.Table, Pending: len(pending)}
	}
	return nil
}

// notify is best effort: failures are logged and reported as not notified.
func (r *Registrar) notify(ctx context.Context, category catalog.ProductCategory, diffs []models.PriceDiff) bool {
	if len(diffs) == 0 || r.notifier == nil {
		return false
	}
	if err := r.notifier.Notify(ctx, category, diffs); err != nil {
		r.log.Warn("Price change notification failed", "product", category.String(), "changes", len(diffs), "error", err)
		return false
	}
	return true
}

// load waits for table to become visible, then inserts records in batches
// with a pause between batches.
func (r *Registrar) load(ctx context.Context, table string, records []models.PricingRecord) error {
	if err := r.waitForTable(ctx, table); err != nil {
		return err
	}
	size := r.cfg.LoadBatchSize
	if size < 1 {
		size = len(records)
	}
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		if err := r.wh.InsertRecords(ctx, table, records[start:end]); err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", start, end, err)
		}
		r.log.Debug("Batch inserted", "table", table, "rows", end, "total", len(records))
		if end < len(records) {
			if err := r.sleep(ctx, r.cfg.LoadBatchPause); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Registrar) waitForTable(ctx context.Context, table string) error {
	attempts := max(r.cfg.TableWaitAttempts, 1)
	var lastErr error
	for i := 1; i <= attempts; i++ {
		ok, err := r.wh.TableExists(ctx, table)
		if err == nil && ok {
			return nil
		}
		lastErr = err
		r.log.Debug("Waiting for table", "table", table, "attempt", i, "error", err)
		if i < attempts {
			if err := r.sleep(ctx, time.Duration(i)*r.cfg.TableWaitBackoff); err != nil {
				return err
			}
		}
	}
	if lastErr != nil {
		return fmt.Errorf("table %s not visible after %d attempts: %w", table, attempts, lastErr)
	}
	return fmt.Errorf("table %s not visible after %d attempts", table, attempts)
}

func (r *Registrar) verifyCount(ctx context.Context, table string, want int) error {
	got, err := r.wh.CountRows(ctx, table)
	if err != nil {
		return fmt.Errorf("count rows of %s: %w", table, err)
	}
	if got != int64(want) {
		return &VerificationError{Table: table, Want: int64(want), Got: got}
	}
	return nil
}

// dropStaging runs even after ctx is canceled. A staging table that was never
// created is a silent no-op.
func (r *Registrar) dropStaging(ctx context.Context, staging string) {
	if err := r.wh.DropTable(context.WithoutCancel(ctx), staging); err != nil {
		r.log.Warn("Failed to drop staging table", "staging_table", staging,
			"error", &StagingTableError{Table: staging, Op: "drop", Err: err})
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
