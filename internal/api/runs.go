package api

import (
	"context"
	"errors"
	"sync"

	"print-pricing/internal/database"
	"print-pricing/internal/models"

	"gorm.io/gorm"
)

const historySize = 200

const (
	KindCrawl    = "crawl"
	KindRegister = "register"

	statusRunning   = "running"
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

var errRunNotFound = errors.New("run not found")

// runHistory is a fixed-size ring of recent runs, newest last.
type runHistory struct {
	mu   sync.Mutex
	runs []models.RunLog
	size int
}

func newRunHistory(size int) *runHistory {
	return &runHistory{size: size}
}

func (r *runHistory) put(run models.RunLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].RunID == run.RunID {
			r.runs[i] = run
			return
		}
	}
	r.runs = append(r.runs, run)
	if len(r.runs) > r.size {
		r.runs = r.runs[len(r.runs)-r.size:]
	}
}

func (r *runHistory) recent(kind string, limit int) []models.RunLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.RunLog, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if kind == "" || r.runs[i].Kind == kind {
			out = append(out, r.runs[i])
		}
	}
	return out
}

func (r *runHistory) find(runID string) (models.RunLog, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if run.RunID == runID {
			return run, true
		}
	}
	return models.RunLog{}, false
}

// saveRun keeps the run in memory and, when a database is configured,
// persists it. Persistence failures are logged only.
func (h *APIHandler) saveRun(run *models.RunLog) {
	if h.db != nil {
		if err := database.SaveRun(context.Background(), h.db, run); err != nil {
			h.log.Warn("Failed to persist run", "run_id", run.RunID, "error", err)
		}
	}
	h.runs.put(*run)
}

func (h *APIHandler) recentRuns(ctx context.Context, kind string, limit int) ([]models.RunLog, error) {
	if h.db != nil {
		return database.RecentRuns(ctx, h.db, kind, limit)
	}
	return h.runs.recent(kind, limit), nil
}

func (h *APIHandler) findRun(ctx context.Context, runID string) (*models.RunLog, error) {
	if h.db != nil {
		run, err := database.FindRun(ctx, h.db, runID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errRunNotFound
		}
		return run, err
	}
	run, ok := h.runs.find(runID)
	if !ok {
		return nil, errRunNotFound
	}
	return &run, nil
}
