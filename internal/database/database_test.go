package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"print-pricing/internal/logger"
	"print-pricing/internal/models"

	"gorm.io/gorm"
)

func TestInitializeUnknownDriver(t *testing.T) {
	if _, err := Initialize("oracle", "", logger.Nop()); err == nil {
		t.Fatalf("Initialize: expected error")
	}
}

func TestRunLogRoundTrip(t *testing.T) {
	db, err := Initialize(DriverSQLite, ":memory:", logger.Nop())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer Close(db)
	ctx := context.Background()

	base := time.Date(2024, 6, 20, 9, 0, 0, 0, time.UTC)
	for i, kind := range []string{"crawl", "register", "crawl"} {
		run := &models.RunLog{
			RunID:     string(rune('a' + i)),
			Kind:      kind,
			Target:    "printpac_seal_prices",
			Status:    "running",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := SaveRun(ctx, db, run); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}

	run, err := FindRun(ctx, db, "b")
	if err != nil {
		t.Fatalf("FindRun: %v", err)
	}
	finished := base.Add(time.Hour)
	run.Status, run.Changed, run.FinishedAt = "succeeded", 4, &finished
	if err := SaveRun(ctx, db, run); err != nil {
		t.Fatalf("SaveRun update: %v", err)
	}

	crawls, err := RecentRuns(ctx, db, "crawl", 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(crawls) != 2 || crawls[0].RunID != "c" || crawls[1].RunID != "a" {
		t.Fatalf("crawl runs: got=%+v", crawls)
	}

	all, err := RecentRuns(ctx, db, "", 0)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("runs: want=3 got=%d", len(all))
	}
	for _, r := range all {
		if r.RunID == "b" && (r.Status != "succeeded" || r.Changed != 4 || r.FinishedAt == nil) {
			t.Fatalf("updated run: got=%+v", r)
		}
	}

	if _, err := FindRun(ctx, db, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("FindRun missing: want ErrRecordNotFound got=%v", err)
	}
}
