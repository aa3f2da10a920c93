package database

import (
	"context"

	"print-pricing/internal/models"

	"gorm.io/gorm"
)

// SaveRun inserts or updates a run by its primary key.
func SaveRun(ctx context.Context, db *gorm.DB, run *models.RunLog) error {
	return db.WithContext(ctx).Save(run).Error
}

// RecentRuns lists the newest runs first, optionally filtered by kind.
func RecentRuns(ctx context.Context, db *gorm.DB, kind string, limit int) ([]models.RunLog, error) {
	q := db.WithContext(ctx).Order("started_at DESC").Order("id DESC")
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var runs []models.RunLog
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// FindRun loads one run by its run id.
func FindRun(ctx context.Context, db *gorm.DB, runID string) (*models.RunLog, error) {
	var run models.RunLog
	if err := db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}
