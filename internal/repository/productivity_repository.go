package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"focus-planner/internal/model"
)

// ProductivityRepository keeps per-day counters of completed tasks and
// focus minutes.
type ProductivityRepository struct {
	db *gorm.DB
}

func NewProductivityRepository(db *gorm.DB) *ProductivityRepository {
	return &ProductivityRepository{db: db}
}

// AddCompletedTask bumps the completed-task counter for the given day.
func (r *ProductivityRepository) AddCompletedTask(ctx context.Context, date string) error {
	row := model.ProductivityData{Date: date, CompletedTasks: 1}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"completed_tasks": gorm.Expr("completed_tasks + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("add completed task: %w", err)
	}
	return nil
}

// AddFocusMinutes credits finished focus time to the given day.
func (r *ProductivityRepository) AddFocusMinutes(ctx context.Context, date string, minutes int) error {
	row := model.ProductivityData{Date: date, FocusMinutes: minutes}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"focus_minutes": gorm.Expr("focus_minutes + ?", minutes),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("add focus minutes: %w", err)
	}
	return nil
}

// ListRange returns the daily aggregates between from and to inclusive,
// oldest first. Days with no activity have no row.
func (r *ProductivityRepository) ListRange(ctx context.Context, from, to string) ([]model.ProductivityData, error) {
	var rows []model.ProductivityData
	if err := r.db.WithContext(ctx).Where("date BETWEEN ? AND ?", from, to).
		Order("date").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
