package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"focus-planner/internal/model"
)

// ReminderRepository handles CRUD for reminders and backs the alarm
// engine's store interface.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, rem *model.Reminder) error {
	if err := r.db.WithContext(ctx).Create(rem).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// ListAll returns every reminder in insertion order.
func (r *ReminderRepository) ListAll(ctx context.Context) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// ListEnabled returns the evaluable pool in insertion order. Disabled
// reminders never reach the evaluator.
func (r *ReminderRepository) ListEnabled(ctx context.Context) ([]model.Reminder, error) {
	var reminders []model.Reminder
	if err := r.db.WithContext(ctx).Where("enabled = ?", true).
		Order("created_at, id").
		Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

func (r *ReminderRepository) FindByID(ctx context.Context, id string) (*model.Reminder, error) {
	var rem model.Reminder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rem).Error; err != nil {
		return nil, err
	}
	return &rem, nil
}

func (r *ReminderRepository) Save(ctx context.Context, rem *model.Reminder) error {
	if err := r.db.WithContext(ctx).Save(rem).Error; err != nil {
		return fmt.Errorf("save reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Reminder{}).Error; err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}
