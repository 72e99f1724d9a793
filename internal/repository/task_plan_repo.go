package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"taskventure.app/backend/internal/model"
)

type TaskPlanRepository interface {
	WithTx(tx *gorm.DB) TaskPlanRepository
	Create(ctx context.Context, plan *model.TaskPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaskPlan, error)
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.TaskPlan, error)
	FindByUser(ctx context.Context, userID uuid.UUID, skip, limit int) ([]*model.TaskPlan, error)
	FindActive(ctx context.Context) ([]*model.TaskPlan, error)
	Update(ctx context.Context, plan *model.TaskPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	AdvanceWatermark(ctx context.Context, id uuid.UUID, prev *time.Time, now time.Time) (bool, error)
}

type taskPlanRepository struct {
	db *gorm.DB
}

func NewTaskPlanRepository(db *gorm.DB) TaskPlanRepository {
	return &taskPlanRepository{db: db}
}

func (r *taskPlanRepository) WithTx(tx *gorm.DB) TaskPlanRepository {
	return &taskPlanRepository{db: tx}
}

func (r *taskPlanRepository) Create(ctx context.Context, plan *model.TaskPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *taskPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaskPlan, error) {
	var plan model.TaskPlan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *taskPlanRepository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.TaskPlan, error) {
	var plan model.TaskPlan
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&plan).Error; err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *taskPlanRepository) FindByUser(ctx context.Context, userID uuid.UUID, skip, limit int) ([]*model.TaskPlan, error) {
	var plans []*model.TaskPlan
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Offset(skip).
		Limit(limit).
		Find(&plans).Error; err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *taskPlanRepository) FindActive(ctx context.Context) ([]*model.TaskPlan, error) {
	var plans []*model.TaskPlan
	if err := r.db.WithContext(ctx).
		Where("status = ?", model.PlanActive).
		Find(&plans).Error; err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *taskPlanRepository) Update(ctx context.Context, plan *model.TaskPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *taskPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TaskPlan{}, "id = ?", id).Error
}

// AdvanceWatermark moves last_generated from prev to now with a conditional
// UPDATE. The rows-affected check makes the generate-or-skip decision atomic
// with the watermark advance, so overlapping sweeps cannot both generate for
// the same window.
func (r *taskPlanRepository) AdvanceWatermark(ctx context.Context, id uuid.UUID, prev *time.Time, now time.Time) (bool, error) {
	query := r.db.WithContext(ctx).Model(&model.TaskPlan{}).Where("id = ?", id)
	if prev == nil {
		query = query.Where("last_generated IS NULL")
	} else {
		query = query.Where("last_generated = ?", *prev)
	}

	result := query.Update("last_generated", now)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}
