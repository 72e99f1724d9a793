package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"taskventure.app/backend/internal/model"
)

type TaskRepository interface {
	WithTx(tx *gorm.DB) TaskRepository
	Create(ctx context.Context, task *model.Task) error
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Task, error)
	FindByUser(ctx context.Context, userID uuid.UUID, completed *bool, skip, limit int) ([]*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	CreateCompletion(ctx context.Context, completion *model.TaskCompletion) error
	LatestCompletion(ctx context.Context, taskID, userID uuid.UUID) (*model.TaskCompletion, error)
	DeleteCompletion(ctx context.Context, id uuid.UUID) error
	CompletionsByTask(ctx context.Context, taskID, userID uuid.UUID, skip, limit int) ([]*model.TaskCompletion, error)
	CompletionsByUser(ctx context.Context, userID uuid.UUID, skip, limit int) ([]*model.TaskCompletion, error)
	FindPendingByRepeat(ctx context.Context, userID uuid.UUID, repeat model.RepeatType) ([]*model.Task, error)
	FindPendingDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.Task, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) WithTx(tx *gorm.DB) TaskRepository {
	return &taskRepository{db: tx}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskRepository) FindByUser(ctx context.Context, userID uuid.UUID, completed *bool, skip, limit int) ([]*model.Task, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if completed != nil {
		query = query.Where("is_completed = ?", *completed)
	}

	var tasks []*model.Task
	if err := query.Offset(skip).Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id).Error
}

func (r *taskRepository) CreateCompletion(ctx context.Context, completion *model.TaskCompletion) error {
	return r.db.WithContext(ctx).Create(completion).Error
}

// LatestCompletion returns the most recent completion row for the pair, so
// uncompletion reverses completions in LIFO order.
func (r *taskRepository) LatestCompletion(ctx context.Context, taskID, userID uuid.UUID) (*model.TaskCompletion, error) {
	var completion model.TaskCompletion
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Order("completed_at DESC").
		First(&completion).Error; err != nil {
		return nil, err
	}

	return &completion, nil
}

func (r *taskRepository) DeleteCompletion(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.TaskCompletion{}, "id = ?", id).Error
}

func (r *taskRepository) CompletionsByTask(ctx context.Context, taskID, userID uuid.UUID, skip, limit int) ([]*model.TaskCompletion, error) {
	var completions []*model.TaskCompletion
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Offset(skip).
		Limit(limit).
		Find(&completions).Error; err != nil {
		return nil, err
	}

	return completions, nil
}

func (r *taskRepository) CompletionsByUser(ctx context.Context, userID uuid.UUID, skip, limit int) ([]*model.TaskCompletion, error) {
	var completions []*model.TaskCompletion
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Offset(skip).
		Limit(limit).
		Find(&completions).Error; err != nil {
		return nil, err
	}

	return completions, nil
}

func (r *taskRepository) FindPendingByRepeat(ctx context.Context, userID uuid.UUID, repeat model.RepeatType) ([]*model.Task, error) {
	var tasks []*model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND repeat_type = ? AND is_completed = ?", userID, repeat, false).
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) FindPendingDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.Task, error) {
	var tasks []*model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND repeat_type = ? AND is_completed = ?", userID, model.RepeatNone, false).
		Where("due_date >= ? AND due_date < ?", from, to).
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}
