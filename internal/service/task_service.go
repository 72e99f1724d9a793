package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"taskventure.app/backend/internal/dto"
	"taskventure.app/backend/internal/model"
	"taskventure.app/backend/internal/repository"
	"taskventure.app/backend/pkg/apperror"
)

type TaskService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateTaskRequest) (*model.Task, error)
	List(ctx context.Context, userID uuid.UUID, filter dto.TaskFilter) ([]*model.Task, error)
	Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, req dto.UpdateTaskRequest) (*model.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
	Complete(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
	Uncomplete(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
	CompletionsByTask(ctx context.Context, userID, taskID uuid.UUID, filter dto.ListFilter) ([]*model.TaskCompletion, error)
	Completions(ctx context.Context, userID uuid.UUID, filter dto.ListFilter) ([]*model.TaskCompletion, error)
	DueToday(ctx context.Context, userID uuid.UUID) ([]*model.Task, error)
}

type taskService struct {
	db          *gorm.DB
	tasks       repository.TaskRepository
	ledger      LedgerService
	gate        *UnlockGate
	leaderboard LeaderboardService
}

func NewTaskService(db *gorm.DB, tasks repository.TaskRepository, ledger LedgerService, gate *UnlockGate, leaderboard LeaderboardService) TaskService {
	return &taskService{
		db:          db,
		tasks:       tasks,
		ledger:      ledger,
		gate:        gate,
		leaderboard: leaderboard,
	}
}

func (s *taskService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateTaskRequest) (*model.Task, error) {
	repeat := model.RepeatType(req.RepeatType)
	if req.RepeatType == "" {
		repeat = model.RepeatNone
	}

	task := &model.Task{
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
		RepeatType:  repeat,
		CoinsReward: req.CoinsReward,
		DueDate:     req.DueDate,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *taskService) List(ctx context.Context, userID uuid.UUID, filter dto.TaskFilter) ([]*model.Task, error) {
	filter.Normalize()
	return s.tasks.FindByUser(ctx, userID, filter.Completed, filter.Skip, filter.Limit)
}

func (s *taskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	task, err := s.tasks.FindByIDAndUser(ctx, taskID, userID)
	if err != nil {
		return nil, mapNotFound(err, "task")
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, userID, taskID uuid.UUID, req dto.UpdateTaskRequest) (*model.Task, error) {
	task, err := s.tasks.FindByIDAndUser(ctx, taskID, userID)
	if err != nil {
		return nil, mapNotFound(err, "task")
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.RepeatType != nil {
		task.RepeatType = model.RepeatType(*req.RepeatType)
	}
	if req.CoinsReward != nil {
		task.CoinsReward = *req.CoinsReward
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *taskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	task, err := s.tasks.FindByIDAndUser(ctx, taskID, userID)
	if err != nil {
		return mapNotFound(err, "task")
	}

	return s.tasks.Delete(ctx, task.ID)
}

// Complete flips the task to completed, records a completion row, credits
// the reward, spawns the successor for repeating tasks, and runs the unlock
// gate on the balance crossing. Everything happens in one transaction.
func (s *taskService) Complete(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	var completed *model.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.FindByIDAndUser(ctx, taskID, userID)
		if err != nil {
			return mapNotFound(err, "task")
		}

		if task.IsCompleted {
			return apperror.ErrAlreadyCompleted
		}

		task.IsCompleted = true
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}

		completion := &model.TaskCompletion{
			TaskID:      task.ID,
			UserID:      userID,
			CompletedAt: time.Now(),
		}
		if err := tasks.CreateCompletion(ctx, completion); err != nil {
			return err
		}

		before, after, err := s.ledger.WithTx(tx).Credit(ctx, userID, task.CoinsReward)
		if err != nil {
			return err
		}

		if task.RepeatType != model.RepeatNone {
			successor := &model.Task{
				Title:       task.Title,
				Description: task.Description,
				UserID:      task.UserID,
				RepeatType:  task.RepeatType,
				CoinsReward: task.CoinsReward,
				TaskPlanID:  task.TaskPlanID,
			}
			if task.DueDate != nil {
				next := task.RepeatType.NextDueDate(*task.DueDate)
				successor.DueDate = &next
			}
			if err := tasks.Create(ctx, successor); err != nil {
				return err
			}
		}

		if err := s.gate.OnBalanceChange(ctx, tx, userID, before, after); err != nil {
			return err
		}

		completed = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.leaderboard.Invalidate(ctx)
	return completed, nil
}

// Uncomplete reverses the most recent completion: the log row is removed
// and the reward clawed back, clamped at zero. Spawned successor tasks and
// stories granted by the unlock gate stay; those effects are one-way.
func (s *taskService) Uncomplete(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	var uncompleted *model.Task

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)

		task, err := tasks.FindByIDAndUser(ctx, taskID, userID)
		if err != nil {
			return mapNotFound(err, "task")
		}

		if !task.IsCompleted {
			return apperror.ErrNotCompleted
		}

		completion, err := tasks.LatestCompletion(ctx, task.ID, userID)
		if err == nil {
			if err := tasks.DeleteCompletion(ctx, completion.ID); err != nil {
				return err
			}
			if _, err := s.ledger.WithTx(tx).DebitClamped(ctx, userID, task.CoinsReward); err != nil {
				return err
			}
		} else if !isRecordNotFound(err) {
			return err
		}

		task.IsCompleted = false
		if err := tasks.Update(ctx, task); err != nil {
			return err
		}

		uncompleted = task
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.leaderboard.Invalidate(ctx)
	return uncompleted, nil
}

func (s *taskService) CompletionsByTask(ctx context.Context, userID, taskID uuid.UUID, filter dto.ListFilter) ([]*model.TaskCompletion, error) {
	filter.Normalize()

	if _, err := s.tasks.FindByIDAndUser(ctx, taskID, userID); err != nil {
		return nil, mapNotFound(err, "task")
	}

	return s.tasks.CompletionsByTask(ctx, taskID, userID, filter.Skip, filter.Limit)
}

func (s *taskService) Completions(ctx context.Context, userID uuid.UUID, filter dto.ListFilter) ([]*model.TaskCompletion, error) {
	filter.Normalize()
	return s.tasks.CompletionsByUser(ctx, userID, filter.Skip, filter.Limit)
}

// DueToday gathers non-repeating tasks due today, every pending daily task,
// weekly tasks created on today's weekday, and monthly tasks created on
// today's day of month.
func (s *taskService) DueToday(ctx context.Context, userID uuid.UUID) ([]*model.Task, error) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)

	due, err := s.tasks.FindPendingDueBetween(ctx, userID, today, tomorrow)
	if err != nil {
		return nil, err
	}

	daily, err := s.tasks.FindPendingByRepeat(ctx, userID, model.RepeatDaily)
	if err != nil {
		return nil, err
	}
	due = append(due, daily...)

	weekly, err := s.tasks.FindPendingByRepeat(ctx, userID, model.RepeatWeekly)
	if err != nil {
		return nil, err
	}
	for _, task := range weekly {
		if task.CreatedAt.Weekday() == today.Weekday() {
			due = append(due, task)
		}
	}

	monthly, err := s.tasks.FindPendingByRepeat(ctx, userID, model.RepeatMonthly)
	if err != nil {
		return nil, err
	}
	for _, task := range monthly {
		if task.CreatedAt.Day() == today.Day() {
			due = append(due, task)
		}
	}

	return due, nil
}
