package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"taskventure.app/backend/internal/dto"
	"taskventure.app/backend/internal/model"
	"taskventure.app/backend/internal/repository"
	"taskventure.app/backend/pkg/apperror"
)

type TaskPlanService interface {
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateTaskPlanRequest) (*dto.CreateTaskPlanResponse, error)
	List(ctx context.Context, userID uuid.UUID, filter dto.ListFilter) ([]*model.TaskPlan, error)
	Get(ctx context.Context, userID, planID uuid.UUID) (*model.TaskPlan, error)
	Update(ctx context.Context, userID, planID uuid.UUID, req dto.UpdateTaskPlanRequest) (*model.TaskPlan, error)
	Delete(ctx context.Context, userID, planID uuid.UUID) error
	SetStatus(ctx context.Context, userID, planID uuid.UUID, status model.TaskPlanStatus) (*model.TaskPlan, error)
	GenerateNow(ctx context.Context, userID, planID uuid.UUID) (*model.TaskPlan, error)
	RunSweep(ctx context.Context)
}

type taskPlanService struct {
	db    *gorm.DB
	plans repository.TaskPlanRepository
	tasks repository.TaskRepository
}

func NewTaskPlanService(db *gorm.DB, plans repository.TaskPlanRepository, tasks repository.TaskRepository) TaskPlanService {
	return &taskPlanService{db: db, plans: plans, tasks: tasks}
}

// Create stores the plan and then materializes its initial task. Initial-task
// creation is best-effort: plan creation is the primary intent, so a failure
// there reports a degraded success with a null task instead of failing.
func (s *taskPlanService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateTaskPlanRequest) (*dto.CreateTaskPlanResponse, error) {
	repeat := model.RepeatType(req.RepeatType)
	if req.RepeatType == "" {
		repeat = model.RepeatNone
	}

	status := model.TaskPlanStatus(req.Status)
	if req.Status == "" {
		status = model.PlanActive
	}

	start := time.Now()
	if req.StartDate != nil {
		start = *req.StartDate
	}

	if req.EndDate != nil && req.EndDate.Before(start) {
		return nil, fmt.Errorf("end_date must not be before start_date: %w", apperror.ErrInvalidInput)
	}

	plan := &model.TaskPlan{
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
		RepeatType:  repeat,
		CoinsReward: req.CoinsReward,
		Status:      status,
		StartDate:   start,
		EndDate:     req.EndDate,
	}

	if err := s.plans.Create(ctx, plan); err != nil {
		return nil, err
	}

	resp := &dto.CreateTaskPlanResponse{TaskPlan: plan}

	initialTask, err := s.createInitialTask(ctx, plan)
	if err != nil {
		log.Printf("task plan %s: initial task creation failed: %v", plan.ID, err)
		resp.Message = "task plan created, but initial task creation failed"
		return resp, nil
	}

	resp.InitialTask = initialTask
	resp.Message = "task plan created with its first task"
	return resp, nil
}

// createInitialTask bypasses the watermark so a new plan is immediately
// actionable, whatever its cadence or status.
func (s *taskPlanService) createInitialTask(ctx context.Context, plan *model.TaskPlan) (*model.Task, error) {
	now := time.Now()

	task := &model.Task{
		Title:       plan.Title,
		Description: plan.Description,
		UserID:      plan.UserID,
		RepeatType:  plan.RepeatType,
		CoinsReward: plan.CoinsReward,
		TaskPlanID:  &plan.ID,
	}

	due := planDueDate(plan, now)
	task.DueDate = &due

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.tasks.WithTx(tx).Create(ctx, task); err != nil {
			return err
		}

		plan.LastGenerated = &now
		return s.plans.WithTx(tx).Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

func (s *taskPlanService) List(ctx context.Context, userID uuid.UUID, filter dto.ListFilter) ([]*model.TaskPlan, error) {
	filter.Normalize()
	return s.plans.FindByUser(ctx, userID, filter.Skip, filter.Limit)
}

func (s *taskPlanService) Get(ctx context.Context, userID, planID uuid.UUID) (*model.TaskPlan, error) {
	plan, err := s.plans.FindByIDAndUser(ctx, planID, userID)
	if err != nil {
		return nil, mapNotFound(err, "task plan")
	}
	return plan, nil
}

func (s *taskPlanService) Update(ctx context.Context, userID, planID uuid.UUID, req dto.UpdateTaskPlanRequest) (*model.TaskPlan, error) {
	plan, err := s.plans.FindByIDAndUser(ctx, planID, userID)
	if err != nil {
		return nil, mapNotFound(err, "task plan")
	}

	if req.Title != nil {
		plan.Title = *req.Title
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.RepeatType != nil {
		plan.RepeatType = model.RepeatType(*req.RepeatType)
	}
	if req.CoinsReward != nil {
		plan.CoinsReward = *req.CoinsReward
	}
	if req.Status != nil {
		plan.Status = model.TaskPlanStatus(*req.Status)
	}
	if req.StartDate != nil {
		plan.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		plan.EndDate = req.EndDate
	}

	if plan.EndDate != nil && plan.EndDate.Before(plan.StartDate) {
		return nil, fmt.Errorf("end_date must not be before start_date: %w", apperror.ErrInvalidInput)
	}

	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

func (s *taskPlanService) Delete(ctx context.Context, userID, planID uuid.UUID) error {
	plan, err := s.plans.FindByIDAndUser(ctx, planID, userID)
	if err != nil {
		return mapNotFound(err, "task plan")
	}

	return s.plans.Delete(ctx, plan.ID)
}

func (s *taskPlanService) SetStatus(ctx context.Context, userID, planID uuid.UUID, status model.TaskPlanStatus) (*model.TaskPlan, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown plan status %q: %w", status, apperror.ErrInvalidInput)
	}

	plan, err := s.plans.FindByIDAndUser(ctx, planID, userID)
	if err != nil {
		return nil, mapNotFound(err, "task plan")
	}

	plan.Status = status
	if err := s.plans.Update(ctx, plan); err != nil {
		return nil, err
	}

	return plan, nil
}

func (s *taskPlanService) GenerateNow(ctx context.Context, userID, planID uuid.UUID) (*model.TaskPlan, error) {
	plan, err := s.plans.FindByIDAndUser(ctx, planID, userID)
	if err != nil {
		return nil, mapNotFound(err, "task plan")
	}

	if plan.Status != model.PlanActive {
		return nil, fmt.Errorf("task plan is not active: %w", apperror.ErrInvalidInput)
	}

	if _, err := s.generateFromPlan(ctx, plan); err != nil {
		return nil, err
	}

	return s.plans.FindByID(ctx, plan.ID)
}

// generateFromPlan is the recurrence engine: decide whether a task is due
// now and materialize it. Returns nil without error when nothing is due.
func (s *taskPlanService) generateFromPlan(ctx context.Context, plan *model.TaskPlan) (*model.Task, error) {
	if plan.Status != model.PlanActive {
		return nil, nil
	}

	now := time.Now()

	if plan.EndDate != nil && plan.EndDate.Before(now) {
		plan.Status = model.PlanCompleted
		if err := s.plans.Update(ctx, plan); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if !watermarkDue(plan.RepeatType, plan.LastGenerated, now) {
		return nil, nil
	}

	task := &model.Task{
		Title:       plan.Title,
		Description: plan.Description,
		UserID:      plan.UserID,
		RepeatType:  plan.RepeatType,
		CoinsReward: plan.CoinsReward,
		TaskPlanID:  &plan.ID,
	}
	due := planDueDate(plan, now)
	task.DueDate = &due

	var generated bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		advanced, err := s.plans.WithTx(tx).AdvanceWatermark(ctx, plan.ID, plan.LastGenerated, now)
		if err != nil {
			return err
		}
		if !advanced {
			// A concurrent sweep already generated for this window.
			return nil
		}

		generated = true
		return s.tasks.WithTx(tx).Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	if !generated {
		return nil, nil
	}

	plan.LastGenerated = &now
	return task, nil
}

// planDueDate is the single due-date policy for plan-generated tasks. A
// one-shot plan falls due at its end date, or a week out when open-ended.
func planDueDate(plan *model.TaskPlan, now time.Time) time.Time {
	if plan.RepeatType == model.RepeatNone {
		if plan.EndDate != nil {
			return *plan.EndDate
		}
		return now.AddDate(0, 0, 7)
	}
	return plan.RepeatType.NextDueDate(now)
}

// watermarkDue decides whether a new task is owed for the current cadence
// window. A plan with repeat "none" only generates while it has never
// generated; the sweep never re-triggers it.
func watermarkDue(repeat model.RepeatType, last *time.Time, now time.Time) bool {
	if last == nil {
		return true
	}

	switch repeat {
	case model.RepeatDaily:
		ly, lm, ld := last.Date()
		ny, nm, nd := now.Date()
		return ly != ny || lm != nm || ld != nd
	case model.RepeatWeekly:
		// Calendar days, not elapsed hours: a sweep on day seven generates
		// even when fewer than 168 hours have passed.
		return calendarDaysBetween(*last, now) >= 7
	case model.RepeatMonthly:
		return last.Month() != now.Month() || last.Year() != now.Year()
	default:
		return false
	}
}

func calendarDaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f) / (24 * time.Hour))
}

// RunSweep applies the due-check to every active plan. One plan's failure
// must not abort the sweep for the rest; errors are logged and skipped.
func (s *taskPlanService) RunSweep(ctx context.Context) {
	plans, err := s.plans.FindActive(ctx)
	if err != nil {
		log.Printf("recurrence sweep: listing active plans failed: %v", err)
		return
	}

	log.Printf("recurrence sweep: %d active plans", len(plans))

	var generated int
	for _, plan := range plans {
		task, err := s.generateFromPlan(ctx, plan)
		if err != nil {
			log.Printf("recurrence sweep: plan %s (%s): %v", plan.ID, plan.Title, err)
			continue
		}
		if task != nil {
			generated++
			log.Printf("recurrence sweep: plan %s (%s) generated task %s", plan.ID, plan.Title, task.ID)
		}
	}

	log.Printf("recurrence sweep: done, %d tasks generated", generated)
}
