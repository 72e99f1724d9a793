package dto

import (
	"time"

	"taskventure.app/backend/internal/model"
)

type CreateTaskPlanRequest struct {
	Title       string     `json:"title" binding:"required,max=100"`
	Description string     `json:"description"`
	RepeatType  string     `json:"repeat_type" binding:"omitempty,oneof=none daily weekly monthly"`
	CoinsReward int64      `json:"coins_reward" binding:"omitempty,gte=0"`
	Status      string     `json:"status" binding:"omitempty,oneof=active paused completed"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type UpdateTaskPlanRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=100"`
	Description *string    `json:"description"`
	RepeatType  *string    `json:"repeat_type" binding:"omitempty,oneof=none daily weekly monthly"`
	CoinsReward *int64     `json:"coins_reward" binding:"omitempty,gte=0"`
	Status      *string    `json:"status" binding:"omitempty,oneof=active paused completed"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// CreateTaskPlanResponse reports the created plan together with the initial
// task. InitialTask is null when initial-task creation failed; the plan
// itself is still created (degraded success).
type CreateTaskPlanResponse struct {
	TaskPlan    *model.TaskPlan `json:"task_plan"`
	InitialTask *model.Task     `json:"initial_task"`
	Message     string          `json:"message"`
}
