package dto

import "time"

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=100"`
	Description string     `json:"description" binding:"omitempty,max=500"`
	RepeatType  string     `json:"repeat_type" binding:"omitempty,oneof=none daily weekly monthly"`
	CoinsReward int64      `json:"coins_reward" binding:"omitempty,gte=0"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=500"`
	RepeatType  *string    `json:"repeat_type" binding:"omitempty,oneof=none daily weekly monthly"`
	CoinsReward *int64     `json:"coins_reward" binding:"omitempty,gte=0"`
	DueDate     *time.Time `json:"due_date"`
}

type TaskFilter struct {
	ListFilter
	Completed *bool `form:"completed"`
}
