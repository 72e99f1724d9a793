package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
)

func (r RepeatType) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}

// NextDueDate advances a due date by one cadence interval. Monthly uses a
// fixed 30-day offset, not calendar months.
func (r RepeatType) NextDueDate(from time.Time) time.Time {
	switch r {
	case RepeatDaily:
		return from.AddDate(0, 0, 1)
	case RepeatWeekly:
		return from.AddDate(0, 0, 7)
	case RepeatMonthly:
		return from.AddDate(0, 0, 30)
	}
	return from
}

type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"size:100;not null" json:"title"`
	Description string     `gorm:"size:500" json:"description"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	User        User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	IsCompleted bool       `gorm:"default:false" json:"is_completed"`
	RepeatType  RepeatType `gorm:"size:20;default:'none'" json:"repeat_type"`
	CoinsReward int64      `gorm:"default:0" json:"coins_reward"`
	DueDate     *time.Time `json:"due_date"`
	TaskPlanID  *uuid.UUID `gorm:"type:uuid" json:"task_plan_id"`
	TaskPlan    *TaskPlan  `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}

type TaskCompletion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID      uuid.UUID `gorm:"type:uuid;index;not null" json:"task_id"`
	Task        Task      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID      uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CompletedAt time.Time `gorm:"autoCreateTime" json:"completed_at"`
}

func (t *TaskCompletion) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID, err = uuid.NewV7()
	}
	return
}
