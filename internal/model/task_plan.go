package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskPlanStatus string

const (
	PlanActive    TaskPlanStatus = "active"
	PlanPaused    TaskPlanStatus = "paused"
	PlanCompleted TaskPlanStatus = "completed"
)

func (s TaskPlanStatus) Valid() bool {
	switch s {
	case PlanActive, PlanPaused, PlanCompleted:
		return true
	}
	return false
}

// TaskPlan is a recurring-task template. Tasks materialized from it carry a
// TaskPlanID back-reference but outlive the plan (FK is nulled on delete).
// LastGenerated is the watermark preventing duplicate generation within one
// cadence window.
type TaskPlan struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string         `gorm:"size:100;not null" json:"title"`
	Description   string         `gorm:"type:text" json:"description"`
	UserID        uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	User          User           `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	RepeatType    RepeatType     `gorm:"size:20;default:'none'" json:"repeat_type"`
	CoinsReward   int64          `gorm:"default:0" json:"coins_reward"`
	Status        TaskPlanStatus `gorm:"size:20;default:'active'" json:"status"`
	StartDate     time.Time      `gorm:"not null" json:"start_date"`
	EndDate       *time.Time     `json:"end_date"`
	LastGenerated *time.Time     `json:"last_generated"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *TaskPlan) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
