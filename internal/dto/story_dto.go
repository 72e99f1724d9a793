package dto

import "github.com/google/uuid"

type CreateStoryRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	StoryType   string `json:"story_type" binding:"omitempty,oneof=adventure mystery romance scifi fantasy horror"`
	UnlockCost  *int64 `json:"unlock_cost" binding:"omitempty,gte=0"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateStoryRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	StoryType   *string `json:"story_type" binding:"omitempty,oneof=adventure mystery romance scifi fantasy horror"`
	UnlockCost  *int64  `json:"unlock_cost" binding:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

type StoryFilter struct {
	ListFilter
	ActiveOnly bool   `form:"active_only"`
	Search     string `form:"search"`
}

type CreateChapterRequest struct {
	StoryID  uuid.UUID `json:"story_id" binding:"required"`
	Title    string    `json:"title" binding:"required,max=200"`
	Content  string    `json:"content" binding:"required"`
	OrderNum int       `json:"order_num" binding:"omitempty,gte=1"`
}

type UpdateChapterRequest struct {
	Title    *string `json:"title" binding:"omitempty,max=200"`
	Content  *string `json:"content"`
	OrderNum *int    `json:"order_num" binding:"omitempty,gte=1"`
}

type CreateChoiceRequest struct {
	ChapterID     uuid.UUID  `json:"chapter_id" binding:"required"`
	Text          string     `json:"text" binding:"required,max=500"`
	NextChapterID *uuid.UUID `json:"next_chapter_id"`
}

type StoryResponseRequest struct {
	ChoiceID       *uuid.UUID `json:"choice_id"`
	CustomResponse *string    `json:"custom_response"`
}
