package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoryType string

const (
	StoryAdventure StoryType = "adventure"
	StoryMystery   StoryType = "mystery"
	StoryRomance   StoryType = "romance"
	StoryScifi     StoryType = "scifi"
	StoryFantasy   StoryType = "fantasy"
	StoryHorror    StoryType = "horror"
)

func (s StoryType) Valid() bool {
	switch s {
	case StoryAdventure, StoryMystery, StoryRomance, StoryScifi, StoryFantasy, StoryHorror:
		return true
	}
	return false
}

type Story struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	StoryType   StoryType `gorm:"size:20;default:'adventure'" json:"story_type"`
	// No column defaults here: gorm omits zero values from the INSERT when a
	// default tag is present, which would turn a free or inactive story into
	// a paid, active one. The service layer applies the defaults instead.
	UnlockCost int64     `gorm:"not null" json:"unlock_cost"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Story) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

// StoryChapter is a node in the story graph. OrderNum is a sort key within
// the story, not a unique position; the lowest OrderNum chapter is the entry
// point on unlock.
type StoryChapter struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StoryID   uuid.UUID `gorm:"type:uuid;index;not null" json:"story_id"`
	Story     Story     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	OrderNum  int       `gorm:"default:1" json:"order_num"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *StoryChapter) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// StoryChoice is an edge from one chapter to another. A nil NextChapterID
// makes the choice terminal. Chapters and choices form a directed graph that
// may contain cycles.
type StoryChoice struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ChapterID     uuid.UUID     `gorm:"type:uuid;index;not null" json:"chapter_id"`
	Chapter       StoryChapter  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Text          string        `gorm:"size:500;not null" json:"text"`
	NextChapterID *uuid.UUID    `gorm:"type:uuid" json:"next_chapter_id"`
	NextChapter   *StoryChapter `gorm:"foreignKey:NextChapterID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (c *StoryChoice) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}

// UserStory is the per-(user, story) progression cursor. Created exactly once
// per pair; CurrentChapterID advances only through response submission.
type UserStory struct {
	ID               uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID     `gorm:"type:uuid;uniqueIndex:idx_user_story,priority:1;not null" json:"user_id"`
	User             User          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	StoryID          uuid.UUID     `gorm:"type:uuid;uniqueIndex:idx_user_story,priority:2;not null" json:"story_id"`
	Story            Story         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CurrentChapterID *uuid.UUID    `gorm:"type:uuid" json:"current_chapter_id"`
	CurrentChapter   *StoryChapter `gorm:"foreignKey:CurrentChapterID;constraint:OnDelete:SET NULL" json:"-"`
	IsCompleted      bool          `gorm:"default:false" json:"is_completed"`
	UnlockedAt       time.Time     `gorm:"autoCreateTime" json:"unlocked_at"`
	LastInteraction  time.Time     `gorm:"autoUpdateTime" json:"last_interaction"`
}

func (u *UserStory) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}

// UserStoryResponse records the cursor position before a transition plus the
// player's input. Append-only.
type UserStoryResponse struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserStoryID    uuid.UUID    `gorm:"type:uuid;index;not null" json:"user_story_id"`
	UserStory      UserStory    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ChapterID      uuid.UUID    `gorm:"type:uuid;not null" json:"chapter_id"`
	Chapter        StoryChapter `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ChoiceID       *uuid.UUID   `gorm:"type:uuid" json:"choice_id"`
	Choice         *StoryChoice `gorm:"foreignKey:ChoiceID;constraint:OnDelete:SET NULL" json:"-"`
	CustomResponse *string      `gorm:"type:text" json:"custom_response"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
}

func (r *UserStoryResponse) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
