package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"taskventure.app/backend/internal/model"
)

type StoryRepository interface {
	WithTx(tx *gorm.DB) StoryRepository

	Create(ctx context.Context, story *model.Story) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Story, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*model.Story, error)
	FindAll(ctx context.Context, activeOnly bool, skip, limit int) ([]*model.Story, error)
	Update(ctx context.Context, story *model.Story) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateChapter(ctx context.Context, chapter *model.StoryChapter) error
	FindChapterByID(ctx context.Context, id uuid.UUID) (*model.StoryChapter, error)
	ChaptersByStory(ctx context.Context, storyID uuid.UUID) ([]*model.StoryChapter, error)
	FirstChapter(ctx context.Context, storyID uuid.UUID) (*model.StoryChapter, error)
	UpdateChapter(ctx context.Context, chapter *model.StoryChapter) error
	DeleteChapter(ctx context.Context, id uuid.UUID) error

	CreateChoice(ctx context.Context, choice *model.StoryChoice) error
	FindChoiceForChapter(ctx context.Context, choiceID, chapterID uuid.UUID) (*model.StoryChoice, error)
	CountChoices(ctx context.Context, chapterID uuid.UUID) (int64, error)

	CreateUserStory(ctx context.Context, userStory *model.UserStory) error
	FindUserStory(ctx context.Context, userID, storyID uuid.UUID) (*model.UserStory, error)
	FindUserStories(ctx context.Context, userID uuid.UUID, skip, limit int) ([]*model.UserStory, error)
	UpdateUserStory(ctx context.Context, userStory *model.UserStory) error
	CreateResponse(ctx context.Context, response *model.UserStoryResponse) error
	FirstLockedActiveStory(ctx context.Context, userID uuid.UUID) (*model.Story, error)
}

type storyRepository struct {
	db *gorm.DB
}

func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

func (r *storyRepository) WithTx(tx *gorm.DB) StoryRepository {
	return &storyRepository{db: tx}
}

func (r *storyRepository) Create(ctx context.Context, story *model.Story) error {
	return r.db.WithContext(ctx).Create(story).Error
}

func (r *storyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Story, error) {
	var story model.Story
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&story).Error; err != nil {
		return nil, err
	}

	return &story, nil
}

func (r *storyRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*model.Story, error) {
	var story model.Story
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&story).Error; err != nil {
		return nil, err
	}

	return &story, nil
}

func (r *storyRepository) FindAll(ctx context.Context, activeOnly bool, skip, limit int) ([]*model.Story, error) {
	query := r.db.WithContext(ctx).Model(&model.Story{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var stories []*model.Story
	if err := query.Order("created_at").Offset(skip).Limit(limit).Find(&stories).Error; err != nil {
		return nil, err
	}

	return stories, nil
}

func (r *storyRepository) Update(ctx context.Context, story *model.Story) error {
	return r.db.WithContext(ctx).Save(story).Error
}

func (r *storyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Story{}, "id = ?", id).Error
}

func (r *storyRepository) CreateChapter(ctx context.Context, chapter *model.StoryChapter) error {
	return r.db.WithContext(ctx).Create(chapter).Error
}

func (r *storyRepository) FindChapterByID(ctx context.Context, id uuid.UUID) (*model.StoryChapter, error) {
	var chapter model.StoryChapter
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&chapter).Error; err != nil {
		return nil, err
	}

	return &chapter, nil
}

func (r *storyRepository) ChaptersByStory(ctx context.Context, storyID uuid.UUID) ([]*model.StoryChapter, error) {
	var chapters []*model.StoryChapter
	if err := r.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Order("order_num").
		Find(&chapters).Error; err != nil {
		return nil, err
	}

	return chapters, nil
}

// FirstChapter is the story's entry point: the chapter with the lowest
// order_num.
func (r *storyRepository) FirstChapter(ctx context.Context, storyID uuid.UUID) (*model.StoryChapter, error) {
	var chapter model.StoryChapter
	if err := r.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Order("order_num").
		First(&chapter).Error; err != nil {
		return nil, err
	}

	return &chapter, nil
}

func (r *storyRepository) UpdateChapter(ctx context.Context, chapter *model.StoryChapter) error {
	return r.db.WithContext(ctx).Save(chapter).Error
}

func (r *storyRepository) DeleteChapter(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.StoryChapter{}, "id = ?", id).Error
}

func (r *storyRepository) CreateChoice(ctx context.Context, choice *model.StoryChoice) error {
	return r.db.WithContext(ctx).Create(choice).Error
}

func (r *storyRepository) FindChoiceForChapter(ctx context.Context, choiceID, chapterID uuid.UUID) (*model.StoryChoice, error) {
	var choice model.StoryChoice
	if err := r.db.WithContext(ctx).
		Where("id = ? AND chapter_id = ?", choiceID, chapterID).
		First(&choice).Error; err != nil {
		return nil, err
	}

	return &choice, nil
}

func (r *storyRepository) CountChoices(ctx context.Context, chapterID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.StoryChoice{}).
		Where("chapter_id = ?", chapterID).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *storyRepository) CreateUserStory(ctx context.Context, userStory *model.UserStory) error {
	return r.db.WithContext(ctx).Create(userStory).Error
}

func (r *storyRepository) FindUserStory(ctx context.Context, userID, storyID uuid.UUID) (*model.UserStory, error) {
	var userStory model.UserStory
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND story_id = ?", userID, storyID).
		First(&userStory).Error; err != nil {
		return nil, err
	}

	return &userStory, nil
}

func (r *storyRepository) FindUserStories(ctx context.Context, userID uuid.UUID, skip, limit int) ([]*model.UserStory, error) {
	var userStories []*model.UserStory
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Offset(skip).
		Limit(limit).
		Find(&userStories).Error; err != nil {
		return nil, err
	}

	return userStories, nil
}

func (r *storyRepository) UpdateUserStory(ctx context.Context, userStory *model.UserStory) error {
	return r.db.WithContext(ctx).Save(userStory).Error
}

func (r *storyRepository) CreateResponse(ctx context.Context, response *model.UserStoryResponse) error {
	return r.db.WithContext(ctx).Create(response).Error
}

// FirstLockedActiveStory returns the oldest active story the user has not
// unlocked yet, or gorm.ErrRecordNotFound when every active story is taken.
func (r *storyRepository) FirstLockedActiveStory(ctx context.Context, userID uuid.UUID) (*model.Story, error) {
	var story model.Story
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("id NOT IN (?)", r.db.Model(&model.UserStory{}).
			Select("story_id").
			Where("user_id = ?", userID)).
		Order("created_at").
		First(&story).Error; err != nil {
		return nil, err
	}

	return &story, nil
}
