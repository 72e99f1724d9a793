package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
	"taskventure.app/backend/internal/dto"
	"taskventure.app/backend/internal/model"
	"taskventure.app/backend/internal/repository"
	"taskventure.app/backend/pkg/apperror"
)

type StoryService interface {
	CreateStory(ctx context.Context, req dto.CreateStoryRequest) (*model.Story, error)
	ListStories(ctx context.Context, filter dto.StoryFilter) ([]*model.Story, error)
	GetStory(ctx context.Context, storyID uuid.UUID) (*model.Story, error)
	UpdateStory(ctx context.Context, storyID uuid.UUID, req dto.UpdateStoryRequest) (*model.Story, error)
	DeleteStory(ctx context.Context, storyID uuid.UUID) error

	CreateChapter(ctx context.Context, req dto.CreateChapterRequest) (*model.StoryChapter, error)
	ListChapters(ctx context.Context, storyID uuid.UUID) ([]*model.StoryChapter, error)
	GetChapter(ctx context.Context, chapterID uuid.UUID) (*model.StoryChapter, error)
	UpdateChapter(ctx context.Context, chapterID uuid.UUID, req dto.UpdateChapterRequest) (*model.StoryChapter, error)
	DeleteChapter(ctx context.Context, chapterID uuid.UUID) error
	CreateChoice(ctx context.Context, req dto.CreateChoiceRequest) (*model.StoryChoice, error)

	Unlock(ctx context.Context, userID, storyID uuid.UUID) (*model.UserStory, error)
	MyStories(ctx context.Context, userID uuid.UUID, filter dto.ListFilter) ([]*model.UserStory, error)
	MyStory(ctx context.Context, userID, storyID uuid.UUID) (*model.UserStory, error)
	Respond(ctx context.Context, userID, storyID uuid.UUID, req dto.StoryResponseRequest) (*model.UserStory, error)
	CurrentChapter(ctx context.Context, userID, storyID uuid.UUID) (*model.StoryChapter, error)
}

type storyService struct {
	db        *gorm.DB
	stories   repository.StoryRepository
	ledger    LedgerService
	search    SearchService
	sanitizer *bluemonday.Policy
}

func NewStoryService(db *gorm.DB, stories repository.StoryRepository, ledger LedgerService, search SearchService) StoryService {
	return &storyService{
		db:        db,
		stories:   stories,
		ledger:    ledger,
		search:    search,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

func (s *storyService) CreateStory(ctx context.Context, req dto.CreateStoryRequest) (*model.Story, error) {
	storyType := model.StoryType(req.StoryType)
	if req.StoryType == "" {
		storyType = model.StoryAdventure
	}

	story := &model.Story{
		Title:       req.Title,
		Description: req.Description,
		StoryType:   storyType,
	}
	if req.UnlockCost != nil {
		story.UnlockCost = *req.UnlockCost
	} else {
		story.UnlockCost = 5000
	}
	if req.IsActive != nil {
		story.IsActive = *req.IsActive
	} else {
		story.IsActive = true
	}

	if err := s.stories.Create(ctx, story); err != nil {
		return nil, err
	}

	if err := s.search.IndexStory(story); err != nil {
		log.Printf("failed to index story %s: %v", story.ID, err)
	}

	return story, nil
}

func (s *storyService) ListStories(ctx context.Context, filter dto.StoryFilter) ([]*model.Story, error) {
	filter.Normalize()

	if filter.Search != "" {
		ids, err := s.search.SearchStories(filter.Search, filter.Limit)
		if err == nil {
			return s.fetchByIDs(ctx, ids, filter.ActiveOnly)
		}
		log.Printf("story search fell back to sql listing: %v", err)
	}

	return s.stories.FindAll(ctx, filter.ActiveOnly, filter.Skip, filter.Limit)
}

func (s *storyService) fetchByIDs(ctx context.Context, ids []uuid.UUID, activeOnly bool) ([]*model.Story, error) {
	stories := make([]*model.Story, 0, len(ids))
	for _, id := range ids {
		story, err := s.stories.FindByID(ctx, id)
		if err != nil {
			if isRecordNotFound(err) {
				continue
			}
			return nil, err
		}
		if activeOnly && !story.IsActive {
			continue
		}
		stories = append(stories, story)
	}
	return stories, nil
}

func (s *storyService) GetStory(ctx context.Context, storyID uuid.UUID) (*model.Story, error) {
	story, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		return nil, mapNotFound(err, "story")
	}
	return story, nil
}

func (s *storyService) UpdateStory(ctx context.Context, storyID uuid.UUID, req dto.UpdateStoryRequest) (*model.Story, error) {
	story, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		return nil, mapNotFound(err, "story")
	}

	if req.Title != nil {
		story.Title = *req.Title
	}
	if req.Description != nil {
		story.Description = *req.Description
	}
	if req.StoryType != nil {
		story.StoryType = model.StoryType(*req.StoryType)
	}
	if req.UnlockCost != nil {
		story.UnlockCost = *req.UnlockCost
	}
	if req.IsActive != nil {
		story.IsActive = *req.IsActive
	}

	if err := s.stories.Update(ctx, story); err != nil {
		return nil, err
	}

	if err := s.search.IndexStory(story); err != nil {
		log.Printf("failed to re-index story %s: %v", story.ID, err)
	}

	return story, nil
}

func (s *storyService) DeleteStory(ctx context.Context, storyID uuid.UUID) error {
	story, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		return mapNotFound(err, "story")
	}

	if err := s.stories.Delete(ctx, story.ID); err != nil {
		return err
	}

	if err := s.search.DeleteStory(story.ID.String()); err != nil {
		log.Printf("failed to remove story %s from index: %v", story.ID, err)
	}

	return nil
}

func (s *storyService) CreateChapter(ctx context.Context, req dto.CreateChapterRequest) (*model.StoryChapter, error) {
	if _, err := s.stories.FindByID(ctx, req.StoryID); err != nil {
		return nil, mapNotFound(err, "story")
	}

	orderNum := req.OrderNum
	if orderNum == 0 {
		orderNum = 1
	}

	chapter := &model.StoryChapter{
		StoryID:  req.StoryID,
		Title:    req.Title,
		Content:  s.sanitizer.Sanitize(req.Content),
		OrderNum: orderNum,
	}

	if err := s.stories.CreateChapter(ctx, chapter); err != nil {
		return nil, err
	}

	return chapter, nil
}

func (s *storyService) ListChapters(ctx context.Context, storyID uuid.UUID) ([]*model.StoryChapter, error) {
	if _, err := s.stories.FindByID(ctx, storyID); err != nil {
		return nil, mapNotFound(err, "story")
	}

	return s.stories.ChaptersByStory(ctx, storyID)
}

func (s *storyService) GetChapter(ctx context.Context, chapterID uuid.UUID) (*model.StoryChapter, error) {
	chapter, err := s.stories.FindChapterByID(ctx, chapterID)
	if err != nil {
		return nil, mapNotFound(err, "chapter")
	}
	return chapter, nil
}

func (s *storyService) UpdateChapter(ctx context.Context, chapterID uuid.UUID, req dto.UpdateChapterRequest) (*model.StoryChapter, error) {
	chapter, err := s.stories.FindChapterByID(ctx, chapterID)
	if err != nil {
		return nil, mapNotFound(err, "chapter")
	}

	if req.Title != nil {
		chapter.Title = *req.Title
	}
	if req.Content != nil {
		chapter.Content = s.sanitizer.Sanitize(*req.Content)
	}
	if req.OrderNum != nil {
		chapter.OrderNum = *req.OrderNum
	}

	if err := s.stories.UpdateChapter(ctx, chapter); err != nil {
		return nil, err
	}

	return chapter, nil
}

func (s *storyService) DeleteChapter(ctx context.Context, chapterID uuid.UUID) error {
	chapter, err := s.stories.FindChapterByID(ctx, chapterID)
	if err != nil {
		return mapNotFound(err, "chapter")
	}

	return s.stories.DeleteChapter(ctx, chapter.ID)
}

func (s *storyService) CreateChoice(ctx context.Context, req dto.CreateChoiceRequest) (*model.StoryChoice, error) {
	if _, err := s.stories.FindChapterByID(ctx, req.ChapterID); err != nil {
		return nil, mapNotFound(err, "chapter")
	}

	if req.NextChapterID != nil {
		if _, err := s.stories.FindChapterByID(ctx, *req.NextChapterID); err != nil {
			return nil, mapNotFound(err, "next chapter")
		}
	}

	choice := &model.StoryChoice{
		ChapterID:     req.ChapterID,
		Text:          req.Text,
		NextChapterID: req.NextChapterID,
	}

	if err := s.stories.CreateChoice(ctx, choice); err != nil {
		return nil, err
	}

	return choice, nil
}

// Unlock spends unlock_cost to create the progression record. Unlocking is
// idempotent: a story already unlocked is returned as-is with no second
// charge. The debit and the UserStory insert commit together.
func (s *storyService) Unlock(ctx context.Context, userID, storyID uuid.UUID) (*model.UserStory, error) {
	var unlocked *model.UserStory

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stories := s.stories.WithTx(tx)

		story, err := stories.FindActiveByID(ctx, storyID)
		if err != nil {
			return mapNotFound(err, "story")
		}

		existing, err := stories.FindUserStory(ctx, userID, storyID)
		if err == nil {
			unlocked = existing
			return nil
		}
		if !isRecordNotFound(err) {
			return err
		}

		if _, err := s.ledger.WithTx(tx).Debit(ctx, userID, story.UnlockCost); err != nil {
			return err
		}

		userStory := &model.UserStory{
			UserID:  userID,
			StoryID: storyID,
		}

		firstChapter, err := stories.FirstChapter(ctx, storyID)
		if err == nil {
			userStory.CurrentChapterID = &firstChapter.ID
		} else if !isRecordNotFound(err) {
			return err
		}

		if err := stories.CreateUserStory(ctx, userStory); err != nil {
			return err
		}

		unlocked = userStory
		return nil
	})
	if err != nil {
		return nil, err
	}

	return unlocked, nil
}

func (s *storyService) MyStories(ctx context.Context, userID uuid.UUID, filter dto.ListFilter) ([]*model.UserStory, error) {
	filter.Normalize()
	return s.stories.FindUserStories(ctx, userID, filter.Skip, filter.Limit)
}

func (s *storyService) MyStory(ctx context.Context, userID, storyID uuid.UUID) (*model.UserStory, error) {
	userStory, err := s.stories.FindUserStory(ctx, userID, storyID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperror.ErrNotUnlocked
		}
		return nil, err
	}
	return userStory, nil
}

// Respond records the player's input against the current chapter and, when a
// choice with a target is taken, advances the cursor. Landing on a chapter
// with no outgoing choices completes the story. A custom response without a
// choice never moves the cursor.
func (s *storyService) Respond(ctx context.Context, userID, storyID uuid.UUID, req dto.StoryResponseRequest) (*model.UserStory, error) {
	var result *model.UserStory

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stories := s.stories.WithTx(tx)

		userStory, err := stories.FindUserStory(ctx, userID, storyID)
		if err != nil {
			if isRecordNotFound(err) {
				return apperror.ErrNotUnlocked
			}
			return err
		}

		if userStory.CurrentChapterID == nil {
			return fmt.Errorf("story has no current chapter: %w", apperror.ErrInvalidChoice)
		}

		var choice *model.StoryChoice
		if req.ChoiceID != nil {
			choice, err = stories.FindChoiceForChapter(ctx, *req.ChoiceID, *userStory.CurrentChapterID)
			if err != nil {
				if isRecordNotFound(err) {
					return apperror.ErrInvalidChoice
				}
				return err
			}
		}

		response := &model.UserStoryResponse{
			UserStoryID:    userStory.ID,
			ChapterID:      *userStory.CurrentChapterID,
			ChoiceID:       req.ChoiceID,
			CustomResponse: req.CustomResponse,
		}
		if err := stories.CreateResponse(ctx, response); err != nil {
			return err
		}

		if choice != nil && choice.NextChapterID != nil {
			userStory.CurrentChapterID = choice.NextChapterID

			count, err := stories.CountChoices(ctx, *choice.NextChapterID)
			if err != nil {
				return err
			}
			if count == 0 {
				userStory.IsCompleted = true
			}
		}

		if err := stories.UpdateUserStory(ctx, userStory); err != nil {
			return err
		}

		result = userStory
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *storyService) CurrentChapter(ctx context.Context, userID, storyID uuid.UUID) (*model.StoryChapter, error) {
	userStory, err := s.stories.FindUserStory(ctx, userID, storyID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, apperror.ErrNotUnlocked
		}
		return nil, err
	}

	if userStory.CurrentChapterID == nil {
		return nil, fmt.Errorf("no current chapter: %w", apperror.ErrNotFound)
	}

	chapter, err := s.stories.FindChapterByID(ctx, *userStory.CurrentChapterID)
	if err != nil {
		return nil, mapNotFound(err, "chapter")
	}

	return chapter, nil
}
