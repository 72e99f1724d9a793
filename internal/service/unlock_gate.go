package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"taskventure.app/backend/internal/model"
	"taskventure.app/backend/internal/repository"
)

const DefaultUnlockThreshold = 1000

// UnlockGate grants a story for free when a user's balance crosses the coin
// threshold from below. It fires once per upward crossing: staying above the
// threshold does not re-trigger it, only dropping back under and crossing
// again does.
type UnlockGate struct {
	stories   repository.StoryRepository
	threshold int64
}

func NewUnlockGate(stories repository.StoryRepository, threshold int64) *UnlockGate {
	if threshold <= 0 {
		threshold = DefaultUnlockThreshold
	}
	return &UnlockGate{stories: stories, threshold: threshold}
}

// OnBalanceChange runs inside the transaction that changed the balance, so a
// crash cannot leave the credit applied without the threshold check.
func (g *UnlockGate) OnBalanceChange(ctx context.Context, tx *gorm.DB, userID uuid.UUID, before, after int64) error {
	if before >= g.threshold || after < g.threshold {
		return nil
	}

	stories := g.stories.WithTx(tx)

	story, err := stories.FirstLockedActiveStory(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	userStory := &model.UserStory{
		UserID:  userID,
		StoryID: story.ID,
	}

	firstChapter, err := stories.FirstChapter(ctx, story.ID)
	if err == nil {
		userStory.CurrentChapterID = &firstChapter.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if err := stories.CreateUserStory(ctx, userStory); err != nil {
		return err
	}

	log.Printf("unlock gate: granted story %s to user %s (balance %d -> %d)", story.ID, userID, before, after)
	return nil
}
