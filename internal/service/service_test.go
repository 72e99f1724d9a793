package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"taskventure.app/backend/internal/model"
	"taskventure.app/backend/internal/repository"
)

type testEnv struct {
	db      *gorm.DB
	users   repository.UserRepository
	ledger  LedgerService
	tasks   TaskService
	plans   TaskPlanService
	stories StoryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A named in-memory database so every connection in the pool sees the
	// same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Task{},
		&model.TaskCompletion{},
		&model.TaskPlan{},
		&model.Story{},
		&model.StoryChapter{},
		&model.StoryChoice{},
		&model.UserStory{},
		&model.UserStoryResponse{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	planRepo := repository.NewTaskPlanRepository(db)
	storyRepo := repository.NewStoryRepository(db)

	ledger := NewLedgerService(userRepo)
	leaderboard := NewLeaderboardService(userRepo, nil)
	gate := NewUnlockGate(storyRepo, DefaultUnlockThreshold)
	search := NewSearchService(nil)

	return &testEnv{
		db:      db,
		users:   userRepo,
		ledger:  ledger,
		tasks:   NewTaskService(db, taskRepo, ledger, gate, leaderboard),
		plans:   NewTaskPlanService(db, planRepo, taskRepo),
		stories: NewStoryService(db, storyRepo, ledger, search),
	}
}

func (e *testEnv) seedUser(t *testing.T, username string, coins int64) *model.User {
	t.Helper()

	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		IsActive:     true,
		Coins:        coins,
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func (e *testEnv) balance(t *testing.T, user *model.User) int64 {
	t.Helper()

	fresh, err := e.users.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return fresh.Coins
}
