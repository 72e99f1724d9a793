package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskventure.app/backend/internal/dto"
	"taskventure.app/backend/pkg/apperror"
)

func TestCompleteTaskCreditsReward(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "worker", 0)

	task, err := env.tasks.Create(ctx, user.ID, dto.CreateTaskRequest{
		Title:       "write report",
		CoinsReward: 50,
	})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	completed, err := env.tasks.Complete(ctx, user.ID, task.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if !completed.IsCompleted {
		t.Error("task not flagged completed")
	}
	if got := env.balance(t, user); got != 50 {
		t.Errorf("balance = %d, want 50", got)
	}

	completions, err := env.tasks.CompletionsByTask(ctx, user.ID, task.ID, dto.ListFilter{})
	if err != nil {
		t.Fatalf("listing completions failed: %v", err)
	}
	if len(completions) != 1 {
		t.Errorf("completion rows = %d, want 1", len(completions))
	}
}

func TestCompleteTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "worker", 0)

	task, err := env.tasks.Create(ctx, user.ID, dto.CreateTaskRequest{Title: "once", CoinsReward: 10})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	if _, err := env.tasks.Complete(ctx, user.ID, task.ID); err != nil {
		t.Fatalf("first complete failed: %v", err)
	}
	if _, err := env.tasks.Complete(ctx, user.ID, task.ID); !errors.Is(err, apperror.ErrAlreadyCompleted) {
		t.Fatalf("second complete returned %v, want ErrAlreadyCompleted", err)
	}
	if got := env.balance(t, user); got != 10 {
		t.Errorf("balance = %d, want 10 (no double credit)", got)
	}
}

func TestCompleteRepeatingTaskSpawnsSuccessor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "runner", 0)

	due := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	task, err := env.tasks.Create(ctx, user.ID, dto.CreateTaskRequest{
		Title:       "morning run",
		RepeatType:  "daily",
		CoinsReward: 25,
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	if _, err := env.tasks.Complete(ctx, user.ID, task.ID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	pending := false
	tasks, err := env.tasks.List(ctx, user.ID, dto.TaskFilter{Completed: boolPtr(false)})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, next := range tasks {
		if next.ID == task.ID {
			continue
		}
		pending = true
		if next.DueDate == nil || !next.DueDate.Equal(due.AddDate(0, 0, 1)) {
			t.Errorf("successor due %v, want %v", next.DueDate, due.AddDate(0, 0, 1))
		}
	}
	if !pending {
		t.Fatal("no successor task spawned for repeating task")
	}
}

func TestUncompleteRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "undoer", 0)

	task, err := env.tasks.Create(ctx, user.ID, dto.CreateTaskRequest{Title: "chore", CoinsReward: 30})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	if _, err := env.tasks.Complete(ctx, user.ID, task.ID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	uncompleted, err := env.tasks.Uncomplete(ctx, user.ID, task.ID)
	if err != nil {
		t.Fatalf("uncomplete failed: %v", err)
	}
	if uncompleted.IsCompleted {
		t.Error("task still flagged completed")
	}
	if got := env.balance(t, user); got != 0 {
		t.Errorf("balance = %d, want 0 after clawback", got)
	}

	completions, err := env.tasks.CompletionsByTask(ctx, user.ID, task.ID, dto.ListFilter{})
	if err != nil {
		t.Fatalf("listing completions failed: %v", err)
	}
	if len(completions) != 0 {
		t.Errorf("completion rows = %d, want 0", len(completions))
	}

	if _, err := env.tasks.Uncomplete(ctx, user.ID, task.ID); !errors.Is(err, apperror.ErrNotCompleted) {
		t.Errorf("second uncomplete returned %v, want ErrNotCompleted", err)
	}
}

func TestUncompleteClawbackClampsAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "spender", 0)

	task, err := env.tasks.Create(ctx, user.ID, dto.CreateTaskRequest{Title: "gig", CoinsReward: 50})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	if _, err := env.tasks.Complete(ctx, user.ID, task.ID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	// The reward was spent in the meantime.
	if _, err := env.ledger.SetBalance(ctx, user.ID, 20); err != nil {
		t.Fatalf("set balance failed: %v", err)
	}

	if _, err := env.tasks.Uncomplete(ctx, user.ID, task.ID); err != nil {
		t.Fatalf("uncomplete failed: %v", err)
	}
	if got := env.balance(t, user); got != 0 {
		t.Errorf("balance = %d, want 0 (clamped)", got)
	}
}

func TestThresholdCrossingGrantsStory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "climber", 950)

	story, err := env.stories.CreateStory(ctx, dto.CreateStoryRequest{Title: "The Cave"})
	if err != nil {
		t.Fatalf("create story failed: %v", err)
	}
	chapter, err := env.stories.CreateChapter(ctx, dto.CreateChapterRequest{
		StoryID: story.ID,
		Title:   "Entrance",
		Content: "You stand before a dark cave.",
	})
	if err != nil {
		t.Fatalf("create chapter failed: %v", err)
	}

	task, err := env.tasks.Create(ctx, user.ID, dto.CreateTaskRequest{Title: "big job", CoinsReward: 100})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}
	if _, err := env.tasks.Complete(ctx, user.ID, task.ID); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	userStory, err := env.stories.MyStory(ctx, user.ID, story.ID)
	if err != nil {
		t.Fatalf("threshold crossing did not grant the story: %v", err)
	}
	if userStory.CurrentChapterID == nil || *userStory.CurrentChapterID != chapter.ID {
		t.Errorf("granted story cursor = %v, want first chapter %s", userStory.CurrentChapterID, chapter.ID)
	}
	if got := env.balance(t, user); got != 1050 {
		t.Errorf("balance = %d, want 1050 (grant is free)", got)
	}
}

func TestGateFiresOncePerCrossing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "climber", 950)

	for _, title := range []string{"First", "Second"} {
		if _, err := env.stories.CreateStory(ctx, dto.CreateStoryRequest{Title: title}); err != nil {
			t.Fatalf("create story failed: %v", err)
		}
	}

	for i, reward := range []int64{100, 150} {
		task, err := env.tasks.Create(ctx, user.ID, dto.CreateTaskRequest{Title: "job", CoinsReward: reward})
		if err != nil {
			t.Fatalf("create task %d failed: %v", i, err)
		}
		if _, err := env.tasks.Complete(ctx, user.ID, task.ID); err != nil {
			t.Fatalf("complete %d failed: %v", i, err)
		}
	}

	unlocked, err := env.stories.MyStories(ctx, user.ID, dto.ListFilter{})
	if err != nil {
		t.Fatalf("listing unlocked stories failed: %v", err)
	}
	if len(unlocked) != 1 {
		t.Errorf("unlocked stories = %d, want 1 (950 -> 1050 crossed once, 1050 -> 1200 stayed above)", len(unlocked))
	}
}

func TestDailyTaskReachesThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "grinder", 0)

	story, err := env.stories.CreateStory(ctx, dto.CreateStoryRequest{Title: "Reward"})
	if err != nil {
		t.Fatalf("create story failed: %v", err)
	}

	due := time.Now()
	if _, err := env.tasks.Create(ctx, user.ID, dto.CreateTaskRequest{
		Title:       "daily grind",
		RepeatType:  "daily",
		CoinsReward: 100,
		DueDate:     &due,
	}); err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	// Ten completions of the 100-coin daily task: each spawns the next one.
	for day := 0; day < 10; day++ {
		pending, err := env.tasks.List(ctx, user.ID, dto.TaskFilter{Completed: boolPtr(false)})
		if err != nil {
			t.Fatalf("day %d: list failed: %v", day, err)
		}
		if len(pending) != 1 {
			t.Fatalf("day %d: pending tasks = %d, want 1", day, len(pending))
		}
		if _, err := env.tasks.Complete(ctx, user.ID, pending[0].ID); err != nil {
			t.Fatalf("day %d: complete failed: %v", day, err)
		}
	}

	if got := env.balance(t, user); got != 1000 {
		t.Errorf("balance = %d, want 1000", got)
	}
	if _, err := env.stories.MyStory(ctx, user.ID, story.ID); err != nil {
		t.Errorf("story not granted at the 1000 coin mark: %v", err)
	}
}

func TestTaskOwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, "owner", 0)
	intruder := env.seedUser(t, "intruder", 0)

	task, err := env.tasks.Create(ctx, owner.ID, dto.CreateTaskRequest{Title: "private", CoinsReward: 5})
	if err != nil {
		t.Fatalf("create task failed: %v", err)
	}

	if _, err := env.tasks.Get(ctx, intruder.ID, task.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("foreign get returned %v, want ErrNotFound", err)
	}
	if _, err := env.tasks.Complete(ctx, intruder.ID, task.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("foreign complete returned %v, want ErrNotFound", err)
	}
}

func TestDueTodayCadences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t, "planner", 0)

	now := time.Now()
	if _, err := env.tasks.Create(ctx, user.ID, dto.CreateTaskRequest{Title: "due now", DueDate: &now}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := env.tasks.Create(ctx, user.ID, dto.CreateTaskRequest{Title: "every day", RepeatType: "daily"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	nextWeek := now.AddDate(0, 0, 3)
	if _, err := env.tasks.Create(ctx, user.ID, dto.CreateTaskRequest{Title: "later", DueDate: &nextWeek}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	due, err := env.tasks.DueToday(ctx, user.ID)
	if err != nil {
		t.Fatalf("due today failed: %v", err)
	}

	titles := make(map[string]bool, len(due))
	for _, task := range due {
		titles[task.Title] = true
	}
	if !titles["due now"] || !titles["every day"] {
		t.Errorf("due today = %v, want the dated task and the daily task", titles)
	}
	if titles["later"] {
		t.Error("task due in three days listed as due today")
	}
}

func boolPtr(b bool) *bool {
	return &b
}
