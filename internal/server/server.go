package server

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"taskventure.app/backend/internal/config"
	"taskventure.app/backend/internal/handler"
	"taskventure.app/backend/internal/middleware"
	"taskventure.app/backend/internal/repository"
	"taskventure.app/backend/internal/scheduler"
	"taskventure.app/backend/internal/service"
)

type Server struct {
	engine    *gin.Engine
	db        *gorm.DB
	scheduler *scheduler.Scheduler
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, meiliClient meilisearch.ServiceManager) *Server {
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	planRepo := repository.NewTaskPlanRepository(db)
	storyRepo := repository.NewStoryRepository(db)

	ledgerSvc := service.NewLedgerService(userRepo)
	leaderboardSvc := service.NewLeaderboardService(userRepo, redisClient)
	unlockGate := service.NewUnlockGate(storyRepo, cfg.UnlockThreshold)
	searchSvc := service.NewSearchService(meiliClient)

	userSvc := service.NewUserService(userRepo, ledgerSvc, leaderboardSvc, redisClient)
	taskSvc := service.NewTaskService(db, taskRepo, ledgerSvc, unlockGate, leaderboardSvc)
	planSvc := service.NewTaskPlanService(db, planRepo, taskRepo)
	storySvc := service.NewStoryService(db, storyRepo, ledgerSvc, searchSvc)

	userHandler := handler.NewUserHandler(userSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	planHandler := handler.NewTaskPlanHandler(planSvc)
	storyHandler := handler.NewStoryHandler(storySvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)

	sched := scheduler.New()
	sched.Register(scheduler.Job{
		Name:     "recurrence-sweep",
		Schedule: cfg.SweepSchedule,
		Run:      planSvc.RunSweep,
	})

	router := gin.New()
	setupCORS(router, cfg.AllowedOrigins)
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/register", userHandler.Register)
		auth.POST("/login", userHandler.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/auth/logout", userHandler.Logout)

		// User routes
		protected.GET("/users/me", userHandler.Me)
		protected.GET("/users", userHandler.ListUsers)
		protected.GET("/users/:id", userHandler.GetUser)
		protected.PUT("/users/:id", userHandler.UpdateUser)
		protected.DELETE("/users/:id", userHandler.DeleteUser)
		protected.PUT("/users/:id/coins", userHandler.SetCoins)
		protected.POST("/users/:id/coins/add", userHandler.AddCoins)
		protected.POST("/users/:id/coins/deduct", userHandler.DeductCoins)

		// Task routes
		protected.POST("/tasks", taskHandler.CreateTask)
		protected.GET("/tasks", taskHandler.ListTasks)
		protected.GET("/tasks/due/today", taskHandler.DueToday)
		protected.GET("/tasks/completions", taskHandler.MyCompletions)
		protected.GET("/tasks/:id", taskHandler.GetTask)
		protected.PUT("/tasks/:id", taskHandler.UpdateTask)
		protected.DELETE("/tasks/:id", taskHandler.DeleteTask)
		protected.POST("/tasks/:id/complete", taskHandler.CompleteTask)
		protected.POST("/tasks/:id/uncomplete", taskHandler.UncompleteTask)
		protected.GET("/tasks/:id/completions", taskHandler.TaskCompletions)

		// Task plan routes
		protected.POST("/task-plans", planHandler.CreatePlan)
		protected.GET("/task-plans", planHandler.ListPlans)
		protected.GET("/task-plans/:id", planHandler.GetPlan)
		protected.PUT("/task-plans/:id", planHandler.UpdatePlan)
		protected.DELETE("/task-plans/:id", planHandler.DeletePlan)
		protected.POST("/task-plans/:id/pause", planHandler.PausePlan)
		protected.POST("/task-plans/:id/activate", planHandler.ActivatePlan)
		protected.POST("/task-plans/:id/complete", planHandler.CompletePlan)
		protected.POST("/task-plans/:id/generate-tasks", planHandler.GeneratePlan)

		// Story catalog (reads for everyone, writes admin-only)
		protected.GET("/stories", storyHandler.ListStories)
		protected.GET("/stories/my", storyHandler.MyStories)
		protected.GET("/stories/my/:id", storyHandler.MyStory)
		protected.GET("/stories/my/:id/current", storyHandler.CurrentChapter)
		protected.POST("/stories/my/:id/respond", storyHandler.Respond)
		protected.GET("/stories/:id", storyHandler.GetStory)
		protected.GET("/stories/:id/chapters", storyHandler.ListChapters)
		protected.GET("/stories/chapters/:id", storyHandler.GetChapter)
		protected.POST("/stories/:id/unlock", storyHandler.UnlockStory)

		adminStories := protected.Group("/stories")
		adminStories.Use(authMiddleware.RequireAdmin())
		{
			adminStories.POST("", storyHandler.CreateStory)
			adminStories.PUT("/:id", storyHandler.UpdateStory)
			adminStories.DELETE("/:id", storyHandler.DeleteStory)
			adminStories.POST("/chapters", storyHandler.CreateChapter)
			adminStories.PUT("/chapters/:id", storyHandler.UpdateChapter)
			adminStories.DELETE("/chapters/:id", storyHandler.DeleteChapter)
			adminStories.POST("/choices", storyHandler.CreateChoice)
		}

		// Leaderboard
		protected.GET("/leaderboard/coins", leaderboardHandler.TopUsers)
	}

	return &Server{
		engine:    router,
		db:        db,
		scheduler: sched,
	}
}

func (s *Server) Run(addr string) error {
	s.scheduler.Start()
	defer s.scheduler.Stop()

	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
