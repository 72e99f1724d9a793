package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"taskventure.app/backend/internal/repository"
)

const (
	leaderboardCacheKey = "leaderboard:coins"
	leaderboardCacheTTL = 30 * time.Second
)

type LeaderboardEntry struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Coins    int64     `json:"coins"`
}

// LeaderboardService serves the richest-users ranking. Results come from a
// short-lived redis cache when a client is available; the source of truth is
// always the users table.
type LeaderboardService interface {
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Invalidate(ctx context.Context)
}

type leaderboardService struct {
	users       repository.UserRepository
	redisClient *redis.Client
}

func NewLeaderboardService(users repository.UserRepository, redisClient *redis.Client) LeaderboardService {
	return &leaderboardService{users: users, redisClient: redisClient}
}

func (s *leaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, leaderboardCacheKey).Result()
		if err == nil {
			var entries []LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				if len(entries) > limit {
					entries = entries[:limit]
				}
				return entries, nil
			}
		}
	}

	users, err := s.users.TopByCoins(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		entries = append(entries, LeaderboardEntry{
			UserID:   user.ID,
			Username: user.Username,
			Coins:    user.Coins,
		})
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.redisClient.Set(ctx, leaderboardCacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
				log.Printf("failed to cache leaderboard: %v", err)
			}
		}
	}

	return entries, nil
}

// Invalidate drops the cached ranking after a balance change. Best effort.
func (s *leaderboardService) Invalidate(ctx context.Context) {
	if s.redisClient == nil {
		return
	}

	if err := s.redisClient.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		log.Printf("failed to invalidate leaderboard cache: %v", err)
	}
}
