package main

import (
	"log"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"taskventure.app/backend/internal/bootstrap"
	"taskventure.app/backend/internal/config"
	"taskventure.app/backend/internal/server"
	"taskventure.app/backend/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()

	if err := bootstrap.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	redisClient := newRedisClient(cfg.RedisURL)
	meiliClient := newMeiliClient(cfg.MeiliSearchHost, cfg.MeiliMasterKey)

	srv := server.NewServer(cfg, db, redisClient, meiliClient)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

// newRedisClient returns nil when no REDIS_URL is set. The leaderboard cache
// and session tracking degrade gracefully without it.
func newRedisClient(url string) *redis.Client {
	if url == "" {
		log.Println("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("invalid REDIS_URL, running without redis: %v", err)
		return nil
	}

	return redis.NewClient(opts)
}

// newMeiliClient returns nil when no master key is configured; story search
// then falls back to SQL listing.
func newMeiliClient(host, key string) meilisearch.ServiceManager {
	if key == "" {
		log.Println("MEILI_MASTER_KEY not set, running without search indexing")
		return nil
	}

	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}

	return meilisearch.New(host, meilisearch.WithAPIKey(key))
}
