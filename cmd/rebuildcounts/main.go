// rebuildcounts recomputes every engagement counter from the durable shadow
// log and overwrites the cache. Offline tool; never run on the hot path.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/database"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())
	_ = logger.Init(cfg.Log.Level, true)
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()

	redisClient := database.InitRedis(cfg)
	if redisClient == nil {
		fmt.Fprintln(os.Stderr, "rebuild needs the counter cache reachable")
		os.Exit(1)
	}
	defer func() { _ = redisClient.Close() }()

	counter := cache.NewCounter(redisClient, cfg.Counter.FlagTTL)
	svc := service.NewCounterService(counter, repository.NewLikeLogRepository(db), 0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	n, err := svc.Rebuild(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("rebuilt %d counters in %s\n", n, time.Since(start))
}
