// fanoutbench measures write-time fan-out cost and the resulting feed read
// latency: one author, N followers, POSTS posts. Tunable via env (N, POSTS,
// BATCH, WORKERS).
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/graph"
	"github.com/d60-Lab/social-feed/internal/model"
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

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	cfg := must(config.Load())
	_ = logger.Init("warn", true)
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		panic(err)
	}

	n := envInt("N", 20000)
	posts := envInt("POSTS", 100)
	batch := envInt("BATCH", cfg.Fanout.BatchSize)
	workers := envInt("WORKERS", cfg.Fanout.Workers)

	ctx := context.Background()
	redisClient := database.InitRedis(cfg)
	graphStore := graph.NewStore(redisClient)
	counter := cache.NewCounter(redisClient, cfg.Counter.FlagTTL)

	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	postRepo := repository.NewPostRepository(db)
	inboxRepo := repository.NewInboxRepository(db)
	userRepo := repository.NewUserRepository(db)

	relations := service.NewRelationshipService(followRepo, fanRepo, graphStore, nil)
	publisher := service.NewPublisher(postRepo, inboxRepo, userRepo, relations, counter, batch, workers)
	timeline := service.NewTimeline(inboxRepo, postRepo, relations, cfg.Timeline.BackfillPer)

	// seed one author and n followers
	author := model.User{ID: uuid.NewString(), Username: "author", Email: "author@example.com", Password: "p"}
	must(0, db.Create(&author).Error)
	fmt.Printf("seeding %d followers...\n", n)
	followers := make([]model.User, 0, 1000)
	for i := 0; i < n; i++ {
		id := uuid.NewString()
		followers = append(followers, model.User{ID: id, Username: fmt.Sprintf("u_%d", i), Email: fmt.Sprintf("u_%d@example.com", i), Password: "p"})
		if len(followers) == 1000 || i == n-1 {
			must(0, db.Create(&followers).Error)
			for _, f := range followers {
				must(0, relations.Follow(ctx, f.ID, author.ID))
			}
			followers = followers[:0]
		}
	}

	fmt.Printf("publishing %d posts (batch=%d workers=%d)...\n", posts, batch, workers)
	lat := make([]time.Duration, 0, posts)
	var firstFollower string
	must(0, db.Model(&model.Follow{}).Where("followee_id = ?", author.ID).Select("follower_id").Limit(1).Scan(&firstFollower).Error)
	for i := 0; i < posts; i++ {
		start := time.Now()
		_ = must(publisher.CreatePost(ctx, author.ID, fmt.Sprintf("post %d", i), ""))
		lat = append(lat, time.Since(start))
	}
	fmt.Printf("fanout publish: p50=%v p95=%v p99=%v max=%v\n", pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99), pct(lat, 1.0))

	reads := make([]time.Duration, 0, 200)
	for i := 0; i < 200; i++ {
		start := time.Now()
		_ = must(timeline.GetFeed(ctx, firstFollower, cfg.Timeline.PageSize))
		reads = append(reads, time.Since(start))
	}
	fmt.Printf("feed read: p50=%v p95=%v p99=%v\n", pct(reads, 0.50), pct(reads, 0.95), pct(reads, 0.99))
}
