package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/api"
	"github.com/d60-Lab/social-feed/internal/api/handler"
	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/graph"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/database"
	"github.com/d60-Lab/social-feed/pkg/logger"
	"github.com/d60-Lab/social-feed/pkg/tracing"
)

// @title social-feed API
// @version 1.0
// @description Timeline fan-out demo: follow graph, write-time fan-out, read-repair feed assembly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	shutdownTracing, err := tracing.Init(ctx, cfg)
	if err != nil {
		logger.Error("tracing init failed", zap.Error(err))
	} else {
		defer func() { _ = shutdownTracing(context.Background()) }()
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("database init failed", zap.Error(err))
		return
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		logger.Error("migrate failed", zap.Error(err))
		return
	}

	// nil client = accelerated paths disabled, durable fallbacks everywhere
	redisClient := database.InitRedis(cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	postRepo := repository.NewPostRepository(db)
	inboxRepo := repository.NewInboxRepository(db)
	likeRepo := repository.NewLikeLogRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)

	graphStore := graph.NewStore(redisClient)
	counter := cache.NewCounter(redisClient, cfg.Counter.FlagTTL)
	profiles := cache.NewProfileCache(redisClient, userRepo, 10*time.Minute)

	replicator := service.NewFanReplicator(fanRepo, cfg.Fanout.ReplicaQueue)
	stopReplicator := replicator.Start(4)
	defer func() { _ = stopReplicator(context.Background()) }()

	relations := service.NewRelationshipService(followRepo, fanRepo, graphStore, replicator)
	publisher := service.NewPublisher(postRepo, inboxRepo, userRepo, relations, counter, cfg.Fanout.BatchSize, cfg.Fanout.Workers)
	timeline := service.NewTimeline(inboxRepo, postRepo, relations, cfg.Timeline.BackfillPer)
	counterService := service.NewCounterService(counter, likeRepo, cfg.Counter.ShadowQueue)
	stopShadow := counterService.Start(2)
	defer func() { _ = stopShadow(context.Background()) }()
	feedService := service.NewFeedService(timeline, postRepo, commentRepo, likeRepo, profiles, counter, 3)
	userService := service.NewUserService(userRepo, profiles)

	h := handler.New(relations, publisher, feedService, counterService, userService)
	router := api.NewRouter(cfg, h)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown not clean", zap.Error(err))
	}
}
