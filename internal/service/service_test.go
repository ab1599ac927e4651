package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/graph"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

func setupSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Post{}, &model.Follow{}, &model.Fan{}, &model.Inbox{}, &model.LikeLog{}, &model.Comment{}))
	return db
}

func setupSvcRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// stack wires the full service graph against one sqlite DB and an optional
// redis client (nil = accelerated backends disabled).
type stack struct {
	db         *gorm.DB
	followRepo repository.FollowRepository
	fanRepo    repository.FanRepository
	postRepo   repository.PostRepository
	inboxRepo  repository.InboxRepository
	likeRepo   repository.LikeLogRepository
	userRepo   repository.UserRepository
	counter    *cache.Counter
	relations  RelationshipService
	publisher  *Publisher
	timeline   *Timeline
}

func newStack(t *testing.T, client *redis.Client) *stack {
	t.Helper()
	db := setupSvcDB(t)
	s := &stack{
		db:         db,
		followRepo: repository.NewFollowRepository(db),
		fanRepo:    repository.NewFanRepository(db),
		postRepo:   repository.NewPostRepository(db),
		inboxRepo:  repository.NewInboxRepository(db),
		likeRepo:   repository.NewLikeLogRepository(db),
		userRepo:   repository.NewUserRepository(db),
		counter:    cache.NewCounter(client, time.Hour),
	}
	s.relations = NewRelationshipService(s.followRepo, s.fanRepo, graph.NewStore(client), nil)
	s.publisher = NewPublisher(s.postRepo, s.inboxRepo, s.userRepo, s.relations, s.counter, 100, 4)
	s.timeline = NewTimeline(s.inboxRepo, s.postRepo, s.relations, 50)
	return s
}

func (s *stack) seedUser(t *testing.T, id string) {
	t.Helper()
	u := model.User{ID: id, Username: id, Email: id + "@example.com", Password: "p"}
	require.NoError(t, s.db.Create(&u).Error)
}

func entryFor(t *testing.T, ownerID, postID, authorID string, createdAt time.Time) *model.Inbox {
	t.Helper()
	return &model.Inbox{UserID: ownerID, PostID: postID, AuthorID: authorID, Score: createdAt.UnixNano(), CreatedAt: createdAt}
}

func (s *stack) seedPost(t *testing.T, id, authorID string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, s.postRepo.Create(context.Background(), &model.Post{
		ID: id, AuthorID: authorID, Caption: "post " + id, CreatedAt: createdAt,
	}))
}
