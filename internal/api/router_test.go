package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/api/handler"
	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/graph"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/service"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Post{}, &model.Follow{}, &model.Fan{}, &model.Inbox{}, &model.LikeLog{}, &model.Comment{}))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	followRepo := repository.NewFollowRepository(db)
	fanRepo := repository.NewFanRepository(db)
	postRepo := repository.NewPostRepository(db)
	inboxRepo := repository.NewInboxRepository(db)
	likeRepo := repository.NewLikeLogRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)

	graphStore := graph.NewStore(client)
	counter := cache.NewCounter(client, time.Hour)
	profiles := cache.NewProfileCache(client, userRepo, time.Minute)

	relations := service.NewRelationshipService(followRepo, fanRepo, graphStore, nil)
	publisher := service.NewPublisher(postRepo, inboxRepo, userRepo, relations, counter, 100, 2)
	timeline := service.NewTimeline(inboxRepo, postRepo, relations, 50)
	counterService := service.NewCounterService(counter, likeRepo, 128)
	feedService := service.NewFeedService(timeline, postRepo, commentRepo, likeRepo, profiles, counter, 3)
	userService := service.NewUserService(userRepo, profiles)

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	h := handler.New(relations, publisher, feedService, counterService, userService)
	return NewRouter(cfg, h)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWriteThenReadFeedOverHTTP(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPut, "/api/v1/users", gin.H{"id": "11111111-1111-7111-8111-111111111111", "username": "writer", "email": "w@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPut, "/api/v1/users", gin.H{"id": "22222222-2222-7222-8222-222222222222", "username": "reader", "email": "r@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/relations/follow", gin.H{"from_user_id": "22222222-2222-7222-8222-222222222222", "to_user_id": "11111111-1111-7111-8111-111111111111"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/posts", gin.H{"author_id": "11111111-1111-7111-8111-111111111111", "caption": "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/feed/22222222-2222-7222-8222-222222222222", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "hello")
	require.Contains(t, w.Body.String(), "writer")
}

func TestSelfFollowRejectedOverHTTP(t *testing.T) {
	r := setupRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/relations/follow", gin.H{"from_user_id": "u1", "to_user_id": "u1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLikeEndpointsOverHTTP(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/likes", gin.H{"post_id": "p1", "actor_id": "a1"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/v1/likes", gin.H{"post_id": "p1", "actor_id": "a1"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/likes/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"count":1`)

	w = doJSON(t, r, http.MethodDelete, "/api/v1/likes", gin.H{"post_id": "p1", "actor_id": "a1"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/api/v1/likes/p1", nil)
	require.Contains(t, w.Body.String(), `"count":0`)
}

func TestCreatePostValidationOverHTTP(t *testing.T) {
	r := setupRouter(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", gin.H{"caption": "no author"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
