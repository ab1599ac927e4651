package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
)

func setupRepoDB(t *testing.T) *gorm.DB {
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

func TestInboxAppendIdempotent(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewInboxRepository(db)
	ctx := context.Background()

	entry := model.Inbox{UserID: "u1", PostID: "p1", AuthorID: "a1", Score: 100}
	require.NoError(t, repo.Append(ctx, &entry))
	// duplicate key = success, no second row
	dup := model.Inbox{UserID: "u1", PostID: "p1", AuthorID: "a1", Score: 100}
	require.NoError(t, repo.Append(ctx, &dup))

	cnt, err := repo.Count(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), cnt)
}

func TestInboxScanOrdering(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewInboxRepository(db)
	ctx := context.Background()

	// same score entries must tie-break by post id ascending
	entries := []model.Inbox{
		{UserID: "u1", PostID: "p-b", AuthorID: "a1", Score: 200},
		{UserID: "u1", PostID: "p-a", AuthorID: "a1", Score: 200},
		{UserID: "u1", PostID: "p-c", AuthorID: "a2", Score: 300},
		{UserID: "u1", PostID: "p-d", AuthorID: "a2", Score: 100},
	}
	require.NoError(t, repo.AppendBatch(ctx, entries))

	got, err := repo.Scan(ctx, "u1", 10)
	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.PostID
	}
	require.Equal(t, []string{"p-c", "p-a", "p-b", "p-d"}, ids)
}

func TestInboxScanLimitAndIsolation(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewInboxRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Append(ctx, &model.Inbox{UserID: "u1", PostID: fmt.Sprintf("p%d", i), Score: int64(i)}))
	}
	require.NoError(t, repo.Append(ctx, &model.Inbox{UserID: "u2", PostID: "px", Score: 999}))

	got, err := repo.Scan(ctx, "u1", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, e := range got {
		require.Equal(t, "u1", e.UserID)
	}
}

func TestLikeLogCountAndDelete(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewLikeLogRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "p1", "a1"))
	require.NoError(t, repo.Append(ctx, "p1", "a1")) // idempotent
	require.NoError(t, repo.Append(ctx, "p1", "a2"))
	require.NoError(t, repo.Append(ctx, "p2", "a1"))

	cnt, err := repo.CountByPost(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(2), cnt)

	require.NoError(t, repo.Delete(ctx, "p1", "a1"))
	cnt, err = repo.CountByPost(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, int64(1), cnt)

	posts, err := repo.DistinctPosts(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"p1", "p2"}, posts)
}

func TestPostListByAuthorOrdering(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	base := time.Now().Truncate(time.Second)
	for i, id := range []string{"p1", "p2", "p3"} {
		require.NoError(t, repo.Create(ctx, &model.Post{ID: id, AuthorID: "a1", Caption: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	got, err := repo.ListByAuthor(ctx, "a1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "p3", got[0].ID)
	require.Equal(t, "p2", got[1].ID)
}
