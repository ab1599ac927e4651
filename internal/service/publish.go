package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

var (
	ErrEmptyPost      = errors.New("post needs a caption or a media reference")
	ErrAuthorNotFound = errors.New("author does not exist")
)

// Publisher 写扩散（fan-out on write）
// 发帖时把时间线项推进每个粉丝的 inbox 分区，换取 O(1) 的读延迟
type Publisher struct {
	postRepo  repository.PostRepository
	inboxRepo repository.InboxRepository
	userRepo  repository.UserRepository
	relations RelationshipService
	counter   *cache.Counter

	batchSize int
	workers   int
}

func NewPublisher(postRepo repository.PostRepository, inboxRepo repository.InboxRepository, userRepo repository.UserRepository, relations RelationshipService, counter *cache.Counter, batchSize, workers int) *Publisher {
	if batchSize <= 0 {
		batchSize = 500
	}
	if workers <= 0 {
		workers = 8
	}
	return &Publisher{
		postRepo:  postRepo,
		inboxRepo: inboxRepo,
		userRepo:  userRepo,
		relations: relations,
		counter:   counter,
		batchSize: batchSize,
		workers:   workers,
	}
}

// CreatePost 落地帖子并向所有粉丝分区扇出
// 单个分区写失败只记日志；返回时所有追加已发出（best-effort）
func (p *Publisher) CreatePost(ctx context.Context, authorID, caption, mediaRef string) (string, error) {
	if authorID == "" {
		return "", ErrMissingUser
	}
	if caption == "" && mediaRef == "" {
		return "", ErrEmptyPost
	}
	if _, err := p.userRepo.GetByID(ctx, authorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrAuthorNotFound
		}
		return "", err
	}

	// UUIDv7 keeps post ids time-orderable
	postID, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	now := time.Now()
	post := &model.Post{ID: postID.String(), AuthorID: authorID, Caption: caption, MediaURL: mediaRef, CreatedAt: now}
	if err := p.postRepo.Create(ctx, post); err != nil {
		return "", err
	}

	followers, err := p.relations.Followers(ctx, authorID)
	if err != nil {
		// the post exists; the partitions heal via read-repair
		logger.Warn("follower resolve failed, fan-out skipped", zap.String("post", post.ID), zap.Error(err))
		followers = nil
	}
	p.fanOut(ctx, post, followers)

	if p.counter.Available() {
		if err := p.counter.Init(ctx, post.ID); err != nil {
			logger.Warn("counter init failed", zap.String("post", post.ID), zap.Error(err))
		}
	}
	return post.ID, nil
}

// fanOut issues idempotent inbox appends in batches across a bounded worker
// pool. Batches are independent; ordering between followers is irrelevant.
func (p *Publisher) fanOut(ctx context.Context, post *model.Post, followers []string) {
	if len(followers) == 0 {
		return
	}
	score := post.CreatedAt.UnixNano()

	batches := make(chan []model.Inbox, p.workers)
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range batches {
				// duplicate keys are swallowed by OnConflict DoNothing
				if err := p.inboxRepo.AppendBatch(ctx, batch); err != nil {
					logger.Warn("fan-out batch append failed",
						zap.String("post", post.ID), zap.Int("size", len(batch)), zap.Error(err))
				}
			}
		}()
	}

	for start := 0; start < len(followers); start += p.batchSize {
		end := start + p.batchSize
		if end > len(followers) {
			end = len(followers)
		}
		batch := make([]model.Inbox, 0, end-start)
		for _, follower := range followers[start:end] {
			batch = append(batch, model.Inbox{
				UserID:    follower,
				PostID:    post.ID,
				AuthorID:  post.AuthorID,
				Score:     score,
				CreatedAt: post.CreatedAt,
			})
		}
		batches <- batch
	}
	close(batches)
	wg.Wait()
}
