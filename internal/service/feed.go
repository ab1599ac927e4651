package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// FeedComment 拼装后的评论视图
type FeedComment struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedItem 拼装后的一条 feed
type FeedItem struct {
	PostID    string                `json:"post_id"`
	Caption   string                `json:"caption"`
	MediaURL  string                `json:"media_url,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	Author    cache.ProfileSnapshot `json:"author"`
	LikeCount int64                 `json:"like_count"`
	Comments  []FeedComment         `json:"comments,omitempty"`
}

// FeedService 读路径的拼装层：引用 → 完整 feed 页
type FeedService struct {
	timeline    *Timeline
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeLogRepository
	profiles    *cache.ProfileCache
	counter     *cache.Counter

	commentLimit int
}

func NewFeedService(timeline *Timeline, postRepo repository.PostRepository, commentRepo repository.CommentRepository, likeRepo repository.LikeLogRepository, profiles *cache.ProfileCache, counter *cache.Counter, commentLimit int) *FeedService {
	if commentLimit <= 0 {
		commentLimit = 3
	}
	return &FeedService{
		timeline:     timeline,
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		likeRepo:     likeRepo,
		profiles:     profiles,
		counter:      counter,
		commentLimit: commentLimit,
	}
}

// GetFeed 组合装配：先取有序引用，再拼装
func (s *FeedService) GetFeed(ctx context.Context, ownerID string, pageSize int) ([]FeedItem, error) {
	refs, err := s.timeline.GetFeed(ctx, ownerID, pageSize)
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, refs)
}

// Enrich resolves post body, author profile, like count and a bounded page
// of top-level comments for every reference, concurrently per reference.
// Output order equals input order regardless of lookup completion order;
// references whose post is gone (stale timeline entry) are dropped.
func (s *FeedService) Enrich(ctx context.Context, refs []TimelineRef) ([]FeedItem, error) {
	if len(refs) == 0 {
		return []FeedItem{}, nil
	}

	// index-addressed so completion order cannot reorder the page
	items := make([]*FeedItem, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref TimelineRef) {
			defer wg.Done()
			item := s.resolve(ctx, ref)
			items[i] = item
		}(i, ref)
	}
	wg.Wait()

	// batch-resolve author profiles for the survivors
	authorIDs := make([]string, 0, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for _, it := range items {
		if it == nil {
			continue
		}
		if _, ok := seen[it.Author.ID]; ok {
			continue
		}
		seen[it.Author.ID] = struct{}{}
		authorIDs = append(authorIDs, it.Author.ID)
	}
	snaps, err := s.profiles.GetMany(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]FeedItem, 0, len(refs))
	for _, it := range items {
		if it == nil {
			continue
		}
		if snap, ok := snaps[it.Author.ID]; ok {
			it.Author = snap
		}
		out = append(out, *it)
	}
	return out, nil
}

// resolve loads a single reference; nil means the post no longer exists and
// the dangling timeline entry is tolerated and filtered out.
func (s *FeedService) resolve(ctx context.Context, ref TimelineRef) *FeedItem {
	post, err := s.postRepo.GetByID(ctx, ref.PostID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warn("post resolve failed, dropping ref", zap.String("post", ref.PostID), zap.Error(err))
		}
		return nil
	}

	item := &FeedItem{
		PostID:    post.ID,
		Caption:   post.Caption,
		MediaURL:  post.MediaURL,
		CreatedAt: post.CreatedAt,
		Author:    cache.ProfileSnapshot{ID: post.AuthorID},
	}

	item.LikeCount = s.likeCount(ctx, post.ID)

	comments, err := s.commentRepo.ListTopLevel(ctx, post.ID, s.commentLimit)
	if err != nil {
		logger.Warn("comment load failed", zap.String("post", post.ID), zap.Error(err))
	} else {
		for _, c := range comments {
			item.Comments = append(item.Comments, FeedComment{ID: c.ID, AuthorID: c.AuthorID, Content: c.Content, CreatedAt: c.CreatedAt})
		}
	}
	return item
}

// likeCount prefers the cache and falls back to the durable shadow log.
func (s *FeedService) likeCount(ctx context.Context, postID string) int64 {
	if s.counter.Available() {
		if n, err := s.counter.Get(ctx, postID); err == nil {
			return n
		}
	}
	n, err := s.likeRepo.CountByPost(ctx, postID)
	if err != nil {
		logger.Warn("like count fallback failed", zap.String("post", postID), zap.Error(err))
		return 0
	}
	return n
}
