package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// TimelineRef 时间线上的帖子引用（拼装前的最小形态）
type TimelineRef struct {
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Timeline 读路径：分区扫描 + 空分区惰性回填（read-repair）
//
// 回填只由空分区触发；非空但陈旧的分区不做补齐。并发回填无需加锁，
// 因为 inbox 追加在 (owner, post) 上幂等，两次并发修复收敛到同一状态。
type Timeline struct {
	inboxRepo repository.InboxRepository
	postRepo  repository.PostRepository
	relations RelationshipService

	backfillPer int // posts pulled per followed author during repair
}

func NewTimeline(inboxRepo repository.InboxRepository, postRepo repository.PostRepository, relations RelationshipService, backfillPer int) *Timeline {
	if backfillPer <= 0 {
		backfillPer = 50
	}
	return &Timeline{inboxRepo: inboxRepo, postRepo: postRepo, relations: relations, backfillPer: backfillPer}
}

// GetFeed 返回 owner 分区的前 pageSize 条引用
// 空分区触发回填；无关注时退化为自己的发帖列表；修复后仍为空返回空结果
func (t *Timeline) GetFeed(ctx context.Context, ownerID string, pageSize int) ([]TimelineRef, error) {
	if ownerID == "" {
		return nil, ErrMissingUser
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	entries, err := t.inboxRepo.Scan(ctx, ownerID, pageSize)
	if err != nil {
		return nil, err
	}
	if len(entries) > 0 {
		return refsOfEntries(entries), nil
	}

	following, err := t.relations.Following(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(following) == 0 {
		// self view: own per-author index, partition left untouched
		posts, err := t.postRepo.ListByAuthor(ctx, ownerID, pageSize)
		if err != nil {
			return nil, err
		}
		return refsOfPosts(posts), nil
	}

	if err := t.backfill(ctx, ownerID, following); err != nil {
		return nil, err
	}
	entries, err = t.inboxRepo.Scan(ctx, ownerID, pageSize)
	if err != nil {
		return nil, err
	}
	// explicit empty result, not an error
	return refsOfEntries(entries), nil
}

// backfill merges the recent posts of every followed author into the
// owner's partition. Appends are idempotent, so concurrent repairs for the
// same owner are safe and converge.
func (t *Timeline) backfill(ctx context.Context, ownerID string, following []string) error {
	for _, authorID := range following {
		posts, err := t.postRepo.ListByAuthor(ctx, authorID, t.backfillPer)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			continue
		}
		batch := make([]model.Inbox, 0, len(posts))
		for _, p := range posts {
			batch = append(batch, model.Inbox{
				UserID:    ownerID,
				PostID:    p.ID,
				AuthorID:  p.AuthorID,
				Score:     p.CreatedAt.UnixNano(),
				CreatedAt: p.CreatedAt,
			})
		}
		if err := t.inboxRepo.AppendBatch(ctx, batch); err != nil {
			return err
		}
	}
	logger.Debug("timeline backfilled", zap.String("owner", ownerID), zap.Int("authors", len(following)))
	return nil
}

func refsOfEntries(entries []*model.Inbox) []TimelineRef {
	res := make([]TimelineRef, len(entries))
	for i, e := range entries {
		res[i] = TimelineRef{PostID: e.PostID, AuthorID: e.AuthorID, CreatedAt: e.CreatedAt}
	}
	return res
}

func refsOfPosts(posts []*model.Post) []TimelineRef {
	res := make([]TimelineRef, len(posts))
	for i, p := range posts {
		res[i] = TimelineRef{PostID: p.ID, AuthorID: p.AuthorID, CreatedAt: p.CreatedAt}
	}
	return res
}
