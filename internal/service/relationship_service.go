package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/graph"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

var (
	ErrFollowSelf  = errors.New("cannot follow self")
	ErrMissingUser = errors.New("user id required")
)

// RelationshipService 关系链服务
// 加速后端（graph）尽力而为，权威写与读兜底都在 follows 表
type RelationshipService interface {
	Follow(ctx context.Context, fromUserID, toUserID string) error
	Unfollow(ctx context.Context, fromUserID, toUserID string) error
	// Followers/Following 优先走加速后端，失败或不可用时回退权威存储，
	// 两条路径返回同一逻辑结果集
	Followers(ctx context.Context, userID string) ([]string, error)
	Following(ctx context.Context, userID string) ([]string, error)
	Suggest(ctx context.Context, userID string, limit int) ([]graph.Suggestion, error)
	ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error)
	Stats(ctx context.Context, userID string) (followers, following int64, err error)
}

type relationshipService struct {
	followRepo repository.FollowRepository
	fanRepo    repository.FanRepository
	graph      *graph.Store
	replicator *FanReplicator
}

func NewRelationshipService(followRepo repository.FollowRepository, fanRepo repository.FanRepository, g *graph.Store, replicator *FanReplicator) RelationshipService {
	return &relationshipService{followRepo: followRepo, fanRepo: fanRepo, graph: g, replicator: replicator}
}

func (s *relationshipService) Follow(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == "" || toUserID == "" {
		return ErrMissingUser
	}
	if fromUserID == toUserID {
		return ErrFollowSelf
	}
	// accelerated backend first, best effort
	if s.graph.Available() {
		if err := s.graph.AddEdge(ctx, fromUserID, toUserID); err != nil {
			logger.Warn("graph add edge failed", zap.String("from", fromUserID), zap.String("to", toUserID), zap.Error(err))
		}
	}
	// durable replica is authoritative; its error is the caller's error
	if err := s.followRepo.Create(ctx, fromUserID, toUserID); err != nil {
		return err
	}
	if s.replicator != nil {
		s.replicator.EnqueueAdd(toUserID, fromUserID)
	}
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, fromUserID, toUserID string) error {
	if fromUserID == "" || toUserID == "" {
		return ErrMissingUser
	}
	// both backends independently; one failing must not block the other
	if s.graph.Available() {
		if err := s.graph.RemoveEdge(ctx, fromUserID, toUserID); err != nil {
			logger.Warn("graph remove edge failed", zap.String("from", fromUserID), zap.String("to", toUserID), zap.Error(err))
		}
	}
	if err := s.followRepo.Delete(ctx, fromUserID, toUserID); err != nil {
		return err
	}
	if s.replicator != nil {
		s.replicator.EnqueueRemove(toUserID, fromUserID)
	}
	return nil
}

func (s *relationshipService) Followers(ctx context.Context, userID string) ([]string, error) {
	if s.graph.Available() {
		ids, err := s.graph.Followers(ctx, userID)
		if err == nil {
			return ids, nil
		}
		logger.Warn("graph followers read failed, using replica", zap.String("user", userID), zap.Error(err))
	}
	return s.followRepo.ListFollowers(ctx, userID, 0, 0)
}

func (s *relationshipService) Following(ctx context.Context, userID string) ([]string, error) {
	if s.graph.Available() {
		ids, err := s.graph.Following(ctx, userID)
		if err == nil {
			return ids, nil
		}
		logger.Warn("graph following read failed, using replica", zap.String("user", userID), zap.Error(err))
	}
	return s.followRepo.ListFollowees(ctx, userID, 0)
}

// Suggest ranks friends-of-friends by distinct connector count. The replica
// fallback aggregates in memory: F = caller's followees, then every edge
// sourced in F, counting targets outside the caller and F.
func (s *relationshipService) Suggest(ctx context.Context, userID string, limit int) ([]graph.Suggestion, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if s.graph.Available() {
		res, err := s.graph.Suggest(ctx, userID, limit)
		if err == nil {
			return res, nil
		}
		logger.Warn("graph suggest failed, using replica", zap.String("user", userID), zap.Error(err))
	}
	direct, err := s.followRepo.ListFollowees(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	if len(direct) == 0 {
		return nil, nil
	}
	followed := make(map[string]struct{}, len(direct))
	for _, id := range direct {
		followed[id] = struct{}{}
	}
	edges, err := s.followRepo.ListBySources(ctx, direct)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, e := range edges {
		if e.FolloweeID == userID {
			continue
		}
		if _, ok := followed[e.FolloweeID]; ok {
			continue
		}
		counts[e.FolloweeID]++
	}
	return graph.RankSuggestions(counts, limit), nil
}

// ListFans pages the redundant fans table (eventually consistent view).
func (s *relationshipService) ListFans(ctx context.Context, userID string, page, pageSize int) ([]string, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	items, err := s.fanRepo.ListFans(ctx, userID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(items))
	for i, it := range items {
		res[i] = it.FanID
	}
	return res, nil
}

func (s *relationshipService) Stats(ctx context.Context, userID string) (int64, int64, error) {
	followers, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	following, err := s.followRepo.CountFollowees(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
