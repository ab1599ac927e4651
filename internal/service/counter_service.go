package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/cache"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// ErrCounterUnavailable 计数缓存不可用（热路径依赖 Redis）
var ErrCounterUnavailable = errors.New("counter cache unavailable")

type shadowAction int

const (
	shadowAppend shadowAction = iota + 1
	shadowDelete
)

type shadowJob struct {
	action  shadowAction
	postID  string
	actorID string
}

// CounterService 点赞计数：Redis 为主存，影子日志异步落盘
// 影子写是 fire-and-forget，失败只记日志，不影响已返回的响应
type CounterService struct {
	counter *cache.Counter
	logRepo repository.LikeLogRepository
	ch      chan shadowJob
}

func NewCounterService(counter *cache.Counter, logRepo repository.LikeLogRepository, queueSize int) *CounterService {
	if queueSize <= 0 {
		queueSize = 65536
	}
	return &CounterService{counter: counter, logRepo: logRepo, ch: make(chan shadowJob, queueSize)}
}

// Start 启动影子日志 worker，返回停止函数
func (s *CounterService) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-s.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					var err error
					switch job.action {
					case shadowAppend:
						err = s.logRepo.Append(ctx, job.postID, job.actorID)
					case shadowDelete:
						err = s.logRepo.Delete(ctx, job.postID, job.actorID)
					}
					cancel()
					if err != nil {
						logger.Warn("shadow log write failed", zap.String("post", job.postID), zap.String("actor", job.actorID), zap.Error(err))
					}
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(s.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

// Like 幂等点赞：同一 actor 重复调用只加一次，返回当前计数
func (s *CounterService) Like(ctx context.Context, postID, actorID string) (int64, error) {
	if postID == "" || actorID == "" {
		return 0, ErrMissingUser
	}
	if !s.counter.Available() {
		return 0, ErrCounterUnavailable
	}
	n, applied, err := s.counter.Incr(ctx, postID, actorID)
	if err != nil {
		return 0, err
	}
	if applied {
		s.dispatch(shadowJob{action: shadowAppend, postID: postID, actorID: actorID})
	}
	return n, nil
}

// Unlike 撤销点赞，计数钳制在 0 以上；未点过赞时为 no-op
func (s *CounterService) Unlike(ctx context.Context, postID, actorID string) (int64, error) {
	if postID == "" || actorID == "" {
		return 0, ErrMissingUser
	}
	if !s.counter.Available() {
		return 0, ErrCounterUnavailable
	}
	n, applied, err := s.counter.Decr(ctx, postID, actorID)
	if err != nil {
		return 0, err
	}
	if applied {
		s.dispatch(shadowJob{action: shadowDelete, postID: postID, actorID: actorID})
	}
	return n, nil
}

func (s *CounterService) GetCount(ctx context.Context, postID string) (int64, error) {
	if !s.counter.Available() {
		return 0, ErrCounterUnavailable
	}
	return s.counter.Get(ctx, postID)
}

// Rebuild 离线重建：按影子日志逐帖重算计数并覆写缓存
// 不在热路径上调用
func (s *CounterService) Rebuild(ctx context.Context) (int, error) {
	if !s.counter.Available() {
		return 0, ErrCounterUnavailable
	}
	posts, err := s.logRepo.DistinctPosts(ctx)
	if err != nil {
		return 0, err
	}
	for _, postID := range posts {
		n, err := s.logRepo.CountByPost(ctx, postID)
		if err != nil {
			return 0, err
		}
		if err := s.counter.Set(ctx, postID, n); err != nil {
			return 0, err
		}
	}
	return len(posts), nil
}

func (s *CounterService) dispatch(job shadowJob) {
	select {
	case s.ch <- job:
	default:
		logger.Warn("shadow log queue full, drop", zap.String("post", job.postID), zap.String("actor", job.actorID))
	}
}
