package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// ProfileSnapshot carries the subset of a user profile the feed renders.
type ProfileSnapshot struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ProfileCache resolves profile snapshots via Redis MGET with a bulk DB
// fallback for misses. With no Redis client it degrades to DB-only.
type ProfileCache struct {
	client *redis.Client
	users  repository.UserRepository
	ttl    time.Duration
}

func NewProfileCache(client *redis.Client, users repository.UserRepository, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProfileCache{client: client, users: users, ttl: ttl}
}

func profileKey(id string) string { return fmt.Sprintf("user:%s", id) }

// GetMany resolves snapshots for ids; unknown users are simply absent from
// the result map.
func (p *ProfileCache) GetMany(ctx context.Context, ids []string) (map[string]ProfileSnapshot, error) {
	out := make(map[string]ProfileSnapshot, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	missing := ids
	if p.client != nil {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = profileKey(id)
		}
		if vals, err := p.client.MGet(ctx, keys...).Result(); err == nil {
			missing = missing[:0:0]
			for i, v := range vals {
				str, ok := v.(string)
				if !ok {
					missing = append(missing, ids[i])
					continue
				}
				var snap ProfileSnapshot
				if uErr := json.Unmarshal([]byte(str), &snap); uErr != nil {
					missing = append(missing, ids[i])
					continue
				}
				out[ids[i]] = snap
			}
		} else {
			logger.Warn("profile cache mget failed, falling back to db", zap.Error(err))
		}
	}

	if len(missing) == 0 {
		return out, nil
	}
	users, err := p.users.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		snap := snapshotOf(u)
		out[u.ID] = snap
		if p.client != nil {
			if payload, mErr := json.Marshal(snap); mErr == nil {
				_ = p.client.Set(ctx, profileKey(u.ID), payload, p.ttl).Err()
			}
		}
	}
	return out, nil
}

// Invalidate drops a cached snapshot after a profile upsert.
func (p *ProfileCache) Invalidate(ctx context.Context, id string) {
	if p.client == nil {
		return
	}
	_ = p.client.Del(ctx, profileKey(id)).Err()
}

func snapshotOf(u *model.User) ProfileSnapshot {
	return ProfileSnapshot{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}
