// Package graph is the accelerated follow-graph backend: follower and
// followee sets mirrored into Redis for cheap traversal. It is strictly
// best-effort — the durable replica in repository owns the truth, and every
// caller must be prepared for Available() == false or per-call errors.
package graph

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	followingKeyPrefix = "graph:following:"
	followersKeyPrefix = "graph:followers:"
)

// Store mirrors follow edges into Redis sets.
type Store struct {
	client *redis.Client
}

// NewStore accepts a nil client; the store then reports unavailable and
// every operation is a no-op for writes, an error for reads.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Available reports whether the accelerated backend can serve traffic.
func (s *Store) Available() bool { return s != nil && s.client != nil }

// AddEdge mirrors follower→followee into both direction sets.
func (s *Store) AddEdge(ctx context.Context, followerID, followeeID string) error {
	pipe := s.client.Pipeline()
	pipe.SAdd(ctx, followingKeyPrefix+followerID, followeeID)
	pipe.SAdd(ctx, followersKeyPrefix+followeeID, followerID)
	_, err := pipe.Exec(ctx)
	return err
}

// RemoveEdge deletes both directions; missing members are not an error.
func (s *Store) RemoveEdge(ctx context.Context, followerID, followeeID string) error {
	pipe := s.client.Pipeline()
	pipe.SRem(ctx, followingKeyPrefix+followerID, followeeID)
	pipe.SRem(ctx, followersKeyPrefix+followeeID, followerID)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) Followers(ctx context.Context, userID string) ([]string, error) {
	return s.client.SMembers(ctx, followersKeyPrefix+userID).Result()
}

func (s *Store) Following(ctx context.Context, userID string) ([]string, error) {
	return s.client.SMembers(ctx, followingKeyPrefix+userID).Result()
}

// Suggest ranks two-hop neighbours (friends of friends) by the number of
// distinct intermediate connectors, excluding the caller and anyone the
// caller already follows. Ties break by id for a stable order.
func (s *Store) Suggest(ctx context.Context, userID string, limit int) ([]Suggestion, error) {
	direct, err := s.Following(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(direct) == 0 {
		return nil, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringSliceCmd, len(direct))
	for i, mid := range direct {
		cmds[i] = pipe.SMembers(ctx, followingKeyPrefix+mid)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	followed := make(map[string]struct{}, len(direct))
	for _, id := range direct {
		followed[id] = struct{}{}
	}
	counts := make(map[string]int)
	for _, cmd := range cmds {
		for _, candidate := range cmd.Val() {
			if candidate == userID {
				continue
			}
			if _, ok := followed[candidate]; ok {
				continue
			}
			counts[candidate]++
		}
	}
	return RankSuggestions(counts, limit), nil
}

// Suggestion is a ranked friends-of-friends candidate.
type Suggestion struct {
	UserID  string `json:"user_id"`
	Mutuals int    `json:"mutuals"`
}

// RankSuggestions turns a candidate→connector-count map into a sorted,
// truncated slice. Shared by the accelerated and fallback suggest paths so
// both rank identically.
func RankSuggestions(counts map[string]int, limit int) []Suggestion {
	res := make([]Suggestion, 0, len(counts))
	for id, n := range counts {
		res = append(res, Suggestion{UserID: id, Mutuals: n})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Mutuals != res[j].Mutuals {
			return res[i].Mutuals > res[j].Mutuals
		}
		return res[i].UserID < res[j].UserID
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res
}
