package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/jss367/convora/internal/model"
)

// SnapshotService materializes the full per-topic question list that gets
// pushed to clients. Every snapshot is a complete recomputation, never a
// diff: applying snapshots is then idempotent with respect to ordering,
// which is what lets the broadcaster tolerate races between mutations.
type SnapshotService struct {
	questions QuestionLister
	cache     *CacheService
}

// QuestionLister is the repository surface the snapshot service needs.
// Satisfied by repository.QuestionRepo.
type QuestionLister interface {
	ListByTopic(ctx context.Context, topic string) ([]model.QuestionView, error)
}

func NewSnapshotService(questions QuestionLister, cache *CacheService) *SnapshotService {
	return &SnapshotService{questions: questions, cache: cache}
}

// Get returns the ordered question list for a topic, with every question's
// votes joined in. Reads through the Redis cache. A cached entry can lag a
// racing mutation briefly; the broadcast that follows every mutation goes
// through Recompute and overwrites it. An unknown topic yields an empty
// list.
func (s *SnapshotService) Get(ctx context.Context, topic string) ([]model.QuestionView, error) {
	if s.cache != nil {
		if data, err := s.cache.GetSnapshot(ctx, topic); err != nil {
			log.Printf("cache: snapshot read error: %v", err)
		} else if data != nil {
			var views []model.QuestionView
			if err := json.Unmarshal(data, &views); err == nil {
				return views, nil
			}
			// Undecodable cache entries are dropped and recomputed.
			_ = s.cache.InvalidateTopic(ctx, topic)
		}
	}

	return s.Recompute(ctx, topic)
}

// Recompute reads the question list straight from the database, bypassing
// the cache, and refreshes the cached entry with the result. Broadcasts use
// this: a post-commit recompute can never serve a snapshot cached before
// the commit, which is what keeps pushed snapshots in commit order.
func (s *SnapshotService) Recompute(ctx context.Context, topic string) ([]model.QuestionView, error) {
	views, err := s.questions.ListByTopic(ctx, topic)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(views); err == nil {
			if err := s.cache.SetSnapshot(ctx, topic, data); err != nil {
				log.Printf("cache: snapshot write error: %v", err)
			}
		}
	}

	return views, nil
}
