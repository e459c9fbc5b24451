package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/jss367/convora/internal/model"
)

// VoteCaster is the ledger surface the vote service needs. Satisfied by
// repository.VoteRepo.
type VoteCaster interface {
	CastVote(ctx context.Context, topic string, q *model.Question, userID string, value model.Value) (model.VoteResult, error)
}

// QuestionFinder looks up a question row. Satisfied by
// repository.QuestionRepo.
type QuestionFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Question, error)
}

type VoteService struct {
	votes     VoteCaster
	questions QuestionFinder
	cache     *CacheService
}

func NewVoteService(votes VoteCaster, questions QuestionFinder, cache *CacheService) *VoteService {
	return &VoteService{votes: votes, questions: questions, cache: cache}
}

// Cast decodes and validates a raw vote payload against the question's
// domain, then applies the toggle/update rule. The raw value stays opaque
// until the question row tells us which shape to expect. The question must
// belong to the claimed topic: otherwise the invalidation and broadcast
// that follow would hit the wrong room and leave the real topic's cached
// snapshot stale.
func (s *VoteService) Cast(ctx context.Context, topic string, questionID int64, raw json.RawMessage, userID string) (model.VoteResult, error) {
	q, err := s.questions.FindByID(ctx, questionID)
	if err != nil {
		return "", err
	}
	if q.Topic != topic {
		return "", model.Validationf("question %d does not belong to discussion %q", questionID, topic)
	}

	value, err := model.DecodeValue(q.Type, raw)
	if err != nil {
		return "", err
	}
	if err := model.ValidateValue(q, value); err != nil {
		return "", err
	}

	result, err := s.votes.CastVote(ctx, topic, q, userID, value)
	if err != nil {
		return "", err
	}

	// Invalidate the topic snapshot so the broadcast recompute reads fresh.
	if s.cache != nil {
		if err := s.cache.InvalidateTopic(ctx, topic); err != nil {
			log.Printf("cache: invalidate topic error: %v", err)
		}
	}

	return result, nil
}
