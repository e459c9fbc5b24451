package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jss367/convora/internal/model"
)

type VoteRepo struct {
	pool *pgxpool.Pool
}

func NewVoteRepo(pool *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{pool: pool}
}

// CastOutcome decides what casting a value does given the user's existing
// vote (nil if none). Single-valued types toggle off on an identical
// resubmission; collection types always update in place.
func CastOutcome(qt model.QuestionType, existing, incoming model.Value) model.VoteResult {
	if existing == nil {
		return model.VoteCreated
	}
	if qt.SingleValued() && existing.Equal(incoming) {
		return model.VoteRetracted
	}
	return model.VoteUpdated
}

// CastVote applies the single-vote-with-toggle rule for (question, user)
// inside one transaction. The read and the write share the transaction, and
// the UNIQUE (question_id, user_id) constraint backs the insert with
// ON CONFLICT DO UPDATE, so two racing first votes by the same user collapse
// into one row instead of erroring. Any failure rolls the whole cast back.
func (r *VoteRepo) CastVote(ctx context.Context, topic string, q *model.Question, userID string, value model.Value) (model.VoteResult, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("encode vote value: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var existingID int64
	var existingRaw []byte
	err = tx.QueryRow(ctx, `
		SELECT id, value FROM votes
		WHERE question_id = $1 AND user_id = $2`,
		q.ID, userID).Scan(&existingID, &existingRaw)

	var existing model.Value
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// first vote
	case err != nil:
		return "", err
	default:
		existing, err = model.DecodeValue(q.Type, existingRaw)
		if err != nil {
			// A stored value that no longer decodes (e.g. written before
			// domain validation existed) is treated as absent and overwritten.
			existing = nil
		}
	}

	result := CastOutcome(q.Type, existing, value)
	switch result {
	case model.VoteCreated:
		_, err = tx.Exec(ctx, `
			INSERT INTO votes (question_id, user_id, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (question_id, user_id) DO UPDATE
			SET value = EXCLUDED.value, created_at = NOW()`,
			q.ID, userID, string(raw))
	case model.VoteRetracted:
		_, err = tx.Exec(ctx, `DELETE FROM votes WHERE id = $1`, existingID)
	case model.VoteUpdated:
		_, err = tx.Exec(ctx, `UPDATE votes SET value = $1, created_at = NOW() WHERE id = $2`,
			string(raw), existingID)
	}
	if err != nil {
		return "", err
	}

	// Wake broadcast relays on other instances sharing this database.
	if _, err = tx.Exec(ctx, `SELECT pg_notify('topic_changes', $1)`, topic); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return result, nil
}

// CountForQuestion returns the number of distinct (question, user) vote rows.
func (r *VoteRepo) CountForQuestion(ctx context.Context, questionID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM votes WHERE question_id = $1`, questionID).Scan(&n)
	return n, err
}
