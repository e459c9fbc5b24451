package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jss367/convora/internal/model"
)

type QuestionRepo struct {
	pool *pgxpool.Pool
}

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{pool: pool}
}

// Create persists a question under the discussion for topic, creating the
// discussion lazily if it doesn't exist yet. Both writes share one
// transaction; the discussion upsert goes through the unique topic
// constraint, so two simultaneous creations of a new topic serialize into a
// single row.
func (r *QuestionRepo) Create(ctx context.Context, topic string, spec *model.QuestionSpec) (*model.Question, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// DO UPDATE instead of DO NOTHING so RETURNING yields the id for the
	// conflict (already-exists) path too.
	var discussionID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO discussions (topic) VALUES ($1)
		ON CONFLICT (topic) DO UPDATE SET topic = EXCLUDED.topic
		RETURNING id`,
		topic).Scan(&discussionID)
	if err != nil {
		return nil, err
	}

	q := &model.Question{
		DiscussionID: discussionID,
		Text:         spec.Text,
		Type:         spec.Type,
		MinValue:     spec.MinValue,
		MaxValue:     spec.MaxValue,
		Options:      spec.Options,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO questions (discussion_id, text, qtype, min_value, max_value, options)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		discussionID, spec.Text, string(spec.Type), spec.MinValue, spec.MaxValue, spec.Options).
		Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx, `SELECT pg_notify('topic_changes', $1)`, topic); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return q, nil
}

// FindByID returns a single question with its discussion's topic joined in,
// or pgx.ErrNoRows if absent.
func (r *QuestionRepo) FindByID(ctx context.Context, id int64) (*model.Question, error) {
	var q model.Question
	var qtype string
	err := r.pool.QueryRow(ctx, `
		SELECT q.id, q.discussion_id, d.topic, q.text, q.qtype, q.min_value, q.max_value, q.options, q.created_at
		FROM questions q
		JOIN discussions d ON d.id = q.discussion_id
		WHERE q.id = $1`, id).
		Scan(&q.ID, &q.DiscussionID, &q.Topic, &q.Text, &qtype, &q.MinValue, &q.MaxValue, &q.Options, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	q.Type = model.QuestionType(qtype)
	return &q, nil
}

// ListByTopic joins every question under the topic's discussion with all of
// its votes, ordered by (question id, vote id). The vote-id order is the
// stable tie-break that downstream sorts rely on. A question with no votes
// gets an empty (never nil) votes slice; an unknown topic yields an empty
// list, not an error.
func (r *QuestionRepo) ListByTopic(ctx context.Context, topic string) ([]model.QuestionView, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT q.id, q.text, q.qtype, q.min_value, q.max_value, q.options, q.created_at,
		       v.id, v.user_id, v.value
		FROM questions q
		JOIN discussions d ON q.discussion_id = d.id
		LEFT JOIN votes v ON v.question_id = q.id
		WHERE d.topic = $1
		ORDER BY q.id, v.id`, topic)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]model.QuestionView, 0)
	var cur *model.QuestionView
	for rows.Next() {
		var (
			qID         int64
			text, qtype string
			minV, maxV  *int
			options     []string
			createdAt   time.Time
			voteID      *int64
			voteUser    *string
			voteRaw     []byte
		)
		if err := rows.Scan(&qID, &text, &qtype, &minV, &maxV, &options, &createdAt,
			&voteID, &voteUser, &voteRaw); err != nil {
			return nil, err
		}

		if cur == nil || cur.ID != qID {
			views = append(views, model.QuestionView{
				ID:        qID,
				Text:      text,
				Type:      model.QuestionType(qtype),
				MinValue:  minV,
				MaxValue:  maxV,
				Options:   options,
				Timestamp: createdAt.UnixMilli(),
				Votes:     []model.VoteView{},
			})
			cur = &views[len(views)-1]
		}

		if voteID != nil {
			value, err := model.DecodeValue(cur.Type, voteRaw)
			if err != nil {
				// Skip rows whose stored value no longer matches the
				// question's type rather than failing the whole snapshot.
				continue
			}
			cur.Votes = append(cur.Votes, model.VoteView{
				ID:     *voteID,
				UserID: *voteUser,
				Value:  value,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// Exists reports whether a question with the given id exists.
func (r *QuestionRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM questions WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
