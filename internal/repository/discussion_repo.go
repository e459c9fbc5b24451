package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jss367/convora/internal/model"
)

type DiscussionRepo struct {
	pool *pgxpool.Pool
}

func NewDiscussionRepo(pool *pgxpool.Pool) *DiscussionRepo {
	return &DiscussionRepo{pool: pool}
}

// GetOrCreate resolves a topic to its discussion, creating one if absent.
// Idempotent: the upsert goes through the unique topic constraint, and
// DO UPDATE makes RETURNING yield the existing row for the loser of a race.
func (r *DiscussionRepo) GetOrCreate(ctx context.Context, topic string) (*model.Discussion, error) {
	var d model.Discussion
	err := r.pool.QueryRow(ctx, `
		INSERT INTO discussions (topic) VALUES ($1)
		ON CONFLICT (topic) DO UPDATE SET topic = EXCLUDED.topic
		RETURNING id, topic, created_at`,
		topic).Scan(&d.ID, &d.Topic, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByID returns a single discussion, or pgx.ErrNoRows if absent.
func (r *DiscussionRepo) FindByID(ctx context.Context, id int64) (*model.Discussion, error) {
	var d model.Discussion
	err := r.pool.QueryRow(ctx, `
		SELECT id, topic, created_at FROM discussions WHERE id = $1`,
		id).Scan(&d.ID, &d.Topic, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByTopic returns a single discussion by its topic slug.
func (r *DiscussionRepo) FindByTopic(ctx context.Context, topic string) (*model.Discussion, error) {
	var d model.Discussion
	err := r.pool.QueryRow(ctx, `
		SELECT id, topic, created_at FROM discussions WHERE topic = $1`,
		topic).Scan(&d.ID, &d.Topic, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetStats returns aggregate statistics from all tables.
func (r *DiscussionRepo) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM discussions) AS total_discussions,
			(SELECT COUNT(*) FROM questions) AS total_questions,
			(SELECT COUNT(*) FROM votes) AS total_votes,
			(SELECT COUNT(DISTINCT user_id) FROM votes) AS total_voters`

	var stats model.StatsResponse
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalDiscussions, &stats.TotalQuestions,
		&stats.TotalVotes, &stats.TotalVoters,
	)
	if err != nil {
		return nil, err
	}

	typeQuery := `
		SELECT q.qtype, COUNT(v.id) AS total
		FROM votes v
		JOIN questions q ON q.id = v.question_id
		GROUP BY q.qtype
		ORDER BY total DESC`

	rows, err := r.pool.Query(ctx, typeQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.VotesByType = make(map[string]int)
	for rows.Next() {
		var qtype string
		var count int
		if err := rows.Scan(&qtype, &count); err != nil {
			return nil, err
		}
		stats.VotesByType[qtype] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &stats, nil
}
