package model

import "time"

// Discussion is a topic under which questions are asked. Topic is the
// user-visible slug and is unique.
type Discussion struct {
	ID        int64     `json:"id"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateDiscussionRequest is the body of POST /api/discussions.
type CreateDiscussionRequest struct {
	Topic string `json:"topic"`
}

// StatsResponse is the API response for global statistics.
type StatsResponse struct {
	TotalDiscussions int            `json:"totalDiscussions"`
	TotalQuestions   int            `json:"totalQuestions"`
	TotalVotes       int            `json:"totalVotes"`
	TotalVoters      int            `json:"totalVoters"`
	VotesByType      map[string]int `json:"votesByType"`
}
