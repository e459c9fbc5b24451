package model

import "time"

// Vote is a stored vote row. At most one exists per (question, user).
type Vote struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"questionId"`
	UserID     string    `json:"userId"`
	Value      Value     `json:"value"`
	CreatedAt  time.Time `json:"-"`
}

// VoteView is the per-vote entry embedded in a QuestionView snapshot.
type VoteView struct {
	ID     int64  `json:"id"`
	UserID string `json:"userId"`
	Value  Value  `json:"value"`
}

// VoteResult describes what casting a vote did to the ledger.
type VoteResult string

const (
	// VoteCreated: first vote by this user on this question.
	VoteCreated VoteResult = "created"
	// VoteUpdated: an existing vote's value was overwritten.
	VoteUpdated VoteResult = "updated"
	// VoteRetracted: a single-valued vote was toggled off by resubmitting
	// the identical value.
	VoteRetracted VoteResult = "retracted"
)
