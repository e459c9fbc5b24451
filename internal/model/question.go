package model

import (
	"encoding/json"
	"time"
)

// QuestionType tags a question with its voting mechanism. The string values
// are the wire/database representation expected by the web client.
type QuestionType string

const (
	QuestionAgreement      QuestionType = "Agreement"
	QuestionNumerical      QuestionType = "Numerical"
	QuestionMultipleChoice QuestionType = "Multiple Choice"
	QuestionCheckbox       QuestionType = "Checkbox"
	QuestionRanking        QuestionType = "Ranking"
	QuestionOpenEnded      QuestionType = "Open Ended"
)

// QuestionTypes lists every known type, in display order.
var QuestionTypes = []QuestionType{
	QuestionAgreement,
	QuestionNumerical,
	QuestionMultipleChoice,
	QuestionCheckbox,
	QuestionRanking,
	QuestionOpenEnded,
}

// AgreementOptions are the fixed vote options of an Agreement question.
var AgreementOptions = []string{
	"Strongly Agree",
	"Agree",
	"Unsure",
	"Disagree",
	"Strongly Disagree",
}

// Known reports whether t is one of the six supported question types.
func (t QuestionType) Known() bool {
	for _, qt := range QuestionTypes {
		if t == qt {
			return true
		}
	}
	return false
}

// SingleValued reports whether a question of this type holds a scalar vote
// value. Single-valued types toggle off when a user resubmits the identical
// value; Checkbox and Ranking always update in place, since resubmitting a
// collection means a new combination, not a repeat.
func (t QuestionType) SingleValued() bool {
	switch t {
	case QuestionAgreement, QuestionNumerical, QuestionMultipleChoice, QuestionOpenEnded:
		return true
	case QuestionCheckbox, QuestionRanking:
		return false
	default:
		return false
	}
}

// NeedsOptions reports whether questions of this type carry an option list.
func (t QuestionType) NeedsOptions() bool {
	switch t {
	case QuestionMultipleChoice, QuestionCheckbox, QuestionRanking:
		return true
	default:
		return false
	}
}

// Question is a stored question row. Topic is the owning discussion's slug,
// denormalized on read so callers can check a question against the topic a
// client claims it belongs to.
type Question struct {
	ID           int64        `json:"id"`
	DiscussionID int64        `json:"-"`
	Topic        string       `json:"-"`
	Text         string       `json:"text"`
	Type         QuestionType `json:"type"`
	MinValue     *int         `json:"minValue,omitempty"`
	MaxValue     *int         `json:"maxValue,omitempty"`
	Options      []string     `json:"options,omitempty"`
	CreatedAt    time.Time    `json:"-"`
}

// QuestionSpec is the client-supplied definition of a new question.
type QuestionSpec struct {
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	MinValue *int         `json:"minValue,omitempty"`
	MaxValue *int         `json:"maxValue,omitempty"`
	Options  []string     `json:"options,omitempty"`
}

// QuestionView is a question with its votes joined in, as pushed to clients.
// Timestamp is unix milliseconds so the client's recency sort needs no
// parsing.
type QuestionView struct {
	ID        int64        `json:"id"`
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	MinValue  *int         `json:"minValue,omitempty"`
	MaxValue  *int         `json:"maxValue,omitempty"`
	Options   []string     `json:"options,omitempty"`
	Timestamp int64        `json:"timestamp"`
	Votes     []VoteView   `json:"votes"`
}

// questionViewWire mirrors QuestionView with vote values left raw, so that
// UnmarshalJSON can decode them using the question's own type tag.
type questionViewWire struct {
	ID        int64        `json:"id"`
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	MinValue  *int         `json:"minValue,omitempty"`
	MaxValue  *int         `json:"maxValue,omitempty"`
	Options   []string     `json:"options,omitempty"`
	Timestamp int64        `json:"timestamp"`
	Votes     []struct {
		ID     int64           `json:"id"`
		UserID string          `json:"userId"`
		Value  json.RawMessage `json:"value"`
	} `json:"votes"`
}

// UnmarshalJSON decodes a pushed question, resolving each vote's raw value
// through the tagged union keyed by the question type.
func (q *QuestionView) UnmarshalJSON(data []byte) error {
	var wire questionViewWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	out := QuestionView{
		ID:        wire.ID,
		Text:      wire.Text,
		Type:      wire.Type,
		MinValue:  wire.MinValue,
		MaxValue:  wire.MaxValue,
		Options:   wire.Options,
		Timestamp: wire.Timestamp,
		Votes:     make([]VoteView, 0, len(wire.Votes)),
	}
	for _, v := range wire.Votes {
		val, err := DecodeValue(wire.Type, v.Value)
		if err != nil {
			return err
		}
		out.Votes = append(out.Votes, VoteView{ID: v.ID, UserID: v.UserID, Value: val})
	}

	*q = out
	return nil
}
