package model

import "encoding/json"

// Event names of the real-time channel. Client events mirror the web
// client's socket protocol; server events are snapshots, acknowledgements
// and per-connection errors.
type Event string

const (
	EventJoinDiscussion Event = "joinDiscussion"
	EventAddQuestion    Event = "addQuestion"
	EventVote           Event = "vote"

	EventSession   Event = "session"
	EventQuestions Event = "questions"
	EventVoteAck   Event = "voteAck"
	EventError     Event = "error"
)

// ClientMessage is any inbound websocket frame. Fields beyond Event are
// populated depending on the event; Value stays raw until the owning
// question's type is known.
type ClientMessage struct {
	Event      Event           `json:"event"`
	Topic      string          `json:"topic,omitempty"`
	Question   *QuestionSpec   `json:"question,omitempty"`
	QuestionID int64           `json:"questionId,omitempty"`
	Value      json.RawMessage `json:"value,omitempty"`
	UserID     string          `json:"userId,omitempty"`
}

// ServerMessage is any outbound websocket frame. Questions deliberately
// lacks omitempty: a topic with zero questions snapshots as an explicit
// empty list, not an absent key.
type ServerMessage struct {
	Event      Event          `json:"event"`
	Topic      string         `json:"topic,omitempty"`
	Questions  []QuestionView `json:"questions"`
	UserID     string         `json:"userId,omitempty"`
	QuestionID int64          `json:"questionId,omitempty"`
	Result     VoteResult     `json:"result,omitempty"`
	Error      *ErrorPayload  `json:"error,omitempty"`
}

// ErrorPayload reports failure of the triggering connection's last action.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewErrorMessage builds an error frame for the triggering connection.
func NewErrorMessage(message string) ServerMessage {
	return ServerMessage{Event: EventError, Error: &ErrorPayload{Message: message}}
}
