package handler

import (
	"context"
	"testing"

	"github.com/jss367/convora/internal/model"
	"github.com/jss367/convora/internal/service"
)

func recvError(t *testing.T, sess *service.Session) string {
	t.Helper()
	select {
	case msg := <-sess.Outbound():
		if msg.Event != model.EventError || msg.Error == nil {
			t.Fatalf("expected an error frame, got %+v", msg)
		}
		return msg.Error.Message
	default:
		t.Fatal("expected a queued error frame, got none")
		return ""
	}
}

func TestDispatchUnknownEvent(t *testing.T) {
	h := NewWSHandler(nil, nil, nil, nil)
	sess := service.NewSession("u1")

	// No topic on the frame: the event check must still come first.
	h.dispatch(context.Background(), sess, &model.ClientMessage{Event: "subscribe"})

	if got := recvError(t, sess); got != "unknown event" {
		t.Errorf("error = %q, want %q", got, "unknown event")
	}
}

func TestDispatchRejectsMalformedTopic(t *testing.T) {
	h := NewWSHandler(nil, nil, nil, nil)

	for _, event := range []model.Event{model.EventJoinDiscussion, model.EventAddQuestion, model.EventVote} {
		sess := service.NewSession("u1")
		h.dispatch(context.Background(), sess, &model.ClientMessage{Event: event, Topic: "Not A Slug"})
		if got := recvError(t, sess); got == "" || got == "unknown event" {
			t.Errorf("%s: error = %q, want a topic validation message", event, got)
		}
	}
}
