package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jss367/convora/internal/model"
)

func question(id int64, ts int64, votes ...model.VoteView) model.QuestionView {
	if votes == nil {
		votes = []model.VoteView{}
	}
	return model.QuestionView{
		ID:        id,
		Text:      "q",
		Type:      model.QuestionAgreement,
		Timestamp: ts,
		Votes:     votes,
	}
}

// stubSnapshots serves canned snapshots per topic. views is the committed
// state; cached, when set, is an older copy that only Get serves.
type stubSnapshots struct {
	views  map[string][]model.QuestionView
	cached map[string][]model.QuestionView
	err    error
}

func (s *stubSnapshots) Get(ctx context.Context, topic string) ([]model.QuestionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	if c, ok := s.cached[topic]; ok {
		return c, nil
	}
	return s.views[topic], nil
}

func (s *stubSnapshots) Recompute(ctx context.Context, topic string) ([]model.QuestionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.views[topic], nil
}

func drain(t *testing.T, s *Session) model.ServerMessage {
	t.Helper()
	select {
	case msg := <-s.Outbound():
		return msg
	default:
		t.Fatal("expected a queued message, got none")
		return model.ServerMessage{}
	}
}

func TestHubJoinPushesSnapshot(t *testing.T) {
	src := &stubSnapshots{views: map[string][]model.QuestionView{
		"climate": {{ID: 1, Text: "q", Type: model.QuestionAgreement, Votes: []model.VoteView{}}},
	}}
	hub := NewHub(src)
	sess := NewSession("u1")

	hub.Join(context.Background(), sess, "climate")

	msg := drain(t, sess)
	if msg.Event != model.EventQuestions {
		t.Fatalf("event = %s, want %s", msg.Event, model.EventQuestions)
	}
	if len(msg.Questions) != 1 || msg.Questions[0].ID != 1 {
		t.Errorf("unexpected snapshot: %+v", msg.Questions)
	}
	if !hub.HasSubscribers("climate") {
		t.Error("session should be subscribed after join")
	}
}

func TestHubJoinSnapshotFailureStillSubscribes(t *testing.T) {
	src := &stubSnapshots{err: errors.New("db down")}
	hub := NewHub(src)
	sess := NewSession("u1")

	hub.Join(context.Background(), sess, "climate")

	msg := drain(t, sess)
	if msg.Event != model.EventError {
		t.Fatalf("event = %s, want %s", msg.Event, model.EventError)
	}
	// Subscription survives, so the next successful broadcast repairs the
	// client's view.
	if !hub.HasSubscribers("climate") {
		t.Error("session should remain subscribed after a failed snapshot load")
	}
}

func TestHubBroadcastReachesAllSubscribers(t *testing.T) {
	src := &stubSnapshots{views: map[string][]model.QuestionView{
		"climate": {{ID: 1, Text: "q", Type: model.QuestionAgreement, Votes: []model.VoteView{}}},
	}}
	hub := NewHub(src)
	a := NewSession("a")
	b := NewSession("b")
	other := NewSession("c")

	ctx := context.Background()
	hub.Join(ctx, a, "climate")
	hub.Join(ctx, b, "climate")
	hub.Join(ctx, other, "transit")
	drain(t, a)
	drain(t, b)
	drain(t, other)

	if err := hub.Broadcast(ctx, "climate", a); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	for _, s := range []*Session{a, b} {
		msg := drain(t, s)
		if msg.Event != model.EventQuestions || msg.Topic != "climate" {
			t.Errorf("subscriber got %+v", msg)
		}
	}

	select {
	case msg := <-other.Outbound():
		t.Errorf("session in another room received %+v", msg)
	default:
	}
}

func TestHubBroadcastCarriesCommittedStateNotCache(t *testing.T) {
	// A cached copy written by a read that raced the mutation is missing
	// the vote being announced; the broadcast must read committed state.
	fresh := []model.QuestionView{question(1, 100,
		model.VoteView{ID: 1, UserID: "voter", Value: model.AgreementValue("Agree")},
	)}
	src := &stubSnapshots{
		views:  map[string][]model.QuestionView{"climate": fresh},
		cached: map[string][]model.QuestionView{"climate": {question(1, 100)}},
	}
	hub := NewHub(src)
	voter := NewSession("voter")

	ctx := context.Background()
	hub.Join(ctx, voter, "climate")
	drain(t, voter)

	if err := hub.Broadcast(ctx, "climate", voter); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	msg := drain(t, voter)
	if len(msg.Questions) != 1 || len(msg.Questions[0].Votes) != 1 {
		t.Fatalf("broadcast served the stale copy: %+v", msg.Questions)
	}
	if msg.Questions[0].Votes[0].UserID != "voter" {
		t.Errorf("unexpected vote: %+v", msg.Questions[0].Votes)
	}
}

// gatedSnapshots blocks the first Get until released, to pin down the
// ordering between a join push and a concurrent broadcast.
type gatedSnapshots struct {
	entered chan struct{}
	gate    chan struct{}
	old     []model.QuestionView
	fresh   []model.QuestionView
}

func (g *gatedSnapshots) Get(ctx context.Context, topic string) ([]model.QuestionView, error) {
	g.entered <- struct{}{}
	<-g.gate
	return g.old, nil
}

func (g *gatedSnapshots) Recompute(ctx context.Context, topic string) ([]model.QuestionView, error) {
	return g.fresh, nil
}

func TestHubJoinPushSerializedWithBroadcast(t *testing.T) {
	src := &gatedSnapshots{
		entered: make(chan struct{}, 1),
		gate:    make(chan struct{}),
		old:     []model.QuestionView{question(1, 100)},
		fresh:   []model.QuestionView{question(1, 100), question(2, 200)},
	}
	hub := NewHub(src)
	sess := NewSession("u1")
	ctx := context.Background()

	joined := make(chan struct{})
	go func() {
		hub.Join(ctx, sess, "climate")
		close(joined)
	}()

	// The join now holds the topic lock inside its snapshot load.
	<-src.entered

	broadcast := make(chan error, 1)
	go func() { broadcast <- hub.Broadcast(ctx, "climate", nil) }()

	close(src.gate)
	<-joined
	if err := <-broadcast; err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	// The older join snapshot must land before the broadcast one.
	first := drain(t, sess)
	second := drain(t, sess)
	if len(first.Questions) != 1 {
		t.Errorf("first push = %d questions, want the join snapshot (1)", len(first.Questions))
	}
	if len(second.Questions) != 2 {
		t.Errorf("second push = %d questions, want the broadcast snapshot (2)", len(second.Questions))
	}
}

func TestHubBroadcastFailureOnlyNotifiesTrigger(t *testing.T) {
	src := &stubSnapshots{views: map[string][]model.QuestionView{"climate": {}}}
	hub := NewHub(src)
	trigger := NewSession("a")
	bystander := NewSession("b")

	ctx := context.Background()
	hub.Join(ctx, trigger, "climate")
	hub.Join(ctx, bystander, "climate")
	drain(t, trigger)
	drain(t, bystander)

	src.err = errors.New("recompute failed")
	if err := hub.Broadcast(ctx, "climate", trigger); err == nil {
		t.Fatal("expected broadcast error")
	}

	msg := drain(t, trigger)
	if msg.Event != model.EventError {
		t.Errorf("trigger got %s, want %s", msg.Event, model.EventError)
	}

	select {
	case msg := <-bystander.Outbound():
		t.Errorf("bystander received %+v after failed recompute", msg)
	default:
	}
}

func TestHubBroadcastFailureWithNilTrigger(t *testing.T) {
	src := &stubSnapshots{err: errors.New("down")}
	hub := NewHub(src)

	// Relay broadcasts carry no triggering session.
	if err := hub.Broadcast(context.Background(), "climate", nil); err == nil {
		t.Fatal("expected broadcast error")
	}
}

func TestHubLeaveRemovesFromAllRooms(t *testing.T) {
	src := &stubSnapshots{views: map[string][]model.QuestionView{}}
	hub := NewHub(src)
	sess := NewSession("u1")

	ctx := context.Background()
	hub.Join(ctx, sess, "climate")
	hub.Join(ctx, sess, "transit")
	if got := hub.RoomCount(); got != 2 {
		t.Fatalf("room count = %d, want 2", got)
	}

	hub.Leave(sess)

	if hub.HasSubscribers("climate") || hub.HasSubscribers("transit") {
		t.Error("session still subscribed after leave")
	}
	if got := hub.SessionCount(); got != 0 {
		t.Errorf("session count = %d, want 0", got)
	}
	select {
	case <-sess.Done():
	default:
		t.Error("leave should close the session")
	}
}

func TestSessionSlowConsumerEvicted(t *testing.T) {
	sess := NewSession("u1")

	for i := 0; i < sessionSendBuffer; i++ {
		if !sess.Send(model.ServerMessage{Event: model.EventQuestions}) {
			t.Fatalf("send %d should succeed", i)
		}
	}

	// Buffer full and nobody draining: the session is closed, not blocked.
	if sess.Send(model.ServerMessage{Event: model.EventQuestions}) {
		t.Error("send into a full buffer should fail")
	}
	select {
	case <-sess.Done():
	default:
		t.Error("overflowing session should be closed")
	}
	if sess.Send(model.ServerMessage{Event: model.EventQuestions}) {
		t.Error("send after close should fail")
	}
}

func TestHubBroadcastSkipsClosedSessions(t *testing.T) {
	src := &stubSnapshots{views: map[string][]model.QuestionView{"climate": {}}}
	hub := NewHub(src)
	sess := NewSession("u1")

	ctx := context.Background()
	hub.Join(ctx, sess, "climate")
	drain(t, sess)
	sess.Close()

	if err := hub.Broadcast(ctx, "climate", nil); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	select {
	case msg := <-sess.Outbound():
		t.Errorf("closed session received %+v", msg)
	default:
	}
}
