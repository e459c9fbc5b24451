package service

import (
	"context"
	"log"
	"sync"

	"github.com/jss367/convora/internal/model"
)

// sessionSendBuffer is how many outbound frames a session can fall behind
// before it is considered dead and evicted. Snapshots are small, so a full
// buffer means the peer stopped reading.
const sessionSendBuffer = 16

// Session is one subscribed connection. The hub only ever writes to the
// send channel; the transport layer owns the websocket and drains the
// channel from its writer goroutine.
type Session struct {
	UserID string

	send chan model.ServerMessage
	done chan struct{}
	once sync.Once
}

// NewSession creates a detached session for a connection. The caller drains
// Outbound until Done is closed.
func NewSession(userID string) *Session {
	return &Session{
		UserID: userID,
		send:   make(chan model.ServerMessage, sessionSendBuffer),
		done:   make(chan struct{}),
	}
}

// Outbound is the stream of frames to write to the connection.
func (s *Session) Outbound() <-chan model.ServerMessage { return s.send }

// Done is closed when the session is evicted or closed.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close marks the session dead. Idempotent.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

// Send queues a frame without blocking. A session that cannot keep up is
// closed rather than allowed to stall the hub.
func (s *Session) Send(msg model.ServerMessage) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- msg:
		return true
	default:
		s.Close()
		return false
	}
}

// SnapshotSource provides the full question list for a topic: Get may serve
// a cached copy, Recompute always reads committed state. Satisfied by
// SnapshotService.
type SnapshotSource interface {
	Get(ctx context.Context, topic string) ([]model.QuestionView, error)
	Recompute(ctx context.Context, topic string) ([]model.QuestionView, error)
}

// Hub is the topic room broadcaster: it tracks which sessions subscribe to
// which topics and pushes freshly recomputed snapshots to all of them after
// every mutation. It is an explicit service constructed once at startup and
// injected into the transport handlers.
type Hub struct {
	snapshots SnapshotSource

	mu     sync.RWMutex
	rooms  map[string]map[*Session]struct{}
	joined map[*Session]map[string]struct{}

	// broadcastMu serializes recompute+fanout per topic, so subscribers of
	// one topic always observe snapshot pushes in commit order.
	broadcastMu sync.Mutex
	topicLocks  map[string]*sync.Mutex
}

func NewHub(snapshots SnapshotSource) *Hub {
	return &Hub{
		snapshots:  snapshots,
		rooms:      make(map[string]map[*Session]struct{}),
		joined:     make(map[*Session]map[string]struct{}),
		topicLocks: make(map[string]*sync.Mutex),
	}
}

// Join subscribes a session to a topic and immediately pushes the current
// snapshot to that session only. A failed snapshot load is reported to the
// joining session as an error event; the subscription still stands, so the
// next broadcast repairs the client's view.
func (h *Hub) Join(ctx context.Context, s *Session, topic string) {
	h.mu.Lock()
	if h.rooms[topic] == nil {
		h.rooms[topic] = make(map[*Session]struct{})
	}
	h.rooms[topic][s] = struct{}{}
	if h.joined[s] == nil {
		h.joined[s] = make(map[string]struct{})
	}
	h.joined[s][topic] = struct{}{}
	h.mu.Unlock()

	// The join push shares the topic's broadcast lock, so a joiner cannot
	// receive its initial snapshot after (and older than) a concurrent
	// broadcast's.
	lock := h.topicLock(topic)
	lock.Lock()
	defer lock.Unlock()

	views, err := h.snapshots.Get(ctx, topic)
	if err != nil {
		log.Printf("hub: snapshot load for join failed (topic=%s): %v", topic, err)
		s.Send(model.NewErrorMessage("Failed to get questions"))
		return
	}
	s.Send(model.ServerMessage{Event: model.EventQuestions, Topic: topic, Questions: views})
}

// Leave removes a session from every room it joined. Called exactly once
// per connection, on disconnect.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	for topic := range h.joined[s] {
		delete(h.rooms[topic], s)
		if len(h.rooms[topic]) == 0 {
			delete(h.rooms, topic)
		}
	}
	delete(h.joined, s)
	h.mu.Unlock()
	s.Close()
}

// Broadcast recomputes the topic snapshot and pushes it to every subscriber.
// If the recompute fails, only the triggering session (may be nil for relay
// broadcasts) is told, and no subscriber receives a partial or stale
// snapshot. Recompute and fanout hold the topic's broadcast lock, so two
// racing mutations cannot deliver their snapshots out of order. The
// recompute bypasses the cache: a broadcast runs after its mutation
// committed, and a cache entry written by a read that started before that
// commit would be missing the very change being announced.
func (h *Hub) Broadcast(ctx context.Context, topic string, trigger *Session) error {
	lock := h.topicLock(topic)
	lock.Lock()
	defer lock.Unlock()

	views, err := h.snapshots.Recompute(ctx, topic)
	if err != nil {
		log.Printf("hub: snapshot recompute failed (topic=%s): %v", topic, err)
		if trigger != nil {
			trigger.Send(model.NewErrorMessage("Failed to get questions"))
		}
		return err
	}

	msg := model.ServerMessage{Event: model.EventQuestions, Topic: topic, Questions: views}
	for _, s := range h.subscribers(topic) {
		s.Send(msg)
	}
	return nil
}

// HasSubscribers reports whether any session is in the topic's room.
func (h *Hub) HasSubscribers(topic string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[topic]) > 0
}

// RoomCount returns the number of topics with at least one subscriber.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// SessionCount returns the number of joined sessions across all rooms.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.joined)
}

func (h *Hub) subscribers(topic string) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*Session, 0, len(h.rooms[topic]))
	for s := range h.rooms[topic] {
		out = append(out, s)
	}
	return out
}

func (h *Hub) topicLock(topic string) *sync.Mutex {
	h.broadcastMu.Lock()
	defer h.broadcastMu.Unlock()
	lock, ok := h.topicLocks[topic]
	if !ok {
		lock = &sync.Mutex{}
		h.topicLocks[topic] = lock
	}
	return lock
}
