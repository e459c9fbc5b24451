package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotifyWorker listens for PostgreSQL NOTIFY on the 'topic_changes' channel
// and re-broadcasts to local rooms. Every mutation transaction notifies its
// topic, so when several server instances share one database, each
// instance's subscribers converge on the committed state even when the
// mutation happened elsewhere. Notifications for one topic arriving within
// a window collapse into a single broadcast.
type NotifyWorker struct {
	pool    *pgxpool.Pool
	hub     *Hub
	batchMs time.Duration

	mu      sync.Mutex
	pending map[string]struct{} // topics waiting for a relay broadcast
}

// NewNotifyWorker creates a broadcast relay worker.
func NewNotifyWorker(pool *pgxpool.Pool, hub *Hub) *NotifyWorker {
	return &NotifyWorker{
		pool:    pool,
		hub:     hub,
		batchMs: 250 * time.Millisecond,
		pending: make(map[string]struct{}),
	}
}

// Start begins listening for topic_changes notifications and relaying them.
func (w *NotifyWorker) Start(ctx context.Context) {
	log.Printf("notify-worker: starting (batch window=%s)", w.batchMs)

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("notify-worker: stopping (context cancelled)")
				return
			}
			log.Printf("notify-worker: listen error, reconnecting in 5s: %v", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				log.Println("notify-worker: stopping (context cancelled)")
				return
			}
		}
	}
}

// listenLoop acquires a dedicated connection, LISTENs on topic_changes, and
// collects notified topics into debounce windows.
func (w *NotifyWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, "LISTEN topic_changes")
	if err != nil {
		return err
	}
	log.Println("notify-worker: listening on topic_changes")

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		topic := notification.Payload
		if topic == "" {
			continue
		}

		w.mu.Lock()
		w.pending[topic] = struct{}{}
		w.mu.Unlock()
	}
}

// flushLoop periodically drains the pending set and re-broadcasts.
func (w *NotifyWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batchMs)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// flush drains the pending set and broadcasts each topic that has local
// subscribers. Topics nobody here is watching are dropped; their snapshots
// will be recomputed on the next join.
func (w *NotifyWorker) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	batch := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	relayed := 0
	for topic := range batch {
		if !w.hub.HasSubscribers(topic) {
			continue
		}
		if err := w.hub.Broadcast(ctx, topic, nil); err != nil {
			log.Printf("notify-worker: broadcast error for %s: %v", topic, err)
			continue
		}
		relayed++
	}

	if relayed > 0 {
		log.Printf("notify-worker: batch complete, %d topics re-broadcast (from %d notifications)",
			relayed, len(batch))
	}
}
