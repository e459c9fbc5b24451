package reconcile

import (
	"sync"

	"github.com/jss367/convora/internal/model"
)

// Reconciler keeps a client's question state in two layers: the confirmed
// list (everything the server has pushed, merged additively) and pending
// edits (values the user is still composing, e.g. a slider mid-drag).
// Snapshot arrival never touches pending edits; only a vote acknowledgement
// clears them. This keeps a broadcast triggered by someone else from
// fighting the local user's drag.
type Reconciler struct {
	mu        sync.Mutex
	confirmed []model.QuestionView
	pending   map[int64]model.Value
}

func New() *Reconciler {
	return &Reconciler{
		confirmed: []model.QuestionView{},
		pending:   make(map[int64]model.Value),
	}
}

// ApplySnapshot merges a server push into the confirmed layer and returns
// the merged list.
func (r *Reconciler) ApplySnapshot(incoming []model.QuestionView) []model.QuestionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmed = Merge(r.confirmed, incoming)
	return r.snapshotLocked()
}

// SetPending records an unsubmitted local edit for a question.
func (r *Reconciler) SetPending(questionID int64, value model.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[questionID] = value
}

// Pending returns the unsubmitted edit for a question, if any.
func (r *Reconciler) Pending(questionID int64) (model.Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.pending[questionID]
	return v, ok
}

// Ack clears the pending edit for a question after the server acknowledged
// the vote that carried it.
func (r *Reconciler) Ack(questionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pending, questionID)
}

// Questions returns a copy of the confirmed question list.
func (r *Reconciler) Questions() []model.QuestionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Reconciler) snapshotLocked() []model.QuestionView {
	out := make([]model.QuestionView, len(r.confirmed))
	copy(out, r.confirmed)
	return out
}
