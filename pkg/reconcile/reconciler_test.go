package reconcile

import (
	"testing"

	"github.com/jss367/convora/internal/model"
)

func TestReconcilerSnapshotAccumulates(t *testing.T) {
	r := New()

	r.ApplySnapshot([]model.QuestionView{question(1, 100)})
	got := r.ApplySnapshot([]model.QuestionView{question(2, 200)})

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
}

func TestReconcilerPendingSurvivesSnapshots(t *testing.T) {
	r := New()
	r.SetPending(1, model.NumberValue(40))

	// Broadcasts triggered by other users must not clobber a mid-drag value.
	r.ApplySnapshot([]model.QuestionView{question(1, 100,
		model.VoteView{ID: 9, UserID: "someone-else", Value: model.AgreementValue("Agree")},
	)})

	v, ok := r.Pending(1)
	if !ok || !v.Equal(model.NumberValue(40)) {
		t.Errorf("pending = (%v, %v), want (40, true)", v, ok)
	}
}

func TestReconcilerAckClearsPending(t *testing.T) {
	r := New()
	r.SetPending(1, model.NumberValue(40))
	r.SetPending(2, model.TextValue("draft"))

	r.Ack(1)

	if _, ok := r.Pending(1); ok {
		t.Error("acked edit should be cleared")
	}
	if _, ok := r.Pending(2); !ok {
		t.Error("unrelated pending edit should survive")
	}
}

func TestReconcilerQuestionsReturnsCopy(t *testing.T) {
	r := New()
	r.ApplySnapshot([]model.QuestionView{question(1, 100)})

	got := r.Questions()
	got[0].Text = "mutated"

	if r.Questions()[0].Text == "mutated" {
		t.Error("caller mutation leaked into confirmed state")
	}
}
