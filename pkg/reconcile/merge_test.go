package reconcile

import (
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

func TestMergeInsertsNewQuestions(t *testing.T) {
	incoming := []model.QuestionView{question(1, 100), question(2, 200)}

	merged := Merge(nil, incoming)

	if len(merged) != 2 {
		t.Fatalf("len = %d, want 2", len(merged))
	}
	for _, q := range merged {
		if q.Votes == nil {
			t.Errorf("question %d has nil votes", q.ID)
		}
	}
}

func TestMergeOverlaysFieldsByID(t *testing.T) {
	local := []model.QuestionView{question(1, 100)}
	in := question(1, 100)
	in.Text = "updated text"
	in.Votes = []model.VoteView{{ID: 1, UserID: "u1", Value: model.AgreementValue("Agree")}}

	merged := Merge(local, []model.QuestionView{in})

	if len(merged) != 1 {
		t.Fatalf("len = %d, want 1", len(merged))
	}
	if merged[0].Text != "updated text" {
		t.Errorf("incoming fields should win, got %q", merged[0].Text)
	}
	if len(merged[0].Votes) != 1 {
		t.Errorf("votes = %+v, want the incoming vote", merged[0].Votes)
	}
}

func TestMergeEmptyIncomingVotesKeepLocal(t *testing.T) {
	// A stale recompute can push votes=[] for a question the client already
	// has votes for; those local votes must survive.
	local := []model.QuestionView{question(1, 100,
		model.VoteView{ID: 1, UserID: "A", Value: model.AgreementValue("Agree")},
	)}
	incoming := []model.QuestionView{question(1, 100)}

	merged := Merge(local, incoming)

	if len(merged[0].Votes) != 1 || merged[0].Votes[0].UserID != "A" {
		t.Errorf("local votes dropped: %+v", merged[0].Votes)
	}
}

func TestMergeBothEmptyVotesYieldsEmptySlice(t *testing.T) {
	local := []model.QuestionView{question(1, 100)}
	incoming := []model.QuestionView{question(1, 100)}

	merged := Merge(local, incoming)

	if merged[0].Votes == nil {
		t.Error("votes must be an empty slice, not nil")
	}
	if len(merged[0].Votes) != 0 {
		t.Errorf("votes = %+v, want empty", merged[0].Votes)
	}
}

func TestMergeNeverPrunes(t *testing.T) {
	local := []model.QuestionView{question(1, 100), question(2, 200)}
	incoming := []model.QuestionView{question(2, 200)}

	merged := Merge(local, incoming)

	if len(merged) != 2 {
		t.Fatalf("len = %d, want 2 (merge is additive, never pruning)", len(merged))
	}
}

func TestMergeStampsMissingTimestamp(t *testing.T) {
	in := question(1, 0)

	merged := Merge(nil, []model.QuestionView{in})

	if merged[0].Timestamp == 0 {
		t.Error("new question without a timestamp should get a local one")
	}
}

func TestMergePreservesKnownTimestamp(t *testing.T) {
	local := []model.QuestionView{question(1, 12345)}
	incoming := []model.QuestionView{question(1, 0)}

	merged := Merge(local, incoming)

	if merged[0].Timestamp != 12345 {
		t.Errorf("timestamp = %d, want the locally known 12345", merged[0].Timestamp)
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	local := []model.QuestionView{question(1, 100,
		model.VoteView{ID: 1, UserID: "A", Value: model.AgreementValue("Agree")},
	)}
	incoming := []model.QuestionView{question(2, 200)}

	_ = Merge(local, incoming)

	if len(local) != 1 || local[0].ID != 1 {
		t.Error("merge mutated the local slice")
	}
}
