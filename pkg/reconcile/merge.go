// Package reconcile merges server-pushed question snapshots into a client's
// local view without discarding in-flight edits. It is transport-agnostic: a
// websocket client feeds every "questions" push through Merge (or a
// Reconciler) and renders the result.
package reconcile

import (
	"time"

	"github.com/jss367/convora/internal/model"
)

// Merge overlays an incoming snapshot onto the local question list.
//
// Incoming fields win over local ones, except votes: an empty incoming vote
// list never clears non-empty local votes, so a stale recompute cannot blank
// out results the user is looking at. Questions the client knows but the
// snapshot omits are kept too; the merge is additive, never pruning.
func Merge(local, incoming []model.QuestionView) []model.QuestionView {
	byID := make(map[int64]int, len(local))
	merged := make([]model.QuestionView, len(local))
	copy(merged, local)
	for i, q := range merged {
		byID[q.ID] = i
	}

	for _, in := range incoming {
		idx, ok := byID[in.ID]
		if !ok {
			if in.Timestamp == 0 {
				// Older servers omit the timestamp; stamp locally so the
				// recency sort has something to work with.
				in.Timestamp = time.Now().UnixMilli()
			}
			if in.Votes == nil {
				in.Votes = []model.VoteView{}
			}
			byID[in.ID] = len(merged)
			merged = append(merged, in)
			continue
		}

		prev := merged[idx]
		next := in
		if len(next.Votes) == 0 {
			next.Votes = prev.Votes
		}
		if next.Votes == nil {
			next.Votes = []model.VoteView{}
		}
		if next.Timestamp == 0 {
			next.Timestamp = prev.Timestamp
		}
		merged[idx] = next
	}

	return merged
}
