package reconcile

import (
	"sort"

	"github.com/jss367/convora/internal/model"
)

// Order selects how a question list is presented.
type Order string

const (
	MostRecent        Order = "mostRecent"
	MostAgreement     Order = "mostAgreement"
	MostDisagreement  Order = "mostDisagreement"
	MostControversial Order = "mostControversial"
)

// AgreementCount counts votes of Strongly Agree or Agree.
func AgreementCount(q model.QuestionView) int {
	n := 0
	for _, v := range q.Votes {
		if a, ok := v.Value.(model.AgreementValue); ok {
			if a == "Strongly Agree" || a == "Agree" {
				n++
			}
		}
	}
	return n
}

// DisagreementCount counts votes of Strongly Disagree or Disagree.
func DisagreementCount(q model.QuestionView) int {
	n := 0
	for _, v := range q.Votes {
		if a, ok := v.Value.(model.AgreementValue); ok {
			if a == "Strongly Disagree" || a == "Disagree" {
				n++
			}
		}
	}
	return n
}

// ControversyScore is high when opinion is split: the smaller of the two
// camps bounds how contested the question is.
func ControversyScore(q model.QuestionView) int {
	agree := AgreementCount(q)
	disagree := DisagreementCount(q)
	if agree < disagree {
		return agree
	}
	return disagree
}

// SortBy reorders questions in place, descending by the chosen metric.
// The sort is stable, so equal questions keep their snapshot order.
func SortBy(questions []model.QuestionView, order Order) {
	var metric func(model.QuestionView) int64
	switch order {
	case MostAgreement:
		metric = func(q model.QuestionView) int64 { return int64(AgreementCount(q)) }
	case MostDisagreement:
		metric = func(q model.QuestionView) int64 { return int64(DisagreementCount(q)) }
	case MostControversial:
		metric = func(q model.QuestionView) int64 { return int64(ControversyScore(q)) }
	default:
		metric = func(q model.QuestionView) int64 { return q.Timestamp }
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return metric(questions[i]) > metric(questions[j])
	})
}
