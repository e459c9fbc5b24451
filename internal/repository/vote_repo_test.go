package repository

import (
	"testing"

	"github.com/jss367/convora/internal/model"
)

func TestCastOutcome(t *testing.T) {
	tests := []struct {
		name     string
		qt       model.QuestionType
		existing model.Value
		incoming model.Value
		want     model.VoteResult
	}{
		{
			"first vote creates",
			model.QuestionAgreement,
			nil,
			model.AgreementValue("Agree"),
			model.VoteCreated,
		},
		{
			"identical agreement toggles off",
			model.QuestionAgreement,
			model.AgreementValue("Agree"),
			model.AgreementValue("Agree"),
			model.VoteRetracted,
		},
		{
			"different agreement updates",
			model.QuestionAgreement,
			model.AgreementValue("Agree"),
			model.AgreementValue("Disagree"),
			model.VoteUpdated,
		},
		{
			"identical number toggles off",
			model.QuestionNumerical,
			model.NumberValue(7),
			model.NumberValue(7),
			model.VoteRetracted,
		},
		{
			"different number updates",
			model.QuestionNumerical,
			model.NumberValue(7),
			model.NumberValue(8),
			model.VoteUpdated,
		},
		{
			"identical choice toggles off",
			model.QuestionMultipleChoice,
			model.ChoiceValue("Red"),
			model.ChoiceValue("Red"),
			model.VoteRetracted,
		},
		{
			"identical text toggles off",
			model.QuestionOpenEnded,
			model.TextValue("same words"),
			model.TextValue("same words"),
			model.VoteRetracted,
		},
		{
			"identical checkbox still updates",
			model.QuestionCheckbox,
			model.SelectionValue{"a", "b"},
			model.SelectionValue{"a", "b"},
			model.VoteUpdated,
		},
		{
			"identical ranking still updates",
			model.QuestionRanking,
			model.RankingValue{"x", "y"},
			model.RankingValue{"x", "y"},
			model.VoteUpdated,
		},
		{
			"different ranking updates",
			model.QuestionRanking,
			model.RankingValue{"x", "y"},
			model.RankingValue{"y", "x"},
			model.VoteUpdated,
		},
		{
			"first checkbox vote creates",
			model.QuestionCheckbox,
			nil,
			model.SelectionValue{"a"},
			model.VoteCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CastOutcome(tt.qt, tt.existing, tt.incoming); got != tt.want {
				t.Errorf("CastOutcome = %s, want %s", got, tt.want)
			}
		})
	}
}
