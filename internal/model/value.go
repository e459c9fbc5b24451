package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Value is the tagged union of vote payloads. Each question type has exactly
// one concrete Value type; the wire shape is the bare JSON scalar/array the
// web client sends ("Agree", 42, ["a","b"]), so decoding needs the owning
// question's type to disambiguate.
type Value interface {
	Kind() QuestionType
	Equal(other Value) bool
	json.Marshaler
}

// AgreementValue is one of the five fixed agreement options.
type AgreementValue string

// NumberValue is a numerical slider position.
type NumberValue int

// ChoiceValue is a single selected option of a multiple-choice question.
type ChoiceValue string

// SelectionValue is the set of checked options of a checkbox question,
// in the order the client checked them.
type SelectionValue []string

// RankingValue is a permutation of a ranking question's options.
type RankingValue []string

// TextValue is a free-text open-ended response.
type TextValue string

func (v AgreementValue) Kind() QuestionType { return QuestionAgreement }
func (v NumberValue) Kind() QuestionType    { return QuestionNumerical }
func (v ChoiceValue) Kind() QuestionType    { return QuestionMultipleChoice }
func (v SelectionValue) Kind() QuestionType { return QuestionCheckbox }
func (v RankingValue) Kind() QuestionType   { return QuestionRanking }
func (v TextValue) Kind() QuestionType      { return QuestionOpenEnded }

func (v AgreementValue) MarshalJSON() ([]byte, error) { return json.Marshal(string(v)) }
func (v NumberValue) MarshalJSON() ([]byte, error)    { return json.Marshal(int(v)) }
func (v ChoiceValue) MarshalJSON() ([]byte, error)    { return json.Marshal(string(v)) }
func (v SelectionValue) MarshalJSON() ([]byte, error) { return json.Marshal([]string(v)) }
func (v RankingValue) MarshalJSON() ([]byte, error)   { return json.Marshal([]string(v)) }
func (v TextValue) MarshalJSON() ([]byte, error)      { return json.Marshal(string(v)) }

func (v AgreementValue) Equal(other Value) bool {
	o, ok := other.(AgreementValue)
	return ok && o == v
}

func (v NumberValue) Equal(other Value) bool {
	o, ok := other.(NumberValue)
	return ok && o == v
}

func (v ChoiceValue) Equal(other Value) bool {
	o, ok := other.(ChoiceValue)
	return ok && o == v
}

func (v SelectionValue) Equal(other Value) bool {
	o, ok := other.(SelectionValue)
	return ok && slices.Equal([]string(o), []string(v))
}

func (v RankingValue) Equal(other Value) bool {
	o, ok := other.(RankingValue)
	return ok && slices.Equal([]string(o), []string(v))
}

func (v TextValue) Equal(other Value) bool {
	o, ok := other.(TextValue)
	return ok && o == v
}

// DecodeValue parses a raw vote payload as the value shape required by the
// given question type. The switch is exhaustive over QuestionType; adding a
// new type without a case here fails every vote for it, loudly.
func DecodeValue(qt QuestionType, raw json.RawMessage) (Value, error) {
	switch qt {
	case QuestionAgreement:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, Validationf("agreement vote must be a string")
		}
		return AgreementValue(s), nil
	case QuestionNumerical:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, Validationf("numerical vote must be an integer")
		}
		return NumberValue(n), nil
	case QuestionMultipleChoice:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, Validationf("multiple choice vote must be a string")
		}
		return ChoiceValue(s), nil
	case QuestionCheckbox:
		var opts []string
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, Validationf("checkbox vote must be a list of strings")
		}
		return SelectionValue(opts), nil
	case QuestionRanking:
		var opts []string
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, Validationf("ranking vote must be a list of strings")
		}
		return RankingValue(opts), nil
	case QuestionOpenEnded:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, Validationf("open ended vote must be a string")
		}
		return TextValue(s), nil
	default:
		return nil, fmt.Errorf("unknown question type %q", qt)
	}
}

// ValidateValue checks a decoded value against the owning question's domain:
// option membership, numeric range, permutation completeness. Out-of-domain
// values are rejected before any write reaches the ledger.
func ValidateValue(q *Question, v Value) error {
	if v.Kind() != q.Type {
		return Validationf("vote value shape does not match question type %q", q.Type)
	}

	switch val := v.(type) {
	case AgreementValue:
		if !slices.Contains(AgreementOptions, string(val)) {
			return Validationf("%q is not an agreement option", string(val))
		}
	case NumberValue:
		if q.MinValue == nil || q.MaxValue == nil {
			return Validationf("question has no numeric bounds")
		}
		if int(val) < *q.MinValue || int(val) > *q.MaxValue {
			return Validationf("value %d outside range [%d, %d]", int(val), *q.MinValue, *q.MaxValue)
		}
	case ChoiceValue:
		if !slices.Contains(q.Options, string(val)) {
			return Validationf("%q is not one of the question's options", string(val))
		}
	case SelectionValue:
		seen := make(map[string]bool, len(val))
		for _, opt := range val {
			if !slices.Contains(q.Options, opt) {
				return Validationf("%q is not one of the question's options", opt)
			}
			if seen[opt] {
				return Validationf("option %q selected twice", opt)
			}
			seen[opt] = true
		}
	case RankingValue:
		if len(val) != len(q.Options) {
			return Validationf("ranking must order all %d options", len(q.Options))
		}
		sorted := slices.Clone([]string(val))
		want := slices.Clone(q.Options)
		slices.Sort(sorted)
		slices.Sort(want)
		if !slices.Equal(sorted, want) {
			return Validationf("ranking must be a permutation of the question's options")
		}
	case TextValue:
		if strings.TrimSpace(string(val)) == "" {
			return Validationf("response text is empty")
		}
	default:
		return fmt.Errorf("unknown value type %T", v)
	}

	return nil
}
