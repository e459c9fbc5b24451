package service

import (
	"context"
	"log"
	"strings"

	"github.com/jss367/convora/internal/model"
	"github.com/jss367/convora/internal/repository"
)

type QuestionService struct {
	questions *repository.QuestionRepo
	cache     *CacheService
}

func NewQuestionService(questions *repository.QuestionRepo, cache *CacheService) *QuestionService {
	return &QuestionService{questions: questions, cache: cache}
}

// ValidateSpec rejects a question definition before any write: empty body
// text, a numerical question whose bounds are inverted or missing, an
// option-bearing type with fewer than two options, or parameters supplied
// for a type that doesn't take them.
func ValidateSpec(spec *model.QuestionSpec) error {
	if strings.TrimSpace(spec.Text) == "" {
		return model.Validationf("question text cannot be empty")
	}
	if !spec.Type.Known() {
		return model.Validationf("unknown question type %q", spec.Type)
	}

	if spec.Type == model.QuestionNumerical {
		if spec.MinValue == nil || spec.MaxValue == nil {
			return model.Validationf("numerical questions need minValue and maxValue")
		}
		if *spec.MinValue >= *spec.MaxValue {
			return model.Validationf("minimum value must be less than maximum value")
		}
	} else if spec.MinValue != nil || spec.MaxValue != nil {
		return model.Validationf("only numerical questions take minValue/maxValue")
	}

	if spec.Type.NeedsOptions() {
		if len(spec.Options) < 2 {
			return model.Validationf("please provide at least two options")
		}
		seen := make(map[string]bool, len(spec.Options))
		for _, opt := range spec.Options {
			if strings.TrimSpace(opt) == "" {
				return model.Validationf("options cannot be blank")
			}
			if seen[opt] {
				return model.Validationf("duplicate option %q", opt)
			}
			seen[opt] = true
		}
	} else if len(spec.Options) != 0 {
		return model.Validationf("%s questions do not take options", spec.Type)
	}

	return nil
}

// Create validates and persists a question under the topic, creating the
// discussion lazily. Option order is preserved exactly; it is meaningful
// for ranking questions.
func (s *QuestionService) Create(ctx context.Context, topic string, spec *model.QuestionSpec) (*model.Question, error) {
	spec.Text = strings.TrimSpace(spec.Text)
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}

	q, err := s.questions.Create(ctx, topic, spec)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTopic(ctx, topic); err != nil {
			log.Printf("cache: invalidate topic error: %v", err)
		}
	}

	return q, nil
}
