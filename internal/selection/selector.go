package selection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spacesedan/newscard/internal/models"
)

// TextModel is a language model that answers a single prompt with text.
type TextModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Decision pairs the parsed editorial result with the candidate it points to.
type Decision struct {
	Article models.Article
	Result  models.SelectionResult
}

type Selector struct {
	model TextModel
	rule  string
}

// NewSelector builds a Selector. An empty rule falls back to DefaultRelevanceRule.
func NewSelector(model TextModel, rule string) *Selector {
	if rule == "" {
		rule = DefaultRelevanceRule
	}
	return &Selector{model: model, rule: rule}
}

// Select asks the model to choose among candidates. It returns
// ErrNoRelevantArticle for the sentinel reply and an error wrapping
// ErrMalformedReply when the reply cannot be parsed.
func (s *Selector) Select(ctx context.Context, candidates []models.Article) (Decision, error) {
	if len(candidates) == 0 {
		return Decision{}, errors.New("[Selector] no candidates to select from")
	}

	reply, err := s.model.Complete(ctx, BuildPrompt(s.rule, candidates))
	if err != nil {
		return Decision{}, fmt.Errorf("[Selector] model call failed: %w", err)
	}

	parsed := ParseReply(reply, len(candidates))
	switch parsed.Kind {
	case ReplyNone:
		return Decision{}, ErrNoRelevantArticle
	case ReplyParsed:
		chosen := candidates[parsed.Result.ChosenIndex-1]
		slog.Info("[Selector] Article chosen",
			slog.Int("index", parsed.Result.ChosenIndex),
			slog.String("link", chosen.Link),
			slog.String("headline", parsed.Result.Headline))
		return Decision{Article: chosen, Result: parsed.Result}, nil
	default:
		slog.Error("[Selector] Unparsable model reply",
			slog.String("error", parsed.Err.Error()),
			slog.String("raw_reply", reply))
		return Decision{}, fmt.Errorf("[Selector] %w", parsed.Err)
	}
}
