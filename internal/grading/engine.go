package grading

import (
	"context"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
)

// Q is the part of a question grading needs.
type Q struct {
	Type  string
	Marks int
}

// Choice is the stored answer a submission resolved to.
type Choice struct {
	AnswerID string
	Correct  bool
}

// Result is the outcome of grading one response.
type Result struct {
	Awarded int // marks awarded
	Max     int // the question's marks
	Correct bool
}

// Strategy grades a single question type.
type Strategy interface {
	Grade(ctx context.Context, q Q, c Choice) (Result, error)
}

// Grader routes by question type to the matching Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, c Choice) (Result, error)
	Supports(questionType string) bool
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Supports(t string) bool {
	_, ok := g.strategies[t]
	return ok
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, c Choice) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{Max: q.Marks}, apperr.New(apperr.KindUnsupportedType, "no grading strategy for question type %q", q.Type)
	}
	return s.Grade(ctx, q, c)
}

type Option func(*config)

type config struct {
	extra map[string]Strategy
}

// WithStrategy installs or replaces the strategy for a question type.
func WithStrategy(questionType string, s Strategy) Option {
	return func(c *config) { c.extra[questionType] = s }
}

// NewDefaultGrader installs the built-in strategies. short_answer has none
// and is reported as unsupported.
func NewDefaultGrader(opts ...Option) Grader {
	cfg := &config{extra: map[string]Strategy{}}
	for _, o := range opts {
		o(cfg)
	}
	g := &defaultGrader{
		strategies: map[string]Strategy{
			"multiple_choice": choiceStrategy{},
			"true_false":      choiceStrategy{},
		},
	}
	for t, s := range cfg.extra {
		g.strategies[t] = s
	}
	return g
}

// choiceStrategy awards full marks for the correct option and nothing
// otherwise. No partial credit, no negative marking.
type choiceStrategy struct{}

func (choiceStrategy) Grade(_ context.Context, q Q, c Choice) (Result, error) {
	res := Result{Max: q.Marks, Correct: c.Correct}
	if c.Correct {
		res.Awarded = q.Marks
	}
	return res, nil
}
