package grading

import (
	"context"
	"testing"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
)

func TestChoiceStrategies(t *testing.T) {
	g := NewDefaultGrader()
	ctx := context.Background()
	for _, typ := range []string{"multiple_choice", "true_false"} {
		if !g.Supports(typ) {
			t.Fatalf("%s unsupported", typ)
		}
		r, err := g.Grade(ctx, Q{Type: typ, Marks: 3}, Choice{Correct: true})
		if err != nil || r.Awarded != 3 || r.Max != 3 || !r.Correct {
			t.Fatalf("%s correct: %+v, %v", typ, r, err)
		}
		r, err = g.Grade(ctx, Q{Type: typ, Marks: 3}, Choice{Correct: false})
		if err != nil || r.Awarded != 0 || r.Max != 3 || r.Correct {
			t.Fatalf("%s wrong: %+v, %v", typ, r, err)
		}
	}
}

func TestShortAnswerUnsupported(t *testing.T) {
	g := NewDefaultGrader()
	if g.Supports("short_answer") {
		t.Fatal("short_answer should have no strategy")
	}
	_, err := g.Grade(context.Background(), Q{Type: "short_answer", Marks: 1}, Choice{Correct: true})
	if apperr.KindOf(err) != apperr.KindUnsupportedType {
		t.Fatalf("err = %v", err)
	}
}

type halfStrategy struct{}

func (halfStrategy) Grade(_ context.Context, q Q, _ Choice) (Result, error) {
	return Result{Awarded: q.Marks / 2, Max: q.Marks}, nil
}

func TestWithStrategy(t *testing.T) {
	g := NewDefaultGrader(WithStrategy("short_answer", halfStrategy{}))
	r, err := g.Grade(context.Background(), Q{Type: "short_answer", Marks: 4}, Choice{})
	if err != nil || r.Awarded != 2 {
		t.Fatalf("%+v, %v", r, err)
	}
}

func TestPercentageAndThreshold(t *testing.T) {
	cases := []struct {
		score, max int
		pct        float64
		passed     bool
	}{
		{2, 5, 40, false},
		{5, 5, 100, true},
		{1, 2, 50, true},
		{1, 3, 33.33, false},
		{2, 3, 66.67, true},
		{0, 0, 0, false},
		{3, 0, 0, false},
	}
	for _, tc := range cases {
		p := Percentage(tc.score, tc.max)
		if p != tc.pct {
			t.Errorf("Percentage(%d,%d) = %v, want %v", tc.score, tc.max, p, tc.pct)
		}
		if Passed(p) != tc.passed {
			t.Errorf("Passed(%v) = %v", p, !tc.passed)
		}
	}
	if Passed(49.99) {
		t.Error("49.99 passed")
	}
	if !Passed(50.00) {
		t.Error("50.00 failed")
	}
}
