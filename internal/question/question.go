package question

import (
	"strings"

	"github.com/mind-engage/mindengage-quiz/internal/apperr"
)

type Type string

const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeTrueFalse      Type = "true_false"
	TypeShortAnswer    Type = "short_answer"
)

func (t Type) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeTrueFalse, TypeShortAnswer:
		return true
	}
	return false
}

type Answer struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
}

type Question struct {
	ID        string   `json:"id"`
	QuizID    string   `json:"quiz_id"`
	Content   string   `json:"content"`
	Type      Type     `json:"type"`
	Marks     int      `json:"marks"`
	ImageKey  string   `json:"image_key,omitempty"`
	CreatedAt int64    `json:"created_at"`
	Answers   []Answer `json:"answers"`
}

// Public is what students see: no correctness flags.
type Public struct {
	ID       string         `json:"id"`
	QuizID   string         `json:"quiz_id"`
	Content  string         `json:"content"`
	Type     Type           `json:"type"`
	Marks    int            `json:"marks"`
	ImageKey string         `json:"image_key,omitempty"`
	Answers  []PublicAnswer `json:"answers"`
}

type PublicAnswer struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (q Question) Public() Public {
	p := Public{ID: q.ID, QuizID: q.QuizID, Content: q.Content, Type: q.Type, Marks: q.Marks, ImageKey: q.ImageKey}
	p.Answers = make([]PublicAnswer, 0, len(q.Answers))
	for _, a := range q.Answers {
		p.Answers = append(p.Answers, PublicAnswer{ID: a.ID, Text: a.Text})
	}
	return p
}

type AnswerInput struct {
	Text      string
	IsCorrect bool
}

type Input struct {
	Content  string
	Type     Type
	Marks    int
	ImageKey string
	Answers  []AnswerInput
}

// NormalizeAnswer canonicalizes answer text for a question type.
// true_false answers are stored and matched in lower case.
func NormalizeAnswer(t Type, text string) string {
	text = strings.TrimSpace(text)
	if t == TypeTrueFalse {
		return strings.ToLower(text)
	}
	return text
}

// Validate normalizes answers in place and enforces per-type shape.
func (in *Input) Validate() error {
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		return apperr.New(apperr.KindInvalidInput, "question content is required")
	}
	if !in.Type.Valid() {
		return apperr.New(apperr.KindInvalidInput, "unknown question type %q", in.Type)
	}
	if in.Marks <= 0 {
		return apperr.New(apperr.KindInvalidInput, "marks must be a positive integer")
	}

	seen := map[string]bool{}
	correct := 0
	for i := range in.Answers {
		a := &in.Answers[i]
		a.Text = NormalizeAnswer(in.Type, a.Text)
		if a.Text == "" {
			return apperr.New(apperr.KindInvalidInput, "answer %d has empty text", i+1)
		}
		if seen[a.Text] {
			return apperr.New(apperr.KindInvalidInput, "duplicate answer %q", a.Text)
		}
		seen[a.Text] = true
		if a.IsCorrect {
			correct++
		}
	}

	switch in.Type {
	case TypeMultipleChoice:
		if len(in.Answers) < 2 {
			return apperr.New(apperr.KindInvalidInput, "multiple_choice needs at least two answers")
		}
		if correct != 1 {
			return apperr.New(apperr.KindInvalidInput, "multiple_choice needs exactly one correct answer, got %d", correct)
		}
	case TypeTrueFalse:
		if len(in.Answers) != 2 || !seen["true"] || !seen["false"] {
			return apperr.New(apperr.KindInvalidInput, `true_false answers must be exactly "true" and "false"`)
		}
		if correct != 1 {
			return apperr.New(apperr.KindInvalidInput, "true_false needs exactly one correct answer")
		}
	case TypeShortAnswer:
		if len(in.Answers) == 0 {
			return apperr.New(apperr.KindInvalidInput, "short_answer needs at least one accepted answer")
		}
	}
	return nil
}
