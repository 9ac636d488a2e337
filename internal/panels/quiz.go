package panels

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"learnsphere/internal/service"
)

// Unanswered marks a question with no selection.
const Unanswered = -1

// Grade is the outcome of a graded quiz.
type Grade struct {
	Correct int
	Total   int
	Score   int
}

// Quiz holds a generated quiz and the user's selections.
type Quiz struct {
	panel
	NoteID     string
	Questions  []service.Question
	selections []int
}

// NewQuiz creates an empty Quiz panel.
func NewQuiz(svc service.Service, ui UI, logger *zap.Logger) *Quiz {
	return &Quiz{panel: newPanel(svc, ui, logger)}
}

// Generate asks the API for a quiz on noteID and clears all selections.
func (q *Quiz) Generate(ctx context.Context, noteID string) error {
	quiz, err := q.svc.GenerateQuiz(ctx, noteID)
	if err != nil {
		return q.fail("generate quiz", err)
	}
	q.NoteID = noteID
	q.Questions = quiz.Questions
	q.selections = make([]int, len(quiz.Questions))
	for i := range q.selections {
		q.selections[i] = Unanswered
	}
	return nil
}

// Select records option as the answer to question.
func (q *Quiz) Select(question, option int) error {
	if question < 0 || question >= len(q.Questions) {
		return service.NewError(service.CodeInvalid, fmt.Sprintf("no question %d", question+1))
	}
	if option < 0 || option >= len(q.Questions[question].Options) {
		return service.NewError(service.CodeInvalid, fmt.Sprintf("question %d has no option %d", question+1, option+1))
	}
	q.selections[question] = option
	return nil
}

// Selections returns the selected option per question, or Unanswered.
func (q *Quiz) Selections() []int {
	return append([]int(nil), q.selections...)
}

// Grade scores the current selections.
func (q *Quiz) Grade() Grade {
	return Score(q.Questions, q.selections)
}

// Score counts the selections that equal the declared correct answer.
// Score is round(100 * correct / total) and 0 for an empty quiz.
func Score(questions []service.Question, selections []int) Grade {
	g := Grade{Total: len(questions)}
	for i, question := range questions {
		if i < len(selections) && selections[i] == question.CorrectAnswer {
			g.Correct++
		}
	}
	if g.Total > 0 {
		g.Score = int(math.Round(100 * float64(g.Correct) / float64(g.Total)))
	}
	return g
}
