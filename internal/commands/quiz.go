package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/output"
	"learnsphere/internal/panels"
	"learnsphere/internal/service"
)

func init() {
	Register(&QuizCmd{})
}

// QuizCmd generates a quiz from a note, collects answers and grades them.
type QuizCmd struct {
	pageFlags
	answers string
}

func (c *QuizCmd) Name() string      { return "quiz" }
func (c *QuizCmd) Aliases() []string { return nil }
func (c *QuizCmd) Synopsis() string  { return "Take a quiz generated from a note" }
func (c *QuizCmd) Usage() string {
	return "learnsphere quiz [common flags] [--sort <key>] [--page <n>] [--answers <a,b,...>] <note>"
}
func (c *QuizCmd) NeedsAuth() bool { return true }

func (c *QuizCmd) RegisterFlags(fs *flag.FlagSet) {
	c.pageFlags.register(fs)
	fs.StringVar(&c.answers, "answers", "", "")
}

func (c *QuizCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	var preset []int
	if c.answers != "" {
		var err error
		if preset, err = parseAnswers(c.answers); err != nil {
			return usageError(errOut, err)
		}
	}

	ui := newUI(errOut, false)
	note, notes, code := c.pick(ctx, cfg, svc, args, ui, errOut)
	if notes == nil {
		return code
	}

	q := panels.NewQuiz(svc, ui, newLogger(cfg, errOut))
	if err := q.Generate(ctx, note.ID); err != nil {
		return panelExit(errOut, err)
	}
	if len(q.Questions) == 0 {
		fmt.Fprintln(errOut, "error: no questions generated for this note")
		return exitcode.BackendError
	}

	p := output.NewPrinter(out, cfg.Theme)
	p.Header("Quiz: " + note.Title)
	if preset != nil {
		for i, opt := range preset {
			if opt == panels.Unanswered {
				continue
			}
			if err := q.Select(i, opt); err != nil {
				return usageError(errOut, err)
			}
		}
	} else {
		askAll(q, p, ui, errOut)
	}

	g := q.Grade()
	sel := q.Selections()
	for i, question := range q.Questions {
		if sel[i] == question.CorrectAnswer {
			p.Item(i+1, question.Question, "correct")
			continue
		}
		detail := "unanswered"
		if sel[i] != panels.Unanswered {
			detail = "wrong"
		}
		if question.CorrectAnswer >= 0 && question.CorrectAnswer < len(question.Options) {
			detail += ", answer: " + question.Options[question.CorrectAnswer]
		}
		p.Item(i+1, question.Question, detail)
	}
	fmt.Fprintf(out, "score: %d%% (%d/%d)\n", g.Score, g.Correct, g.Total)
	return exitcode.Success
}

// askAll prompts for every question. An empty answer leaves it unanswered.
func askAll(q *panels.Quiz, p *output.Printer, ui *terminalUI, errOut io.Writer) {
	for i, question := range q.Questions {
		p.Line(fmt.Sprintf("%d. %s", i+1, question.Question))
		for j, opt := range question.Options {
			p.Line(fmt.Sprintf("   %d) %s", j+1, opt))
		}
		for {
			answer, err := ui.Ask(fmt.Sprintf("Answer [1-%d]: ", len(question.Options)))
			if answer == "" {
				if err != nil {
					return
				}
				break
			}
			n, convErr := strconv.Atoi(answer)
			if convErr == nil {
				if selErr := q.Select(i, n-1); selErr == nil {
					break
				}
			}
			fmt.Fprintf(errOut, "error: invalid answer: %s\n", answer)
			if err != nil {
				return
			}
		}
	}
}

// parseAnswers parses a comma-separated list of 1-based option numbers into
// 0-based selections. "-" or an empty field leaves a question unanswered.
func parseAnswers(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	out := make([]int, len(fields))
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || f == "-" {
			out[i] = panels.Unanswered
			continue
		}
		if !isAllDigits(f) {
			return nil, fmt.Errorf("invalid answer: %s", f)
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid answer: %s", f)
		}
		out[i] = n - 1
	}
	return out, nil
}
