// Package summary summarizes notes through the API and falls back to a
// local extractive summary when the API cannot.
package summary

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"learnsphere/internal/service"
)

// MaxPoints is the number of sentences or clauses kept by the local summary.
const MaxPoints = 3

var (
	sentenceEnd = regexp.MustCompile(`[.!?]+(\s+|$)`)
	clauseBreak = regexp.MustCompile(`\s*[,;:]\s*|\s+-\s+`)
)

// Result is a summary and where it came from.
type Result struct {
	Text string
	// Local is set when Text was built on this machine.
	Local bool
	// Err is the remote failure that caused the fallback.
	Err error
}

// Summarizer prefers the remote summary.
type Summarizer struct {
	svc    service.Service
	logger *zap.Logger
}

// New creates a Summarizer. A nil logger discards output.
func New(svc service.Service, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{svc: svc, logger: logger}
}

// Summarize returns the remote summary of notes, or a local one when the
// remote call fails for any reason. Blank notes give an empty result and
// no request.
func (s *Summarizer) Summarize(ctx context.Context, notes string) Result {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return Result{}
	}
	text, err := s.svc.Summarize(ctx, notes)
	if err == nil && strings.TrimSpace(text) != "" {
		return Result{Text: strings.TrimSpace(text)}
	}
	if err == nil {
		err = service.NewError(service.CodeMalformed, "empty summary")
	}
	if service.IsCode(err, service.CodeUnavailable) {
		s.logger.Info("summarization unavailable, using local summary")
	} else {
		s.logger.Warn("summarization failed, using local summary", zap.Error(err))
	}
	return Result{Text: Local(notes), Local: true, Err: err}
}

// Local builds an extractive summary: the first MaxPoints sentences, or for
// a single sentence its first MaxPoints clauses.
func Local(notes string) string {
	sentences := Sentences(notes)
	switch len(sentences) {
	case 0:
		return ""
	case 1:
		clauses := Clauses(sentences[0])
		if len(clauses) > MaxPoints {
			clauses = clauses[:MaxPoints]
		}
		return strings.Join(clauses, "; ")
	}
	if len(sentences) > MaxPoints {
		sentences = sentences[:MaxPoints]
	}
	return strings.Join(sentences, " ")
}

// Sentences splits text after runs of '.', '!' or '?'. Terminators stay
// attached to their sentence.
func Sentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

// Clauses splits a sentence on commas, semicolons, colons and spaced dashes.
func Clauses(sentence string) []string {
	var out []string
	for _, c := range clauseBreak.Split(sentence, -1) {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
