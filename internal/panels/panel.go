// Package panels implements the create, delete and complete actions of the
// dashboard panels and reconciles their local lists with the API.
//
// Local lists change only after the API confirms a change. Empty required
// fields are a silent no-op. Failures are shown through UI.Alert and also
// returned to the caller.
package panels

import (
	"strings"

	"go.uber.org/zap"

	"learnsphere/internal/service"
)

// UI is the interaction surface a panel needs.
type UI interface {
	// Alert shows a blocking message.
	Alert(msg string)
	// Confirm asks a yes/no question.
	Confirm(prompt string) bool
}

type panel struct {
	svc    service.Service
	ui     UI
	logger *zap.Logger
}

func newPanel(svc service.Service, ui UI, logger *zap.Logger) panel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return panel{svc: svc, ui: ui, logger: logger}
}

// fail logs err and alerts the user. A lost session is not alerted; the
// session guard has already redirected.
func (p panel) fail(action string, err error) error {
	p.logger.Warn("panel action failed", zap.String("action", action), zap.Error(err))
	if service.IsCode(err, service.CodeUnauthorized) || service.IsCode(err, service.CodeMissingSession) {
		return err
	}
	p.ui.Alert(AlertMessage(action, err))
	return err
}

// AlertMessage is the server's message when it sent one and a generic
// network error naming the action otherwise.
func AlertMessage(action string, err error) string {
	if msg, ok := service.ServerMessage(err); ok {
		return msg
	}
	return "Network error: could not " + action
}

// required trims every field and reports whether all are non-empty.
func required(fields ...*string) bool {
	ok := true
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
		if *f == "" {
			ok = false
		}
	}
	return ok
}

// removeAt returns s without index i.
func removeAt[T any](s []T, i int) []T {
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
