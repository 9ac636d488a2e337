package panels

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"learnsphere/internal/service"
)

// Milestones manages dated study goals.
type Milestones struct {
	panel
	Items []service.Milestone
}

// NewMilestones creates an empty Milestones panel.
func NewMilestones(svc service.Service, ui UI, logger *zap.Logger) *Milestones {
	return &Milestones{panel: newPanel(svc, ui, logger)}
}

// Load replaces Items with the server's list.
func (m *Milestones) Load(ctx context.Context) error {
	items, err := m.svc.ListMilestones(ctx)
	if err != nil {
		return m.fail("load milestones", err)
	}
	m.Items = items
	return nil
}

// Create adds a milestone. The date is optional.
func (m *Milestones) Create(ctx context.Context, title, date string) (bool, error) {
	if !required(&title) {
		return false, nil
	}
	created, err := m.svc.CreateMilestone(ctx, service.Milestone{Title: title, Date: strings.TrimSpace(date)})
	if err != nil {
		return false, m.fail("add milestone", err)
	}
	m.Items = append(m.Items, created)
	return true, nil
}

// Delete removes the milestone with id after confirmation.
func (m *Milestones) Delete(ctx context.Context, id string) (bool, error) {
	i := indexOf(m.Items, func(it service.Milestone) bool { return it.ID == id })
	if i < 0 {
		return false, service.NewError(service.CodeInvalid, "milestone not found")
	}
	if !m.ui.Confirm("Delete milestone " + quote(m.Items[i].Title) + "?") {
		return false, nil
	}
	if err := m.svc.DeleteMilestone(ctx, id); err != nil {
		return false, m.fail("delete milestone", err)
	}
	m.Items = removeAt(m.Items, i)
	return true, nil
}
