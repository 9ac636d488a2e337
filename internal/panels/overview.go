package panels

import (
	"context"

	"go.uber.org/zap"

	"learnsphere/internal/service"
)

// Overview manages the study overview cards.
type Overview struct {
	panel
	Items []service.OverviewItem
}

// NewOverview creates an empty Overview panel.
func NewOverview(svc service.Service, ui UI, logger *zap.Logger) *Overview {
	return &Overview{panel: newPanel(svc, ui, logger)}
}

// Load replaces Items with the server's list.
func (o *Overview) Load(ctx context.Context) error {
	items, err := o.svc.ListOverview(ctx)
	if err != nil {
		return o.fail("load overview", err)
	}
	o.Items = items
	return nil
}

// Create adds a card. It reports false without a request when title is blank.
func (o *Overview) Create(ctx context.Context, title, description string) (bool, error) {
	if !required(&title) {
		return false, nil
	}
	created, err := o.svc.CreateOverview(ctx, service.OverviewItem{Title: title, Description: description})
	if err != nil {
		return false, o.fail("add overview item", err)
	}
	o.Items = append(o.Items, created)
	return true, nil
}

// Delete removes the card with id after confirmation.
func (o *Overview) Delete(ctx context.Context, id string) (bool, error) {
	i := indexOf(o.Items, func(it service.OverviewItem) bool { return it.ID == id })
	if i < 0 {
		return false, service.NewError(service.CodeInvalid, "overview item not found")
	}
	if !o.ui.Confirm("Delete overview item " + quote(o.Items[i].Title) + "?") {
		return false, nil
	}
	if err := o.svc.DeleteOverview(ctx, id); err != nil {
		return false, o.fail("delete overview item", err)
	}
	o.Items = removeAt(o.Items, i)
	return true, nil
}

func indexOf[T any](s []T, match func(T) bool) int {
	for i, v := range s {
		if match(v) {
			return i
		}
	}
	return -1
}

func quote(s string) string {
	return "\"" + s + "\""
}
