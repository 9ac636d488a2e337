package panels

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"learnsphere/internal/service"
)

// Schedules manages the daily plan and its linked tasks.
type Schedules struct {
	panel
	Items []service.Schedule
}

// NewSchedules creates an empty Schedules panel.
func NewSchedules(svc service.Service, ui UI, logger *zap.Logger) *Schedules {
	return &Schedules{panel: newPanel(svc, ui, logger)}
}

// Load fetches schedules and attaches their linked tasks. Schedules whose
// task is completed are hidden.
func (s *Schedules) Load(ctx context.Context) error {
	schedules, err := s.svc.ListSchedules(ctx)
	if err != nil {
		return s.fail("load schedules", err)
	}
	tasks, err := s.svc.ListTasks(ctx)
	if err != nil {
		return s.fail("load tasks", err)
	}

	byID := make(map[string]service.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	visible := make([]service.Schedule, 0, len(schedules))
	for _, sc := range schedules {
		sc.Task = nil
		if t, ok := byID[sc.TaskID]; ok && sc.TaskID != "" {
			if t.Status == service.TaskCompleted {
				continue
			}
			snapshot := t
			sc.Task = &snapshot
		}
		visible = append(visible, sc)
	}
	s.Items = visible
	return nil
}

// Create adds a schedule and, when taskTitle is set, a linked task.
//
// The three calls are not atomic: once the schedule exists it stays in Items
// even if creating or linking the task fails.
func (s *Schedules) Create(ctx context.Context, title, at, detail, taskTitle string) (bool, error) {
	if !required(&title, &at) {
		return false, nil
	}
	created, err := s.svc.CreateSchedule(ctx, service.Schedule{Title: title, Time: at, Detail: strings.TrimSpace(detail)})
	if err != nil {
		return false, s.fail("add schedule", err)
	}
	s.Items = append(s.Items, created)
	idx := len(s.Items) - 1

	taskTitle = strings.TrimSpace(taskTitle)
	if taskTitle == "" {
		return true, nil
	}

	task, err := s.svc.CreateTask(ctx, service.Task{Title: taskTitle, Status: service.TaskPending})
	if err != nil {
		return true, s.fail("add task for schedule", err)
	}

	link := s.Items[idx]
	link.TaskID = task.ID
	link.Task = nil
	updated, err := s.svc.UpdateSchedule(ctx, link)
	if err != nil {
		return true, s.fail("link task to schedule", err)
	}
	if updated.ID == "" {
		updated = link
	}
	snapshot := task
	updated.Task = &snapshot
	s.Items[idx] = updated
	return true, nil
}

// Complete marks the linked task completed and drops the schedule from
// Items. A schedule without a task is deleted instead.
func (s *Schedules) Complete(ctx context.Context, id string) (bool, error) {
	i := indexOf(s.Items, func(sc service.Schedule) bool { return sc.ID == id })
	if i < 0 {
		return false, service.NewError(service.CodeInvalid, "schedule not found")
	}
	sc := s.Items[i]
	if sc.TaskID == "" {
		if err := s.svc.DeleteSchedule(ctx, id); err != nil {
			return false, s.fail("complete schedule", err)
		}
		s.Items = removeAt(s.Items, i)
		return true, nil
	}

	task := service.Task{ID: sc.TaskID, Title: sc.Title, Status: service.TaskCompleted}
	if sc.Task != nil {
		task.Title = sc.Task.Title
		task.DueDate = sc.Task.DueDate
	}
	if _, err := s.svc.UpdateTask(ctx, task); err != nil {
		return false, s.fail("complete task", err)
	}
	s.Items = removeAt(s.Items, i)
	return true, nil
}

// Delete removes the schedule with id after confirmation. The linked task
// is left alone.
func (s *Schedules) Delete(ctx context.Context, id string) (bool, error) {
	i := indexOf(s.Items, func(sc service.Schedule) bool { return sc.ID == id })
	if i < 0 {
		return false, service.NewError(service.CodeInvalid, "schedule not found")
	}
	if !s.ui.Confirm("Delete schedule " + quote(s.Items[i].Title) + "?") {
		return false, nil
	}
	if err := s.svc.DeleteSchedule(ctx, id); err != nil {
		return false, s.fail("delete schedule", err)
	}
	s.Items = removeAt(s.Items, i)
	return true, nil
}
