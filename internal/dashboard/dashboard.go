// Package dashboard loads the dashboard view from the LearnSphere API.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"learnsphere/internal/service"
)

// Step names, in load order.
const (
	StepStreak     = "streak"
	StepMilestones = "milestones"
	StepOverview   = "overview"
	StepSchedules  = "schedules"
	StepPending    = "pending-tasks"
	StepWeekly     = "weekly-activity"
	StepTouch      = "streak-touch"
)

// Days labels the weekly buckets, Monday first.
var Days = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// fallbackCounts is the synthetic week shown when real activity is unavailable.
var fallbackCounts = [7]int{3, 5, 2, 6, 4, 7, 1}

// ViewState is the merged dashboard. Slices that failed to load keep their
// sample values.
type ViewState struct {
	Overview     []service.OverviewItem
	Schedules    []service.Schedule
	Milestones   []service.Milestone
	PendingTasks []service.Task
	Weekly       []service.ActivityBucket
	Streak       service.Streak

	// Sample is set when no session existed and nothing was fetched.
	Sample bool
	// WeeklyFallback is set when Weekly holds the synthetic week.
	WeeklyFallback bool
	// Failures lists the steps that failed, in order.
	Failures []string
}

// Failed reports whether step failed.
func (v ViewState) Failed(step string) bool {
	for _, f := range v.Failures {
		if f == step {
			return true
		}
	}
	return false
}

// Sample returns the dataset shown before anything is fetched.
func Sample() ViewState {
	return ViewState{
		Overview: []service.OverviewItem{
			{Title: "Welcome to LearnSphere", Description: "Log in to see your study overview."},
			{Title: "Take notes", Description: "Summaries and quizzes are generated from your notes."},
		},
		Schedules: []service.Schedule{
			{Title: "Morning review", Time: "09:00", Detail: "Go over yesterday's notes"},
			{Title: "Deep work", Time: "14:00", Detail: "One focus session"},
		},
		Milestones: []service.Milestone{
			{Title: "Finish chapter 1"},
			{Title: "First quiz above 80%"},
		},
		PendingTasks: nil,
		Weekly:       FallbackWeek(),
		Sample:       true,
	}
}

// FallbackWeek returns exactly seven buckets with fixed counts.
func FallbackWeek() []service.ActivityBucket {
	week := make([]service.ActivityBucket, len(Days))
	for i, d := range Days {
		week[i] = service.ActivityBucket{Day: d, Count: fallbackCounts[i]}
	}
	return week
}

// Session reports whether a session token is present.
type Session interface {
	HasSession() bool
}

// Aggregator loads the dashboard one endpoint at a time.
type Aggregator struct {
	svc     service.Service
	session Session
	logger  *zap.Logger
}

// New creates an Aggregator. A nil logger discards output.
func New(svc service.Service, sess Session, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{svc: svc, session: sess, logger: logger}
}

// Load fetches every dashboard slice in order. Each step fails on its own:
// the failure is logged and recorded and loading continues. Once the session
// is lost the remaining steps are skipped.
func (a *Aggregator) Load(ctx context.Context) ViewState {
	state := Sample()
	if !a.session.HasSession() {
		a.logger.Debug("no session, showing sample dashboard")
		return state
	}
	state.Sample = false
	state.WeeklyFallback = true

	var (
		pendingForJoin []service.Task
		joined         bool
	)
	steps := []struct {
		name string
		run  func() error
	}{
		{StepStreak, func() error {
			st, err := a.streak(ctx)
			if err == nil {
				state.Streak = st
			}
			return err
		}},
		{StepMilestones, func() error {
			ms, err := a.svc.ListMilestones(ctx)
			if err == nil {
				state.Milestones = ms
			}
			return err
		}},
		{StepOverview, func() error {
			items, err := a.svc.ListOverview(ctx)
			if err == nil {
				state.Overview = items
			}
			return err
		}},
		{StepSchedules, func() error {
			schedules, err := a.svc.ListSchedules(ctx)
			if err != nil {
				return err
			}
			pending, err := a.svc.PendingTasksToday(ctx)
			if err != nil {
				// Schedules are still shown without task snapshots.
				a.logger.Warn("schedule join skipped", zap.Error(err))
				state.Schedules = schedules
				if lost(err) {
					return err
				}
				return nil
			}
			pendingForJoin, joined = pending, true
			state.Schedules = Join(schedules, pending)
			return nil
		}},
		{StepPending, func() error {
			if joined {
				state.PendingTasks = pendingForJoin
				return nil
			}
			tasks, err := a.svc.PendingTasksToday(ctx)
			if err == nil {
				state.PendingTasks = tasks
			}
			return err
		}},
		{StepWeekly, func() error {
			raw, err := a.svc.WeeklyActivity(ctx)
			if err != nil {
				return err
			}
			week, ok := ParseWeek(raw)
			if !ok {
				a.logger.Info("weekly activity unusable, showing fallback")
				return nil
			}
			state.Weekly = week
			state.WeeklyFallback = false
			return nil
		}},
		{StepTouch, func() error {
			st, err := a.svc.TouchStreak(ctx)
			if err == nil {
				state.Streak = st
			}
			return err
		}},
	}

	for i, step := range steps {
		if err := step.run(); err != nil {
			a.logger.Warn("dashboard step failed", zap.String("step", step.name), zap.Error(err))
			state.Failures = append(state.Failures, step.name)
			if lost(err) {
				for _, rest := range steps[i+1:] {
					state.Failures = append(state.Failures, rest.name)
				}
				break
			}
		}
	}
	return state
}

// streak fetches the counters, initialising them on first use.
func (a *Aggregator) streak(ctx context.Context) (service.Streak, error) {
	st, err := a.svc.GetStreak(ctx)
	var sErr *service.Error
	if errors.As(err, &sErr) && sErr.Code == service.CodeBackend && sErr.Status == http.StatusNotFound {
		return a.svc.InitStreak(ctx)
	}
	return st, err
}

// lost reports whether err means the session is gone.
func lost(err error) bool {
	return service.IsCode(err, service.CodeUnauthorized) || service.IsCode(err, service.CodeMissingSession)
}

// Join attaches a snapshot of the matching pending task to every schedule
// that carries a task ID. Schedules without a match keep a nil Task.
func Join(schedules []service.Schedule, pending []service.Task) []service.Schedule {
	out := make([]service.Schedule, len(schedules))
	for i, s := range schedules {
		s.Task = nil
		if s.TaskID != "" {
			for _, t := range pending {
				if t.ID == s.TaskID {
					snapshot := t
					s.Task = &snapshot
					break
				}
			}
		}
		out[i] = s
	}
	return out
}

// ParseWeek decodes a weekly-activity payload. It reports false when the
// payload is not a non-empty JSON array of buckets.
func ParseWeek(raw json.RawMessage) ([]service.ActivityBucket, bool) {
	var week []service.ActivityBucket
	if err := json.Unmarshal(raw, &week); err != nil || len(week) == 0 {
		return nil, false
	}
	for i := range week {
		if week[i].Day == "" && i < len(Days) {
			week[i].Day = Days[i]
		}
	}
	return week, true
}
