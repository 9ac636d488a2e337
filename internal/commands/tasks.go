package commands

import (
	"context"
	"flag"
	"io"

	"learnsphere/internal/config"
	"learnsphere/internal/dashboard"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/output"
	"learnsphere/internal/service"
)

func init() {
	Register(&TasksCmd{})
	Register(&StreakCmd{})
}

// TasksCmd lists today's pending tasks, or every task with --all.
type TasksCmd struct {
	week bool
	all  bool
}

func (c *TasksCmd) Name() string      { return "tasks" }
func (c *TasksCmd) Aliases() []string { return nil }
func (c *TasksCmd) Synopsis() string  { return "List today's pending tasks" }
func (c *TasksCmd) Usage() string     { return "learnsphere tasks [common flags] [--all] [--week]" }
func (c *TasksCmd) NeedsAuth() bool   { return true }

func (c *TasksCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.week, "week", false, "")
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *TasksCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	var (
		items []service.Task
		err   error
		title = "Pending today"
	)
	if c.all {
		items, err = svc.ListTasks(ctx)
		title = "Tasks"
	} else {
		items, err = svc.PendingTasksToday(ctx)
	}
	if err != nil {
		return report(errOut, err)
	}

	p := output.NewPrinter(out, cfg.Theme)
	p.Header(title)
	for i, t := range items {
		p.Task(i+1, t)
	}

	if c.week {
		raw, err := svc.WeeklyActivity(ctx)
		if err != nil {
			return report(errOut, err)
		}
		week, valid := dashboard.ParseWeek(raw)
		p.Header("This week")
		if !valid {
			p.Muted("no activity recorded")
			return exitcode.Success
		}
		p.Week(week)
	}
	return exitcode.Success
}

// StreakCmd records activity for today and shows the streak.
type StreakCmd struct{}

func (c *StreakCmd) Name() string      { return "streak" }
func (c *StreakCmd) Aliases() []string { return nil }
func (c *StreakCmd) Synopsis() string  { return "Record today's activity and show the streak" }
func (c *StreakCmd) Usage() string     { return "learnsphere streak [common flags]" }
func (c *StreakCmd) NeedsAuth() bool   { return true }

func (c *StreakCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StreakCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	st, err := svc.TouchStreak(ctx)
	if err != nil {
		return report(errOut, err)
	}
	output.NewPrinter(out, cfg.Theme).Streak(st)
	return exitcode.Success
}
