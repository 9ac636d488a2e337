package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/output"
	"learnsphere/internal/panels"
	"learnsphere/internal/service"
)

func init() {
	Register(&SchedulesCmd{})
	Register(&ScheduleAddCmd{})
	Register(&ScheduleRmCmd{})
	Register(&ScheduleDoneCmd{})
}

// SchedulesCmd lists schedules with their linked tasks.
type SchedulesCmd struct{}

func (c *SchedulesCmd) Name() string      { return "schedules" }
func (c *SchedulesCmd) Aliases() []string { return []string{"schedule"} }
func (c *SchedulesCmd) Synopsis() string  { return "List schedules" }
func (c *SchedulesCmd) Usage() string     { return "learnsphere schedules [common flags]" }
func (c *SchedulesCmd) NeedsAuth() bool   { return true }

func (c *SchedulesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SchedulesCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	p := panels.NewSchedules(svc, newUI(errOut, false), newLogger(cfg, errOut))
	if err := p.Load(ctx); err != nil {
		return panelExit(errOut, err)
	}
	pr := output.NewPrinter(out, cfg.Theme)
	pr.Header("Schedules")
	for i, s := range p.Items {
		pr.Schedule(i+1, s)
	}
	return exitcode.Success
}

// ScheduleAddCmd adds a schedule and optionally a linked task.
type ScheduleAddCmd struct {
	at     string
	detail string
	task   string
}

func (c *ScheduleAddCmd) Name() string      { return "schedule-add" }
func (c *ScheduleAddCmd) Aliases() []string { return nil }
func (c *ScheduleAddCmd) Synopsis() string  { return "Add a schedule, optionally with a task" }
func (c *ScheduleAddCmd) Usage() string {
	return "learnsphere schedule-add [common flags] --time <HH:MM> [--detail <text>] [--task <title>] <title...>"
}
func (c *ScheduleAddCmd) NeedsAuth() bool { return true }

func (c *ScheduleAddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.at, "time", "", "")
	fs.StringVar(&c.detail, "detail", "", "")
	fs.StringVar(&c.task, "task", "", "")
}

func (c *ScheduleAddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	p := panels.NewSchedules(svc, newUI(errOut, false), newLogger(cfg, errOut))
	created, err := p.Create(ctx, strings.Join(args, " "), c.at, c.detail, c.task)
	if err != nil {
		if created && !cfg.Quiet {
			fmt.Fprintln(errOut, "schedule saved without its task")
		}
		return panelExit(errOut, err)
	}
	if !created {
		fmt.Fprintln(errOut, "error: title and --time required")
		return exitcode.UserError
	}
	return ok(out, cfg.Quiet)
}

// ScheduleRmCmd deletes a schedule by its position in the listing.
type ScheduleRmCmd struct {
	yes bool
}

func (c *ScheduleRmCmd) Name() string      { return "schedule-rm" }
func (c *ScheduleRmCmd) Aliases() []string { return nil }
func (c *ScheduleRmCmd) Synopsis() string  { return "Delete a schedule" }
func (c *ScheduleRmCmd) Usage() string     { return "learnsphere schedule-rm [common flags] [--yes] <n>" }
func (c *ScheduleRmCmd) NeedsAuth() bool   { return true }

func (c *ScheduleRmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
}

func (c *ScheduleRmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	p, i, code := loadSchedule(ctx, cfg, svc, args, errOut, c.yes)
	if p == nil {
		return code
	}
	deleted, err := p.Delete(ctx, p.Items[i].ID)
	if err != nil {
		return panelExit(errOut, err)
	}
	if !deleted {
		return exitcode.Success
	}
	return ok(out, cfg.Quiet)
}

// ScheduleDoneCmd completes a schedule's task.
type ScheduleDoneCmd struct{}

func (c *ScheduleDoneCmd) Name() string      { return "schedule-done" }
func (c *ScheduleDoneCmd) Aliases() []string { return []string{"done"} }
func (c *ScheduleDoneCmd) Synopsis() string  { return "Complete a schedule and its task" }
func (c *ScheduleDoneCmd) Usage() string     { return "learnsphere schedule-done [common flags] <n>" }
func (c *ScheduleDoneCmd) NeedsAuth() bool   { return true }

func (c *ScheduleDoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ScheduleDoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	p, i, code := loadSchedule(ctx, cfg, svc, args, errOut, false)
	if p == nil {
		return code
	}
	if _, err := p.Complete(ctx, p.Items[i].ID); err != nil {
		return panelExit(errOut, err)
	}
	return ok(out, cfg.Quiet)
}

// loadSchedule loads the schedules panel and resolves args to an index.
// On failure the panel is nil and code is the exit code.
func loadSchedule(ctx context.Context, cfg *config.Config, svc service.Service, args []string, errOut io.Writer, yes bool) (*panels.Schedules, int, int) {
	if _, err := ParseRef(args); err != nil {
		return nil, 0, usageError(errOut, err)
	}
	p := panels.NewSchedules(svc, newUI(errOut, yes), newLogger(cfg, errOut))
	if err := p.Load(ctx); err != nil {
		return nil, 0, panelExit(errOut, err)
	}
	i, err := resolveRef(args, len(p.Items))
	if err != nil {
		return nil, 0, usageError(errOut, err)
	}
	return p, i, exitcode.Success
}
