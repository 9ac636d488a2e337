package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"learnsphere/internal/config"
	"learnsphere/internal/dashboard"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/output"
	"learnsphere/internal/service"
)

func init() {
	Register(&DashboardCmd{})
}

// DashboardCmd shows every dashboard panel. Without a session it shows
// sample data and makes no requests.
type DashboardCmd struct{}

func (c *DashboardCmd) Name() string      { return "dashboard" }
func (c *DashboardCmd) Aliases() []string { return []string{"home"} }
func (c *DashboardCmd) Synopsis() string  { return "Show the study dashboard" }
func (c *DashboardCmd) Usage() string     { return "learnsphere dashboard [common flags]" }
func (c *DashboardCmd) NeedsAuth() bool   { return false }

func (c *DashboardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DashboardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	v := dashboard.New(svc, svc, newLogger(cfg, errOut)).Load(ctx)

	p := output.NewPrinter(out, cfg.Theme)
	if v.Sample && !cfg.Quiet {
		p.Muted("sample data (run: learnsphere login)")
	}

	p.Header("Streak")
	p.Streak(v.Streak)

	p.Header("Overview")
	for i, item := range v.Overview {
		p.Overview(i+1, item)
	}

	p.Header("Today's schedule")
	for i, s := range v.Schedules {
		p.Schedule(i+1, s)
	}

	p.Header("Pending tasks")
	for i, t := range v.PendingTasks {
		p.Task(i+1, t)
	}

	p.Header("Milestones")
	for i, m := range v.Milestones {
		p.Milestone(i+1, m)
	}

	p.Header("This week")
	p.Week(v.Weekly)
	if v.WeeklyFallback && !v.Sample && !cfg.Quiet {
		p.Muted("activity unavailable, showing sample week")
	}

	if !v.Sample && svc.LoginRequired() {
		return exitcode.AuthError
	}
	// Failed panels keep sample values; the dashboard still renders.
	if len(v.Failures) > 0 && !cfg.Quiet {
		fmt.Fprintf(errOut, "warning: could not load %s\n", strings.Join(v.Failures, ", "))
	}
	return exitcode.Success
}
