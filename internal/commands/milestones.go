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
	Register(&MilestonesCmd{})
	Register(&MilestoneAddCmd{})
	Register(&MilestoneRmCmd{})
}

// MilestonesCmd lists milestones.
type MilestonesCmd struct{}

func (c *MilestonesCmd) Name() string      { return "milestones" }
func (c *MilestonesCmd) Aliases() []string { return nil }
func (c *MilestonesCmd) Synopsis() string  { return "List milestones" }
func (c *MilestonesCmd) Usage() string     { return "learnsphere milestones [common flags]" }
func (c *MilestonesCmd) NeedsAuth() bool   { return true }

func (c *MilestonesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MilestonesCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	p := panels.NewMilestones(svc, newUI(errOut, false), newLogger(cfg, errOut))
	if err := p.Load(ctx); err != nil {
		return panelExit(errOut, err)
	}
	pr := output.NewPrinter(out, cfg.Theme)
	pr.Header("Milestones")
	for i, m := range p.Items {
		pr.Milestone(i+1, m)
	}
	return exitcode.Success
}

// MilestoneAddCmd adds a milestone.
type MilestoneAddCmd struct {
	date string
}

func (c *MilestoneAddCmd) Name() string      { return "milestone-add" }
func (c *MilestoneAddCmd) Aliases() []string { return nil }
func (c *MilestoneAddCmd) Synopsis() string  { return "Add a milestone" }
func (c *MilestoneAddCmd) Usage() string {
	return "learnsphere milestone-add [common flags] [--date <YYYY-MM-DD>] <title...>"
}
func (c *MilestoneAddCmd) NeedsAuth() bool { return true }

func (c *MilestoneAddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.date, "date", "", "")
}

func (c *MilestoneAddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	p := panels.NewMilestones(svc, newUI(errOut, false), newLogger(cfg, errOut))
	created, err := p.Create(ctx, strings.Join(args, " "), c.date)
	if err != nil {
		return panelExit(errOut, err)
	}
	if !created {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	return ok(out, cfg.Quiet)
}

// MilestoneRmCmd deletes a milestone by its position in the listing.
type MilestoneRmCmd struct {
	yes bool
}

func (c *MilestoneRmCmd) Name() string      { return "milestone-rm" }
func (c *MilestoneRmCmd) Aliases() []string { return nil }
func (c *MilestoneRmCmd) Synopsis() string  { return "Delete a milestone" }
func (c *MilestoneRmCmd) Usage() string     { return "learnsphere milestone-rm [common flags] [--yes] <n>" }
func (c *MilestoneRmCmd) NeedsAuth() bool   { return true }

func (c *MilestoneRmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
}

func (c *MilestoneRmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if _, err := ParseRef(args); err != nil {
		return usageError(errOut, err)
	}
	p := panels.NewMilestones(svc, newUI(errOut, c.yes), newLogger(cfg, errOut))
	if err := p.Load(ctx); err != nil {
		return panelExit(errOut, err)
	}
	i, err := resolveRef(args, len(p.Items))
	if err != nil {
		return usageError(errOut, err)
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
