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
	Register(&OverviewCmd{})
	Register(&OverviewAddCmd{})
	Register(&OverviewRmCmd{})
}

// OverviewCmd lists the overview cards.
type OverviewCmd struct{}

func (c *OverviewCmd) Name() string      { return "overview" }
func (c *OverviewCmd) Aliases() []string { return nil }
func (c *OverviewCmd) Synopsis() string  { return "List study overview cards" }
func (c *OverviewCmd) Usage() string     { return "learnsphere overview [common flags]" }
func (c *OverviewCmd) NeedsAuth() bool   { return true }

func (c *OverviewCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *OverviewCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	p := panels.NewOverview(svc, newUI(errOut, false), newLogger(cfg, errOut))
	if err := p.Load(ctx); err != nil {
		return panelExit(errOut, err)
	}
	pr := output.NewPrinter(out, cfg.Theme)
	pr.Header("Overview")
	for i, item := range p.Items {
		pr.Overview(i+1, item)
	}
	return exitcode.Success
}

// OverviewAddCmd adds an overview card.
type OverviewAddCmd struct {
	desc string
}

func (c *OverviewAddCmd) Name() string      { return "overview-add" }
func (c *OverviewAddCmd) Aliases() []string { return nil }
func (c *OverviewAddCmd) Synopsis() string  { return "Add a study overview card" }
func (c *OverviewAddCmd) Usage() string {
	return "learnsphere overview-add [common flags] [--desc <text>] <title...>"
}
func (c *OverviewAddCmd) NeedsAuth() bool { return true }

func (c *OverviewAddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.desc, "desc", "", "")
}

func (c *OverviewAddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	p := panels.NewOverview(svc, newUI(errOut, false), newLogger(cfg, errOut))
	created, err := p.Create(ctx, strings.Join(args, " "), c.desc)
	if err != nil {
		return panelExit(errOut, err)
	}
	if !created {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	return ok(out, cfg.Quiet)
}

// OverviewRmCmd deletes an overview card by its position in the listing.
type OverviewRmCmd struct {
	yes bool
}

func (c *OverviewRmCmd) Name() string      { return "overview-rm" }
func (c *OverviewRmCmd) Aliases() []string { return nil }
func (c *OverviewRmCmd) Synopsis() string  { return "Delete a study overview card" }
func (c *OverviewRmCmd) Usage() string     { return "learnsphere overview-rm [common flags] [--yes] <n>" }
func (c *OverviewRmCmd) NeedsAuth() bool   { return true }

func (c *OverviewRmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "")
}

func (c *OverviewRmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if _, err := ParseRef(args); err != nil {
		return usageError(errOut, err)
	}
	p := panels.NewOverview(svc, newUI(errOut, c.yes), newLogger(cfg, errOut))
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
