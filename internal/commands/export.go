package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"learnsphere/internal/backend/googletasks"
	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/service"
)

// NewExporter builds the Google Tasks exporter. Tests replace it.
var NewExporter = func(ctx context.Context, cfg *config.Config) (*googletasks.Exporter, error) {
	return googletasks.New(ctx, cfg)
}

func init() {
	Register(&ExportCmd{})
}

// ExportCmd copies today's pending tasks into a Google Tasks list.
type ExportCmd struct {
	list string
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Export today's pending tasks to Google Tasks" }
func (c *ExportCmd) Usage() string     { return "learnsphere export [common flags] [--list <title>]" }
func (c *ExportCmd) NeedsAuth() bool   { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.list, "list", googletasks.DefaultListTitle, "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasGoogleToken() {
		fmt.Fprintln(errOut, "error: Google account not connected (run: learnsphere gconnect)")
		return exitcode.AuthError
	}

	pending, err := svc.PendingTasksToday(ctx)
	if err != nil {
		return report(errOut, err)
	}

	exp, err := NewExporter(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	res, err := exp.Export(ctx, c.list, pending)
	if err != nil {
		return report(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "exported %d, skipped %d\n", res.Created, res.Skipped)
	}
	return exitcode.Success
}
