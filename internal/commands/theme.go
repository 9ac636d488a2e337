package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/service"
)

func init() {
	Register(&ThemeCmd{})
}

// ThemeCmd shows or saves the color theme.
type ThemeCmd struct{}

func (c *ThemeCmd) Name() string      { return "theme" }
func (c *ThemeCmd) Aliases() []string { return nil }
func (c *ThemeCmd) Synopsis() string  { return "Show or set the color theme" }
func (c *ThemeCmd) Usage() string     { return "learnsphere theme [common flags] [dark|light]" }
func (c *ThemeCmd) NeedsAuth() bool   { return false }

func (c *ThemeCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ThemeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(out, cfg.Theme)
		return exitcode.Success
	}
	if len(args) > 1 {
		fmt.Fprintln(errOut, "error: expected one theme")
		return exitcode.UserError
	}
	if err := cfg.SetTheme(args[0]); err != nil {
		return usageError(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
