package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "learnsphere help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, HelpText(DefaultRegistry))
	return exitcode.Success
}

// HelpText lists every command in r with its usage and synopsis.
func HelpText(r *Registry) string {
	var sb strings.Builder
	sb.WriteString("Usage:\n")
	sb.WriteString("  learnsphere                    Show the dashboard\n")
	for _, cmd := range r.All() {
		fmt.Fprintf(&sb, "  %s\n      %s", cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(&sb, " (alias: %s)", strings.Join(aliases, ", "))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(commonFlags)
	return sb.String()
}

const commonFlags = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
