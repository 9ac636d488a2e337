package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/service"
	"learnsphere/internal/summary"
)

func init() {
	Register(&SummarizeCmd{})
}

// SummarizeCmd summarizes text, a note, or stdin. When the API cannot, a
// local summary is printed instead.
type SummarizeCmd struct {
	pageFlags
	note int
}

func (c *SummarizeCmd) Name() string      { return "summarize" }
func (c *SummarizeCmd) Aliases() []string { return []string{"summary"} }
func (c *SummarizeCmd) Synopsis() string  { return "Summarize notes" }
func (c *SummarizeCmd) Usage() string {
	return "learnsphere summarize [common flags] [--note <n> [--sort <key>] [--page <n>]] [text...]"
}
func (c *SummarizeCmd) NeedsAuth() bool { return false }

func (c *SummarizeCmd) RegisterFlags(fs *flag.FlagSet) {
	c.pageFlags.register(fs)
	fs.IntVar(&c.note, "note", 0, "")
}

func (c *SummarizeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	var text string
	switch {
	case c.note != 0:
		note, notes, code := c.pick(ctx, cfg, svc, []string{strconv.Itoa(c.note)}, newUI(errOut, false), errOut)
		if notes == nil {
			return code
		}
		text = note.Content
	case len(args) > 0:
		text = strings.Join(args, " ")
	default:
		data, err := io.ReadAll(Stdin)
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to read notes: %v\n", err)
			return exitcode.UserError
		}
		text = string(data)
	}

	res := summary.New(svc, newLogger(cfg, errOut)).Summarize(ctx, text)
	if res.Text == "" {
		fmt.Fprintln(errOut, "error: nothing to summarize")
		return exitcode.UserError
	}
	if res.Local && !cfg.Quiet {
		fmt.Fprintln(errOut, "AI summary unavailable, showing a local summary")
	}
	fmt.Fprintln(out, res.Text)
	return exitcode.Success
}
