package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/output"
	"learnsphere/internal/service"
	"learnsphere/internal/timer"
	"learnsphere/internal/ui/focus"
)

// FocusScheduler drives the focus timer. Nil means a real one-second ticker.
var FocusScheduler timer.Scheduler

func init() {
	Register(&FocusCmd{})
}

// FocusCmd runs a focus countdown, full-screen or as plain lines.
type FocusCmd struct {
	minutes int
	plain   bool
}

func (c *FocusCmd) Name() string      { return "focus" }
func (c *FocusCmd) Aliases() []string { return []string{"timer"} }
func (c *FocusCmd) Synopsis() string  { return "Run a focus timer" }
func (c *FocusCmd) Usage() string {
	return "learnsphere focus [common flags] [--minutes <n>] [--plain]"
}
func (c *FocusCmd) NeedsAuth() bool { return false }

func (c *FocusCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.minutes, "minutes", 0, "")
	fs.BoolVar(&c.plain, "plain", false, "")
}

func (c *FocusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	minutes := c.minutes
	if minutes == 0 {
		minutes = cfg.FocusMinutes
	}
	t := timer.New(FocusScheduler)

	if c.plain {
		return runPlain(ctx, t, minutes, output.NewPrinter(out, cfg.Theme), cfg.Quiet)
	}

	final, err := focus.Run(ctx, t, minutes, cfg.Theme, Stdin, out)
	// A cancelled context kills the program and counts as a stop.
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if final.State != timer.StateComplete && !cfg.Quiet {
		fmt.Fprintf(out, "stopped at %s\n", timer.Format(final.RemainingSeconds))
	}
	return exitcode.Success
}

// runPlain prints the countdown once a minute until it completes or ctx is
// cancelled.
func runPlain(ctx context.Context, t *timer.Timer, minutes int, p *output.Printer, quiet bool) int {
	done := make(chan struct{})
	var once sync.Once
	var mu sync.Mutex

	t.OnTick(func(s timer.Snapshot) {
		if quiet || s.RemainingSeconds%60 != 0 || s.RemainingSeconds == 0 {
			return
		}
		mu.Lock()
		p.Timer(s)
		mu.Unlock()
	})
	t.OnComplete(func(s timer.Snapshot) {
		once.Do(func() { close(done) })
	})

	start := t.Start(minutes)
	if !quiet {
		mu.Lock()
		p.Timer(start)
		mu.Unlock()
	}

	select {
	case <-done:
		mu.Lock()
		defer mu.Unlock()
		p.Line("focus session complete")
		return exitcode.Success
	case <-ctx.Done():
		t.Close()
		mu.Lock()
		defer mu.Unlock()
		p.Line("stopped at " + timer.Format(t.Snapshot().RemainingSeconds))
		return exitcode.Success
	}
}
