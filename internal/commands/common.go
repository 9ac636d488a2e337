package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/logger"
	"learnsphere/internal/service"
)

// Stdin is where prompts, confirmations and quiz answers are read from.
var Stdin io.Reader = os.Stdin

// report prints err and returns its exit code. A lost session is not
// printed; the dispatcher shows the login hint once the command returns.
func report(errOut io.Writer, err error) int {
	switch {
	case lostSession(err):
		return exitcode.AuthError
	case service.IsCode(err, service.CodeInvalid):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if msg, ok := service.ServerMessage(err); ok {
		fmt.Fprintf(errOut, "error: %s\n", msg)
		return exitcode.BackendError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}

// panelExit returns the exit code for an error a panel has already alerted.
// Errors panels do not alert are printed here.
func panelExit(errOut io.Writer, err error) int {
	if lostSession(err) || service.IsCode(err, service.CodeInvalid) {
		return report(errOut, err)
	}
	return exitcode.BackendError
}

func lostSession(err error) bool {
	return service.IsCode(err, service.CodeMissingSession) || service.IsCode(err, service.CodeUnauthorized)
}

// usageError prints err and returns the user-error exit code.
func usageError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.UserError
}

// newLogger returns the command logger, writing to errOut.
func newLogger(cfg *config.Config, errOut io.Writer) *zap.Logger {
	return logger.ForCLI(cfg.Debug, errOut)
}

// ok prints "ok" unless quiet.
func ok(out io.Writer, quiet bool) int {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// terminalUI implements panels.UI on the command's streams.
type terminalUI struct {
	in     *bufio.Reader
	errOut io.Writer
	yes    bool
}

func newUI(errOut io.Writer, yes bool) *terminalUI {
	return &terminalUI{in: bufio.NewReader(Stdin), errOut: errOut, yes: yes}
}

// Alert prints msg as an error line.
func (u *terminalUI) Alert(msg string) {
	fmt.Fprintf(u.errOut, "error: %s\n", msg)
}

// Confirm asks on errOut and reads y/yes from Stdin. --yes skips the prompt.
func (u *terminalUI) Confirm(prompt string) bool {
	if u.yes {
		return true
	}
	fmt.Fprintf(u.errOut, "%s [y/N] ", prompt)
	answer, _ := u.readLine()
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// Ask prints prompt and returns the trimmed answer.
func (u *terminalUI) Ask(prompt string) (string, error) {
	fmt.Fprint(u.errOut, prompt)
	return u.readLine()
}

func (u *terminalUI) readLine() (string, error) {
	line, err := u.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return strings.TrimSpace(line), err
	}
	return strings.TrimSpace(line), nil
}
