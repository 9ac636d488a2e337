package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/oauthcallback"
	"learnsphere/internal/panels"
	"learnsphere/internal/service"
)

func init() {
	Register(&LoginCmd{})
	Register(&SignupCmd{})
	Register(&MeCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	google   bool
	email    string
	password string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in with email and password or Google" }
func (c *LoginCmd) Usage() string {
	return "learnsphere login [common flags] [--google] [--email <email>] [--password <password>]"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.google, "google", false, "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if c.google {
		return googleLogin(ctx, cfg, svc, out, errOut)
	}

	ui := newUI(errOut, false)
	email, password := c.email, c.password
	if email == "" {
		email, _ = ui.Ask("Email: ")
	}
	if password == "" {
		password, _ = ui.Ask("Password: ")
	}
	if email == "" || password == "" {
		fmt.Fprintln(errOut, "error: email and password required")
		return exitcode.UserError
	}

	res, err := svc.Login(ctx, email, password)
	if err != nil {
		return authFailed(errOut, "log in", err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", displayName(res.User))
	}
	return exitcode.Success
}

// googleLogin sends the browser to the API's Google login and waits for the
// redirect carrying the session token.
func googleLogin(ctx context.Context, cfg *config.Config, svc service.Service, out, errOut io.Writer) int {
	srv, err := oauthcallback.Listen("token")
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	defer srv.Close()

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, svc.GoogleLoginURL(srv.RedirectURL()))

	token, err := srv.Wait(ctx, oauthcallback.DefaultTimeout)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	if err := svc.UseToken(token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	return ok(out, cfg.Quiet)
}

// SignupCmd implements the signup command.
type SignupCmd struct {
	name     string
	email    string
	password string
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create an account and log in" }
func (c *SignupCmd) Usage() string {
	return "learnsphere signup [common flags] [--name <name>] [--email <email>] [--password <password>]"
}
func (c *SignupCmd) NeedsAuth() bool { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *SignupCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	ui := newUI(errOut, false)
	name, email, password := c.name, c.email, c.password
	if name == "" {
		name, _ = ui.Ask("Name: ")
	}
	if email == "" {
		email, _ = ui.Ask("Email: ")
	}
	if password == "" {
		password, _ = ui.Ask("Password: ")
	}
	if name == "" || email == "" || password == "" {
		fmt.Fprintln(errOut, "error: name, email and password required")
		return exitcode.UserError
	}

	res, err := svc.Signup(ctx, name, email, password)
	if err != nil {
		return authFailed(errOut, "sign up", err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", displayName(res.User))
	}
	return exitcode.Success
}

// authFailed reports a rejected login or signup.
func authFailed(errOut io.Writer, action string, err error) int {
	fmt.Fprintf(errOut, "error: %s\n", panels.AlertMessage(action, err))
	if _, ok := service.ServerMessage(err); ok {
		return exitcode.AuthError
	}
	return exitcode.BackendError
}

func displayName(u service.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// MeCmd prints the profile of the session owner.
type MeCmd struct{}

func (c *MeCmd) Name() string      { return "me" }
func (c *MeCmd) Aliases() []string { return []string{"whoami"} }
func (c *MeCmd) Synopsis() string  { return "Show the logged-in account" }
func (c *MeCmd) Usage() string     { return "learnsphere me [common flags]" }
func (c *MeCmd) NeedsAuth() bool   { return true }

func (c *MeCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	u, err := svc.Me(ctx)
	if err != nil {
		return report(errOut, err)
	}
	fmt.Fprintf(out, "%s <%s>\n", u.Name, u.Email)
	return exitcode.Success
}
