package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"golang.org/x/oauth2"

	"learnsphere/internal/backend/googletasks"
	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/oauthcallback"
	"learnsphere/internal/service"
)

// Token exchange timeout
const tokenExchangeTimeout = 30 * time.Second

func init() {
	Register(&GConnectCmd{})
}

// GConnectCmd authorizes export to Google Tasks.
type GConnectCmd struct{}

func (c *GConnectCmd) Name() string      { return "gconnect" }
func (c *GConnectCmd) Aliases() []string { return nil }
func (c *GConnectCmd) Synopsis() string  { return "Connect a Google account for task export" }
func (c *GConnectCmd) Usage() string     { return "learnsphere gconnect [common flags]" }
func (c *GConnectCmd) NeedsAuth() bool   { return false }

func (c *GConnectCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *GConnectCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
		fmt.Fprintln(errOut, "To export tasks to Google Tasks, you need OAuth credentials:")
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
		fmt.Fprintln(errOut, "2. Enable the Google Tasks API for your project")
		fmt.Fprintln(errOut, "3. Create an OAuth client ID of type 'Desktop app' and download the JSON file")
		fmt.Fprintf(errOut, "4. Save it as %s/oauth_client.json\n", cfg.Dir)
		fmt.Fprintln(errOut, "")
		fmt.Fprintln(errOut, "Then run 'learnsphere gconnect' again.")
		return exitcode.AuthError
	}

	oauthConfig, err := googletasks.OAuthConfig(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	srv, err := oauthcallback.Listen("code")
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}
	defer srv.Close()
	oauthConfig.RedirectURL = srv.RedirectURL()

	verifier := oauth2.GenerateVerifier()
	authURL := oauthConfig.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)
	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, authURL)

	code, err := srv.Wait(ctx, oauthcallback.DefaultTimeout)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()
	token, err := oauthConfig.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to exchange code for token: %v\n", err)
		return exitcode.AuthError
	}

	if err := googletasks.SaveToken(cfg, token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	return ok(out, cfg.Quiet)
}
