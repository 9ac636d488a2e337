package session

import (
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// LoginRoute is where the guard sends the user when there is no valid session.
const LoginRoute = "/Login"

// Guard derives auth headers from the stored token and handles invalidation.
type Guard struct {
	store  Store
	logger *zap.Logger

	mu         sync.Mutex
	redirected string
}

// Option configures a Guard.
type Option func(*Guard)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Guard) { g.logger = l }
}

// NewGuard creates a guard over store.
func NewGuard(store Store, opts ...Option) *Guard {
	g := &Guard{store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Guard) token() string {
	tok, err := g.store.Load()
	if err != nil {
		g.logger.Warn("failed to read session token", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(tok)
}

// HasSession reports whether a token is stored.
func (g *Guard) HasSession() bool {
	return g.token() != ""
}

// Header returns the Authorization and Content-Type headers for a protected
// call. Without a token it records a redirect to the login route and returns
// an empty header; callers must treat that as "request aborted".
func (g *Guard) Header() http.Header {
	h := http.Header{}
	access := g.token()
	if access == "" {
		g.sendTo(LoginRoute)
		return h
	}
	h.Set("Authorization", "Bearer "+access)
	h.Set("Content-Type", "application/json")
	return h
}

// Invalidate handles a server-signaled 401: the token is cleared and the
// user is sent to the login route. There is no refresh.
func (g *Guard) Invalidate() {
	if err := g.store.Clear(); err != nil {
		g.logger.Error("failed to clear session token", zap.Error(err))
	}
	g.sendTo(LoginRoute)
}

// Establish stores a fresh token after login or signup.
func (g *Guard) Establish(token string) error {
	g.mu.Lock()
	g.redirected = ""
	g.mu.Unlock()
	return g.store.Save(strings.TrimSpace(token))
}

// Logout destroys the session without redirecting.
func (g *Guard) Logout() error {
	g.mu.Lock()
	g.redirected = ""
	g.mu.Unlock()
	return g.store.Clear()
}

// Redirected returns the last redirect target, if any. The CLI reads it once
// after a command to print the login hint.
func (g *Guard) Redirected() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.redirected, g.redirected != ""
}

func (g *Guard) sendTo(route string) {
	g.mu.Lock()
	g.redirected = route
	g.mu.Unlock()
	g.logger.Debug("redirecting", zap.String("route", route))
}
