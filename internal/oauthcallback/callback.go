// Package oauthcallback runs the short-lived loopback server that receives
// browser redirects during login.
package oauthcallback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

const (
	// StartPort is the first port tried.
	StartPort = 8085

	// MaxPortAttempts is the number of consecutive ports tried.
	MaxPortAttempts = 5

	// Path is the callback path.
	Path = "/callback"

	// DefaultTimeout bounds the wait for the browser.
	DefaultTimeout = 5 * time.Minute

	successPage = "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>"
)

// ErrTimeout is returned when the browser never comes back.
var ErrTimeout = errors.New("oauth callback timed out")

// Server waits for a single redirect carrying a query parameter.
type Server struct {
	listener net.Listener
	port     int
	param    string
}

// Listen binds the first free port from StartPort. param is the query
// parameter the redirect must carry ("code" or "token").
func Listen(param string) (*Server, error) {
	for i := 0; i < MaxPortAttempts; i++ {
		port := StartPort + i
		l, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return &Server{listener: l, port: port, param: param}, nil
		}
	}
	return nil, errors.New("could not bind to local port for OAuth callback")
}

// RedirectURL is the URL the browser must be sent back to.
func (s *Server) RedirectURL() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, Path)
}

// Close releases the port.
func (s *Server) Close() error {
	return s.listener.Close()
}

// Wait serves until a redirect carrying the parameter arrives, ctx is done
// or timeout elapses. A redirect without the parameter is an error, and an
// "error" parameter is reported as the cause.
func (s *Server) Wait(ctx context.Context, timeout time.Duration) (string, error) {
	valueCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(Path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		value := q.Get(s.param)
		if value == "" {
			msg := "No " + s.param + " in callback"
			if e := q.Get("error"); e != "" {
				msg = "Login failed: " + e
			}
			http.Error(w, msg, http.StatusBadRequest)
			select {
			case errCh <- errors.New(lower(msg)):
			default:
			}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, successPage)
		select {
		case valueCh <- value:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(s.listener); err != nil && err != http.ErrServerClosed {
			select {
			case errCh <- err:
			default:
			}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	select {
	case v := <-valueCh:
		return v, nil
	case err := <-errCh:
		return "", err
	case <-time.After(timeout):
		return "", ErrTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func lower(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
