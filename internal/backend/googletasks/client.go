// Package googletasks mirrors LearnSphere tasks into a Google Tasks list.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"learnsphere/internal/config"
	"learnsphere/internal/service"
)

const (
	// DefaultListTitle is the Google Tasks list exported to.
	DefaultListTitle = "LearnSphere"

	// PageSize is the number of items per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// Scope is the OAuth scope for Google Tasks.
	Scope = tasks.TasksScope
)

// Result reports what an export changed.
type Result struct {
	ListID  string
	Created int
	Skipped int
}

// Exporter writes tasks to Google Tasks.
type Exporter struct {
	svc *tasks.Service
}

// OAuthConfig reads the desktop OAuth client from the config directory.
func OAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}
	return oauthConfig, nil
}

// SaveToken writes the Google token with mode 0600.
func SaveToken(cfg *config.Config, token *oauth2.Token) error {
	if err := cfg.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cfg.GoogleTokenPath(), data, 0600)
}

// New creates an Exporter from oauth_client.json and google_token.json.
func New(ctx context.Context, cfg *config.Config) (*Exporter, error) {
	oauthConfig, err := OAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	tokenData, err := os.ReadFile(cfg.GoogleTokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read google_token.json: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid google_token.json: %w", err)
	}

	// Refreshes the access token as needed.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates an Exporter over httpClient (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Exporter, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Exporter{svc: svc}, nil
}

// EnsureList returns the ID of the list titled title (case-insensitive,
// trimmed), creating it when missing.
func (e *Exporter) EnsureList(ctx context.Context, title string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	want := strings.ToLower(strings.TrimSpace(title))
	var id string
	err := e.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			if id == "" && strings.ToLower(strings.TrimSpace(list.Title)) == want {
				id = list.Id
			}
		}
		return nil
	})
	if err != nil {
		return "", wrapError(err)
	}
	if id != "" {
		return id, nil
	}

	created, err := e.svc.Tasklists.Insert(&tasks.TaskList{Title: strings.TrimSpace(title)}).Context(ctx).Do()
	if err != nil {
		return "", wrapError(err)
	}
	return created.Id, nil
}

// Export inserts every task whose title is not already open in the list.
func (e *Exporter) Export(ctx context.Context, listTitle string, items []service.Task) (Result, error) {
	listID, err := e.EnsureList(ctx, listTitle)
	if err != nil {
		return Result{}, err
	}
	res := Result{ListID: listID}

	existing, err := e.openTitles(ctx, listID)
	if err != nil {
		return res, err
	}

	for _, t := range items {
		key := strings.ToLower(strings.TrimSpace(t.Title))
		if key == "" || existing[key] {
			res.Skipped++
			continue
		}
		if err := e.insert(ctx, listID, t); err != nil {
			return res, err
		}
		existing[key] = true
		res.Created++
	}
	return res, nil
}

func (e *Exporter) openTitles(ctx context.Context, listID string) (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	titles := make(map[string]bool)
	err := e.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(false).
		ShowDeleted(false).
		ShowHidden(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, t := range resp.Items {
				titles[strings.ToLower(strings.TrimSpace(t.Title))] = true
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return titles, nil
}

func (e *Exporter) insert(ctx context.Context, listID string, t service.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	gt := &tasks.Task{Title: strings.TrimSpace(t.Title), Status: "needsAction", Notes: "Exported from LearnSphere"}
	if due, ok := dueDate(t.DueDate); ok {
		gt.Due = due
	}
	if _, err := e.svc.Tasks.Insert(listID, gt).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// dueDate converts an API date to the RFC 3339 timestamp Google expects.
func dueDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339), true
		}
	}
	return "", false
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return service.WrapError(service.CodeNetwork, "request timed out", err)
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &service.Error{Code: service.CodeBackend, Status: gErr.Code, Message: "google token expired or revoked (run: learnsphere gconnect)"}
		case http.StatusNotFound:
			return &service.Error{Code: service.CodeBackend, Status: gErr.Code, Message: "not found"}
		}
		return &service.Error{Code: service.CodeBackend, Status: gErr.Code, Message: gErr.Message, Err: err}
	}
	return service.WrapError(service.CodeNetwork, "google tasks request failed", err)
}
