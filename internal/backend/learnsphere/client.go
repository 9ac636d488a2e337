// Package learnsphere implements service.Service over the LearnSphere HTTP API.
package learnsphere

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"learnsphere/internal/api"
	"learnsphere/internal/config"
	"learnsphere/internal/logger"
	"learnsphere/internal/service"
	"learnsphere/internal/session"
)

// Client implements service.Service.
type Client struct {
	api *api.Client
}

// New creates a client from config, gating protected calls with the
// token stored in the config directory.
func New(cfg *config.Config, log *zap.Logger, opts ...session.Option) (*Client, *session.Guard) {
	guard := session.NewGuard(session.NewFileStore(cfg.TokenPath()), append([]session.Option{session.WithLogger(log)}, opts...)...)
	c := api.New(cfg.APIURL, guard, api.WithLogger(log), api.WithTimeout(cfg.RequestTimeout))
	return &Client{api: c}, guard
}

// NewWithAPI wraps an existing fetcher.
func NewWithAPI(c *api.Client) *Client {
	return &Client{api: c}
}

// NewForCLI builds the client used by the command dispatcher.
func NewForCLI(cfg *config.Config, errOut io.Writer) *Client {
	client, _ := New(cfg, logger.ForCLI(cfg.Debug, errOut))
	return client
}

func (c *Client) HasSession() bool {
	return c.api.Guard().HasSession()
}

func (c *Client) LoginRequired() bool {
	route, ok := c.api.Guard().Redirected()
	return ok && route == session.LoginRoute
}

func (c *Client) Logout() error {
	return c.api.Guard().Logout()
}

func (c *Client) UseToken(token string) error {
	return c.establish(service.AuthResult{Token: token})
}

func (c *Client) Login(ctx context.Context, email, password string) (service.AuthResult, error) {
	var res service.AuthResult
	body := map[string]string{"email": email, "password": password}
	if err := c.api.DoPublic(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return service.AuthResult{}, err
	}
	if err := c.establish(res); err != nil {
		return service.AuthResult{}, err
	}
	return res, nil
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (service.AuthResult, error) {
	var res service.AuthResult
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.api.DoPublic(ctx, http.MethodPost, "/auth/signup", body, &res); err != nil {
		return service.AuthResult{}, err
	}
	if err := c.establish(res); err != nil {
		return service.AuthResult{}, err
	}
	return res, nil
}

func (c *Client) establish(res service.AuthResult) error {
	if strings.TrimSpace(res.Token) == "" {
		return service.NewError(service.CodeMalformed, "response carried no token")
	}
	return c.api.Guard().Establish(res.Token)
}

func (c *Client) GoogleLoginURL(redirect string) string {
	return c.api.URL("/auth/google?" + url.Values{"redirect": {redirect}}.Encode())
}

func (c *Client) Me(ctx context.Context) (service.User, error) {
	var res struct {
		User service.User `json:"user"`
	}
	if err := c.api.Do(ctx, http.MethodGet, "/auth/me", nil, &res); err != nil {
		return service.User{}, err
	}
	return res.User, nil
}

func (c *Client) ListOverview(ctx context.Context) ([]service.OverviewItem, error) {
	var items []service.OverviewItem
	err := c.api.Do(ctx, http.MethodGet, "/dashboard/overview", nil, &items)
	return items, err
}

func (c *Client) CreateOverview(ctx context.Context, item service.OverviewItem) (service.OverviewItem, error) {
	var created service.OverviewItem
	err := c.api.Do(ctx, http.MethodPost, "/dashboard/overview", item, &created)
	return created, err
}

func (c *Client) DeleteOverview(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodDelete, "/dashboard/overview/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListMilestones(ctx context.Context) ([]service.Milestone, error) {
	var ms []service.Milestone
	err := c.api.Do(ctx, http.MethodGet, "/dashboard/milestones", nil, &ms)
	return ms, err
}

func (c *Client) CreateMilestone(ctx context.Context, m service.Milestone) (service.Milestone, error) {
	var created service.Milestone
	err := c.api.Do(ctx, http.MethodPost, "/dashboard/milestones", m, &created)
	return created, err
}

func (c *Client) DeleteMilestone(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodDelete, "/dashboard/milestones/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListSchedules(ctx context.Context) ([]service.Schedule, error) {
	var ss []service.Schedule
	err := c.api.Do(ctx, http.MethodGet, "/dashboard/schedules", nil, &ss)
	return ss, err
}

func (c *Client) CreateSchedule(ctx context.Context, s service.Schedule) (service.Schedule, error) {
	var created service.Schedule
	err := c.api.Do(ctx, http.MethodPost, "/dashboard/schedules", s, &created)
	return created, err
}

func (c *Client) UpdateSchedule(ctx context.Context, s service.Schedule) (service.Schedule, error) {
	var updated service.Schedule
	err := c.api.Do(ctx, http.MethodPut, "/dashboard/schedules/"+url.PathEscape(s.ID), s, &updated)
	return updated, err
}

func (c *Client) DeleteSchedule(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodDelete, "/dashboard/schedules/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var ts []service.Task
	err := c.api.Do(ctx, http.MethodGet, "/dashboard/tasks", nil, &ts)
	return ts, err
}

func (c *Client) CreateTask(ctx context.Context, t service.Task) (service.Task, error) {
	var created service.Task
	err := c.api.Do(ctx, http.MethodPost, "/dashboard/tasks", t, &created)
	return created, err
}

func (c *Client) UpdateTask(ctx context.Context, t service.Task) (service.Task, error) {
	var updated service.Task
	err := c.api.Do(ctx, http.MethodPut, "/dashboard/tasks/"+url.PathEscape(t.ID), t, &updated)
	return updated, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodDelete, "/dashboard/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) PendingTasksToday(ctx context.Context) ([]service.Task, error) {
	var ts []service.Task
	err := c.api.Do(ctx, http.MethodGet, "/dashboard/tasks/pending-today", nil, &ts)
	return ts, err
}

func (c *Client) WeeklyActivity(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.api.Do(ctx, http.MethodGet, "/dashboard/tasks/week", nil, &raw)
	return raw, err
}

func (c *Client) GetStreak(ctx context.Context) (service.Streak, error) {
	var st service.Streak
	err := c.api.Do(ctx, http.MethodGet, "/dashboard/streak", nil, &st)
	return st, err
}

func (c *Client) InitStreak(ctx context.Context) (service.Streak, error) {
	var st service.Streak
	err := c.api.Do(ctx, http.MethodPost, "/dashboard/streak", struct{}{}, &st)
	return st, err
}

func (c *Client) TouchStreak(ctx context.Context) (service.Streak, error) {
	var st service.Streak
	err := c.api.Do(ctx, http.MethodPost, "/dashboard/streak/update", struct{}{}, &st)
	return st, err
}

func (c *Client) ListNotes(ctx context.Context, q service.NotesQuery) (service.NotesPage, error) {
	params := url.Values{}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	path := "/notes"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var page service.NotesPage
	if err := c.api.Do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return service.NotesPage{}, err
	}
	return page, nil
}

func (c *Client) CreateNote(ctx context.Context, n service.Note) (service.Note, error) {
	var created service.Note
	err := c.api.Do(ctx, http.MethodPost, "/notes", n, &created)
	return created, err
}

func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.api.Do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), nil, nil)
}

func (c *Client) GenerateQuiz(ctx context.Context, noteID string) (service.Quiz, error) {
	var q service.Quiz
	err := c.api.Do(ctx, http.MethodPost, "/notes/"+url.PathEscape(noteID)+"/quiz", struct{}{}, &q)
	return q, err
}

func (c *Client) Summarize(ctx context.Context, notes string) (string, error) {
	var res struct {
		Summary string `json:"summary"`
	}
	if err := c.api.Do(ctx, http.MethodPost, "/ai/summarize", map[string]string{"notes": notes}, &res); err != nil {
		return "", err
	}
	if res.Summary == "" {
		return "", service.NewError(service.CodeMalformed, "empty summary")
	}
	return res.Summary, nil
}
