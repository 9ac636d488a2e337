// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"learnsphere/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// Every call is recorded by operation name in Calls.
type FakeService struct {
	mu         sync.RWMutex
	calls      []string
	user       service.User
	overview   []service.OverviewItem
	milestones []service.Milestone
	schedules  []service.Schedule
	tasks      []service.Task
	notes      []service.Note
	streak     service.Streak
	quizzes    map[string]service.Quiz
	loggedOut  bool
	lost       bool

	// Weekly is returned by WeeklyActivity.
	Weekly json.RawMessage

	// Summary is returned by Summarize. Empty means "not configured".
	Summary string

	// Errs injects an error for an operation name, e.g. "CreateTask".
	Errs map[string]error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		user:    service.User{Name: "Ada", Email: "ada@example.com"},
		quizzes: make(map[string]service.Quiz),
		Errs:    make(map[string]error),
		Weekly:  json.RawMessage(`[]`),
	}
}

// Calls returns the recorded operation names.
func (f *FakeService) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times op was called.
func (f *FakeService) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

func (f *FakeService) call(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	if err, ok := f.Errs[op]; ok && err != nil {
		if service.IsCode(err, service.CodeUnauthorized) || service.IsCode(err, service.CodeMissingSession) {
			f.lost = true
			f.loggedOut = true
		}
		return err
	}
	return nil
}

// AddOverview seeds an overview item.
func (f *FakeService) AddOverview(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overview = append(f.overview, service.OverviewItem{ID: id, Title: title})
}

// AddMilestone seeds a milestone.
func (f *FakeService) AddMilestone(id, title, date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.milestones = append(f.milestones, service.Milestone{ID: id, Title: title, Date: date})
}

// AddSchedule seeds a schedule.
func (f *FakeService) AddSchedule(s service.Schedule) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schedules = append(f.schedules, s)
}

// AddTask seeds a pending task.
func (f *FakeService) AddTask(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, service.Task{ID: id, Title: title, Status: service.TaskPending})
}

// AddNote seeds a note.
func (f *FakeService) AddNote(id, title, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, service.Note{ID: id, Title: title, Content: content})
}

// SetStreak sets the streak counters.
func (f *FakeService) SetStreak(st service.Streak) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streak = st
}

// SetQuiz sets the quiz generated for a note.
func (f *FakeService) SetQuiz(noteID string, q service.Quiz) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quizzes[noteID] = q
}

// Schedules returns the stored schedules.
func (f *FakeService) Schedules() []service.Schedule {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Schedule(nil), f.schedules...)
}

// Tasks returns the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task(nil), f.tasks...)
}

// Notes returns the stored notes.
func (f *FakeService) Notes() []service.Note {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Note(nil), f.notes...)
}

// SetSession sets whether HasSession reports a stored token.
func (f *FakeService) SetSession(ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = !ok
	if ok {
		f.lost = false
	}
}

func (f *FakeService) HasSession() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return !f.loggedOut
}

// LoginRequired reports whether an injected unauthorized or missing-session
// error has been returned since the last login.
func (f *FakeService) LoginRequired() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lost
}

func (f *FakeService) Logout() error {
	if err := f.call("Logout"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = true
	f.lost = false
	return nil
}

func (f *FakeService) UseToken(token string) error {
	if err := f.call("UseToken"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = strings.TrimSpace(token) == ""
	f.lost = false
	return nil
}

func (f *FakeService) Login(ctx context.Context, email, password string) (service.AuthResult, error) {
	if err := f.call("Login"); err != nil {
		return service.AuthResult{}, err
	}
	if password != ValidPassword {
		return service.AuthResult{}, &service.Error{Code: service.CodeBackend, Status: 401, Message: "Invalid credentials"}
	}
	f.SetSession(true)
	return service.AuthResult{Token: "fake-token", User: service.User{Name: f.user.Name, Email: email}}, nil
}

func (f *FakeService) Signup(ctx context.Context, name, email, password string) (service.AuthResult, error) {
	if err := f.call("Signup"); err != nil {
		return service.AuthResult{}, err
	}
	f.SetSession(true)
	return service.AuthResult{Token: "fake-token", User: service.User{Name: name, Email: email}}, nil
}

func (f *FakeService) GoogleLoginURL(redirect string) string {
	return "http://fake.invalid/auth/google?redirect=" + redirect
}

func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	if err := f.call("Me"); err != nil {
		return service.User{}, err
	}
	return f.user, nil
}

func (f *FakeService) ListOverview(ctx context.Context) ([]service.OverviewItem, error) {
	if err := f.call("ListOverview"); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.OverviewItem(nil), f.overview...), nil
}

func (f *FakeService) CreateOverview(ctx context.Context, item service.OverviewItem) (service.OverviewItem, error) {
	if err := f.call("CreateOverview"); err != nil {
		return service.OverviewItem{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = uuid.NewString()
	f.overview = append(f.overview, item)
	return item, nil
}

func (f *FakeService) DeleteOverview(ctx context.Context, id string) error {
	if err := f.call("DeleteOverview"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, it := range f.overview {
		if it.ID == id {
			f.overview = append(f.overview[:i], f.overview[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

func (f *FakeService) ListMilestones(ctx context.Context) ([]service.Milestone, error) {
	if err := f.call("ListMilestones"); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Milestone(nil), f.milestones...), nil
}

func (f *FakeService) CreateMilestone(ctx context.Context, m service.Milestone) (service.Milestone, error) {
	if err := f.call("CreateMilestone"); err != nil {
		return service.Milestone{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = uuid.NewString()
	f.milestones = append(f.milestones, m)
	return m, nil
}

func (f *FakeService) DeleteMilestone(ctx context.Context, id string) error {
	if err := f.call("DeleteMilestone"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.milestones {
		if m.ID == id {
			f.milestones = append(f.milestones[:i], f.milestones[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

func (f *FakeService) ListSchedules(ctx context.Context) ([]service.Schedule, error) {
	if err := f.call("ListSchedules"); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Schedule(nil), f.schedules...), nil
}

func (f *FakeService) CreateSchedule(ctx context.Context, s service.Schedule) (service.Schedule, error) {
	if err := f.call("CreateSchedule"); err != nil {
		return service.Schedule{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.NewString()
	s.Task = nil
	f.schedules = append(f.schedules, s)
	return s, nil
}

func (f *FakeService) UpdateSchedule(ctx context.Context, s service.Schedule) (service.Schedule, error) {
	if err := f.call("UpdateSchedule"); err != nil {
		return service.Schedule{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.schedules {
		if existing.ID == s.ID {
			s.Task = nil
			f.schedules[i] = s
			return s, nil
		}
	}
	return service.Schedule{}, service.ErrNotFound
}

func (f *FakeService) DeleteSchedule(ctx context.Context, id string) error {
	if err := f.call("DeleteSchedule"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.schedules {
		if s.ID == id {
			f.schedules = append(f.schedules[:i], f.schedules[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	if err := f.call("ListTasks"); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]service.Task(nil), f.tasks...), nil
}

func (f *FakeService) CreateTask(ctx context.Context, t service.Task) (service.Task, error) {
	if err := f.call("CreateTask"); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = uuid.NewString()
	if t.Status == "" {
		t.Status = service.TaskPending
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *FakeService) UpdateTask(ctx context.Context, t service.Task) (service.Task, error) {
	if err := f.call("UpdateTask"); err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.tasks {
		if existing.ID == t.ID {
			if t.Title == "" {
				t.Title = existing.Title
			}
			f.tasks[i] = t
			return t, nil
		}
	}
	return service.Task{}, service.ErrNotFound
}

func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if err := f.call("DeleteTask"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

func (f *FakeService) PendingTasksToday(ctx context.Context) ([]service.Task, error) {
	if err := f.call("PendingTasksToday"); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var pending []service.Task
	for _, t := range f.tasks {
		if t.Status != service.TaskCompleted {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

func (f *FakeService) WeeklyActivity(ctx context.Context) (json.RawMessage, error) {
	if err := f.call("WeeklyActivity"); err != nil {
		return nil, err
	}
	return f.Weekly, nil
}

func (f *FakeService) GetStreak(ctx context.Context) (service.Streak, error) {
	if err := f.call("GetStreak"); err != nil {
		return service.Streak{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.streak, nil
}

func (f *FakeService) InitStreak(ctx context.Context) (service.Streak, error) {
	if err := f.call("InitStreak"); err != nil {
		return service.Streak{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.streak, nil
}

func (f *FakeService) TouchStreak(ctx context.Context) (service.Streak, error) {
	if err := f.call("TouchStreak"); err != nil {
		return service.Streak{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streak.CurrentStreak++
	if f.streak.CurrentStreak > f.streak.MaxStreak {
		f.streak.MaxStreak = f.streak.CurrentStreak
	}
	return f.streak, nil
}

// ListNotes sorts by "title", "oldest" or newest first, then paginates.
func (f *FakeService) ListNotes(ctx context.Context, q service.NotesQuery) (service.NotesPage, error) {
	if err := f.call("ListNotes"); err != nil {
		return service.NotesPage{}, err
	}
	f.mu.RLock()
	notes := append([]service.Note(nil), f.notes...)
	f.mu.RUnlock()

	switch q.Sort {
	case "title":
		sort.SliceStable(notes, func(i, j int) bool {
			return strings.ToLower(notes[i].Title) < strings.ToLower(notes[j].Title)
		})
	case "oldest":
	default:
		for i, j := 0, len(notes)-1; i < j; i, j = i+1, j-1 {
			notes[i], notes[j] = notes[j], notes[i]
		}
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total := (len(notes) + limit - 1) / limit
	start := (page - 1) * limit
	if start >= len(notes) {
		return service.NotesPage{Page: page, TotalPages: total}, nil
	}
	end := start + limit
	if end > len(notes) {
		end = len(notes)
	}
	return service.NotesPage{Notes: notes[start:end], Page: page, TotalPages: total}, nil
}

func (f *FakeService) CreateNote(ctx context.Context, n service.Note) (service.Note, error) {
	if err := f.call("CreateNote"); err != nil {
		return service.Note{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = uuid.NewString()
	f.notes = append(f.notes, n)
	return n, nil
}

func (f *FakeService) DeleteNote(ctx context.Context, id string) error {
	if err := f.call("DeleteNote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notes {
		if n.ID == id {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

func (f *FakeService) GenerateQuiz(ctx context.Context, noteID string) (service.Quiz, error) {
	if err := f.call("GenerateQuiz"); err != nil {
		return service.Quiz{}, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	q, ok := f.quizzes[noteID]
	if !ok {
		return service.Quiz{}, service.ErrNotFound
	}
	return q, nil
}

func (f *FakeService) Summarize(ctx context.Context, notes string) (string, error) {
	if err := f.call("Summarize"); err != nil {
		return "", err
	}
	if f.Summary == "" {
		return "", &service.Error{Code: service.CodeUnavailable, Status: 503, Message: "AI summarization is not configured"}
	}
	return f.Summary, nil
}
