package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"learnsphere/internal/service"
)

// ValidPassword is the only password the fake API accepts.
const ValidPassword = "secret"

// Request is a call recorded by APIServer.
type Request struct {
	Method    string
	Path      string
	Route     string
	Auth      string
	RequestID string
}

type failure struct {
	status  int
	message string
	raw     string
}

// APIServer is an in-memory LearnSphere API served over httptest.
// Protected routes require "Bearer <Token>"; anything else gets 401.
type APIServer struct {
	*httptest.Server

	mu       sync.Mutex
	Token    string
	User     service.User
	summary  string
	requests []Request
	failures map[string]failure

	overview   []service.OverviewItem
	milestones []service.Milestone
	schedules  []service.Schedule
	tasks      []service.Task
	notes      []service.Note
	streak     service.Streak
	weekly     json.RawMessage
	quizzes    map[string]service.Quiz
}

// NewAPIServer starts a fake API that is closed when the test ends.
func NewAPIServer(t *testing.T) *APIServer {
	t.Helper()
	s := &APIServer{
		Token:    "test-token",
		User:     service.User{Name: "Ada", Email: "ada@example.com"},
		failures: make(map[string]failure),
		quizzes:  make(map[string]service.Quiz),
		weekly:   json.RawMessage(`[]`),
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *APIServer) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.record)

	r.HandleFunc("/auth/login", s.login).Methods(http.MethodPost).Name("auth.login")
	r.HandleFunc("/auth/signup", s.signup).Methods(http.MethodPost).Name("auth.signup")

	p := r.NewRoute().Subrouter()
	p.Use(s.requireToken)
	p.HandleFunc("/auth/me", s.me).Methods(http.MethodGet).Name("auth.me")

	p.HandleFunc("/dashboard/overview", s.listOverview).Methods(http.MethodGet).Name("overview.list")
	p.HandleFunc("/dashboard/overview", s.createOverview).Methods(http.MethodPost).Name("overview.create")
	p.HandleFunc("/dashboard/overview/{id}", s.deleteOverview).Methods(http.MethodDelete).Name("overview.delete")

	p.HandleFunc("/dashboard/milestones", s.listMilestones).Methods(http.MethodGet).Name("milestones.list")
	p.HandleFunc("/dashboard/milestones", s.createMilestone).Methods(http.MethodPost).Name("milestones.create")
	p.HandleFunc("/dashboard/milestones/{id}", s.deleteMilestone).Methods(http.MethodDelete).Name("milestones.delete")

	p.HandleFunc("/dashboard/schedules", s.listSchedules).Methods(http.MethodGet).Name("schedules.list")
	p.HandleFunc("/dashboard/schedules", s.createSchedule).Methods(http.MethodPost).Name("schedules.create")
	p.HandleFunc("/dashboard/schedules/{id}", s.updateSchedule).Methods(http.MethodPut).Name("schedules.update")
	p.HandleFunc("/dashboard/schedules/{id}", s.deleteSchedule).Methods(http.MethodDelete).Name("schedules.delete")

	p.HandleFunc("/dashboard/tasks/pending-today", s.pendingToday).Methods(http.MethodGet).Name("tasks.pending")
	p.HandleFunc("/dashboard/tasks/week", s.week).Methods(http.MethodGet).Name("tasks.week")
	p.HandleFunc("/dashboard/tasks", s.listTasks).Methods(http.MethodGet).Name("tasks.list")
	p.HandleFunc("/dashboard/tasks", s.createTask).Methods(http.MethodPost).Name("tasks.create")
	p.HandleFunc("/dashboard/tasks/{id}", s.updateTask).Methods(http.MethodPut).Name("tasks.update")
	p.HandleFunc("/dashboard/tasks/{id}", s.deleteTask).Methods(http.MethodDelete).Name("tasks.delete")

	p.HandleFunc("/dashboard/streak", s.getStreak).Methods(http.MethodGet).Name("streak.get")
	p.HandleFunc("/dashboard/streak", s.getStreak).Methods(http.MethodPost).Name("streak.init")
	p.HandleFunc("/dashboard/streak/update", s.touchStreak).Methods(http.MethodPost).Name("streak.update")

	p.HandleFunc("/notes", s.listNotes).Methods(http.MethodGet).Name("notes.list")
	p.HandleFunc("/notes", s.createNote).Methods(http.MethodPost).Name("notes.create")
	p.HandleFunc("/notes/{id}", s.deleteNote).Methods(http.MethodDelete).Name("notes.delete")
	p.HandleFunc("/notes/{id}/quiz", s.quiz).Methods(http.MethodPost).Name("notes.quiz")

	p.HandleFunc("/ai/summarize", s.summarize).Methods(http.MethodPost).Name("ai.summarize")
	return r
}

// Fail makes the named route answer with status and a {"message"} body.
func (s *APIServer) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

// FailRaw makes the named route answer 200 with a raw, possibly invalid, body.
func (s *APIServer) FailRaw(route, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: http.StatusOK, raw: body}
}

// Requests returns the calls received so far.
func (s *APIServer) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Routes returns the route names received so far, in order.
func (s *APIServer) Routes() []string {
	var names []string
	for _, r := range s.Requests() {
		names = append(names, r.Route)
	}
	return names
}

// SetWeekly sets the raw weekly-activity payload.
func (s *APIServer) SetWeekly(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weekly = json.RawMessage(raw)
}

// SetSummary sets the AI summary. Empty makes the endpoint answer 503.
func (s *APIServer) SetSummary(summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
}

// SetStreak sets the streak counters.
func (s *APIServer) SetStreak(st service.Streak) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streak = st
}

// SetQuiz sets the quiz returned for a note.
func (s *APIServer) SetQuiz(noteID string, q service.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[noteID] = q
}

// AddOverview seeds an overview item and returns its ID.
func (s *APIServer) AddOverview(title, description string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.overview = append(s.overview, service.OverviewItem{ID: id, Title: title, Description: description})
	return id
}

// AddMilestone seeds a milestone and returns its ID.
func (s *APIServer) AddMilestone(title, date string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.milestones = append(s.milestones, service.Milestone{ID: id, Title: title, Date: date})
	return id
}

// AddTask seeds a pending task and returns its ID.
func (s *APIServer) AddTask(title string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.tasks = append(s.tasks, service.Task{ID: id, Title: title, Status: service.TaskPending})
	return id
}

// AddSchedule seeds a schedule and returns its ID.
func (s *APIServer) AddSchedule(sc service.Schedule) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.ID = uuid.NewString()
	s.schedules = append(s.schedules, sc)
	return sc.ID
}

// AddNote seeds a note and returns its ID.
func (s *APIServer) AddNote(title, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.notes = append(s.notes, service.Note{ID: id, Title: title, Content: content})
	return id
}

// Schedules returns the stored schedules.
func (s *APIServer) Schedules() []service.Schedule {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]service.Schedule(nil), s.schedules...)
}

// Tasks returns the stored tasks.
func (s *APIServer) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]service.Task(nil), s.tasks...)
}

func (s *APIServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Route:     name,
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get("X-Request-ID"),
		})
		f, failing := s.failures[name]
		s.mu.Unlock()

		if failing {
			if f.raw != "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(f.status)
				_, _ = w.Write([]byte(f.raw))
				return
			}
			writeJSON(w, f.status, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *APIServer) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		want := "Bearer " + s.Token
		s.mu.Unlock()
		if r.Header.Get("Authorization") != want {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (s *APIServer) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(r, &body) || body.Password != ValidPassword {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, service.AuthResult{Token: s.Token, User: service.User{Name: s.User.Name, Email: body.Email}})
}

func (s *APIServer) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(r, &body) || body.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Email is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusCreated, service.AuthResult{Token: s.Token, User: service.User{Name: body.Name, Email: body.Email}})
}

func (s *APIServer) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]service.User{"user": s.User})
}

func (s *APIServer) listOverview(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]service.OverviewItem{}, s.overview...))
}

func (s *APIServer) createOverview(w http.ResponseWriter, r *http.Request) {
	var item service.OverviewItem
	if !decode(r, &item) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = uuid.NewString()
	s.overview = append(s.overview, item)
	writeJSON(w, http.StatusCreated, item)
}

func (s *APIServer) deleteOverview(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.overview {
		if it.ID == id {
			s.overview = append(s.overview[:i], s.overview[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Overview item not found"})
}

func (s *APIServer) listMilestones(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]service.Milestone{}, s.milestones...))
}

func (s *APIServer) createMilestone(w http.ResponseWriter, r *http.Request) {
	var m service.Milestone
	if !decode(r, &m) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = uuid.NewString()
	s.milestones = append(s.milestones, m)
	writeJSON(w, http.StatusCreated, m)
}

func (s *APIServer) deleteMilestone(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.milestones {
		if m.ID == id {
			s.milestones = append(s.milestones[:i], s.milestones[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Milestone not found"})
}

func (s *APIServer) listSchedules(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]service.Schedule{}, s.schedules...))
}

func (s *APIServer) createSchedule(w http.ResponseWriter, r *http.Request) {
	var sc service.Schedule
	if !decode(r, &sc) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.ID = uuid.NewString()
	s.schedules = append(s.schedules, sc)
	writeJSON(w, http.StatusCreated, sc)
}

func (s *APIServer) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var patch service.Schedule
	if !decode(r, &patch) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sc := range s.schedules {
		if sc.ID == id {
			patch.ID = id
			s.schedules[i] = patch
			writeJSON(w, http.StatusOK, patch)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Schedule not found"})
}

func (s *APIServer) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sc := range s.schedules {
		if sc.ID == id {
			s.schedules = append(s.schedules[:i], s.schedules[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Schedule not found"})
}

func (s *APIServer) pendingToday(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := []service.Task{}
	for _, t := range s.tasks {
		if t.Status != service.TaskCompleted {
			pending = append(pending, t)
		}
	}
	writeJSON(w, http.StatusOK, pending)
}

func (s *APIServer) week(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.weekly)
}

func (s *APIServer) listTasks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, append([]service.Task{}, s.tasks...))
}

func (s *APIServer) createTask(w http.ResponseWriter, r *http.Request) {
	var t service.Task
	if !decode(r, &t) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	if t.Status == "" {
		t.Status = service.TaskPending
	}
	s.tasks = append(s.tasks, t)
	writeJSON(w, http.StatusCreated, t)
}

func (s *APIServer) updateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var patch service.Task
	if !decode(r, &patch) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			if patch.Title != "" {
				t.Title = patch.Title
			}
			if patch.Status != "" {
				t.Status = patch.Status
			}
			s.tasks[i] = t
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func (s *APIServer) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func (s *APIServer) getStreak(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.streak)
}

func (s *APIServer) touchStreak(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streak.CurrentStreak++
	if s.streak.CurrentStreak > s.streak.MaxStreak {
		s.streak.MaxStreak = s.streak.CurrentStreak
	}
	writeJSON(w, http.StatusOK, s.streak)
}

func (s *APIServer) listNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}

	s.mu.Lock()
	notes := append([]service.Note(nil), s.notes...)
	s.mu.Unlock()

	switch q.Get("sort") {
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

	total := (len(notes) + limit - 1) / limit
	start := (page - 1) * limit
	pageNotes := []service.Note{}
	if start < len(notes) {
		end := start + limit
		if end > len(notes) {
			end = len(notes)
		}
		pageNotes = notes[start:end]
	}
	writeJSON(w, http.StatusOK, service.NotesPage{Notes: pageNotes, Page: page, TotalPages: total})
}

func (s *APIServer) createNote(w http.ResponseWriter, r *http.Request) {
	var n service.Note
	if !decode(r, &n) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uuid.NewString()
	s.notes = append(s.notes, n)
	writeJSON(w, http.StatusCreated, n)
}

func (s *APIServer) deleteNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes {
		if n.ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Note not found"})
}

func (s *APIServer) quiz(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Note not found"})
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *APIServer) summarize(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notes string `json:"notes"`
	}
	if !decode(r, &body) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.summary == "" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "AI summarization is not configured"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": s.summary})
}
