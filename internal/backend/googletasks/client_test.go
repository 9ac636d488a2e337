package googletasks_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"learnsphere/internal/backend/googletasks"
	"learnsphere/internal/service"
)

// fakeTasks is a minimal Google Tasks API.
type fakeTasks struct {
	mu    sync.Mutex
	lists []*tasks.TaskList
	items map[string][]*tasks.Task
	fail  int
}

func newFakeTasks(t *testing.T) (*fakeTasks, *googletasks.Exporter) {
	t.Helper()
	f := &fakeTasks{items: make(map[string][]*tasks.Task)}

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			f.mu.Lock()
			status := f.fail
			f.mu.Unlock()
			if status != 0 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": status, "message": "denied"}})
				return
			}
			next.ServeHTTP(w, req)
		})
	})
	r.HandleFunc("/tasks/v1/users/@me/lists", f.listLists).Methods(http.MethodGet)
	r.HandleFunc("/tasks/v1/users/@me/lists", f.insertList).Methods(http.MethodPost)
	r.HandleFunc("/tasks/v1/lists/{list}/tasks", f.listTasks).Methods(http.MethodGet)
	r.HandleFunc("/tasks/v1/lists/{list}/tasks", f.insertTask).Methods(http.MethodPost)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	exp, err := googletasks.NewWithHTTPClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("failed to create exporter: %v", err)
	}
	return f, exp
}

func (f *fakeTasks) listLists(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = json.NewEncoder(w).Encode(&tasks.TaskLists{Items: f.lists})
}

func (f *fakeTasks) insertList(w http.ResponseWriter, r *http.Request) {
	var l tasks.TaskList
	_ = json.NewDecoder(r.Body).Decode(&l)
	f.mu.Lock()
	defer f.mu.Unlock()
	l.Id = "list-" + l.Title
	f.lists = append(f.lists, &l)
	_ = json.NewEncoder(w).Encode(&l)
}

func (f *fakeTasks) listTasks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = json.NewEncoder(w).Encode(&tasks.Tasks{Items: f.items[mux.Vars(r)["list"]]})
}

func (f *fakeTasks) insertTask(w http.ResponseWriter, r *http.Request) {
	var t tasks.Task
	_ = json.NewDecoder(r.Body).Decode(&t)
	f.mu.Lock()
	defer f.mu.Unlock()
	list := mux.Vars(r)["list"]
	t.Id = "task-" + t.Title
	f.items[list] = append(f.items[list], &t)
	_ = json.NewEncoder(w).Encode(&t)
}

func TestEnsureList_CreatesOnce(t *testing.T) {
	f, exp := newFakeTasks(t)
	ctx := context.Background()

	id, err := exp.EnsureList(ctx, "LearnSphere")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, err := exp.EnsureList(ctx, "  learnsphere ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != again {
		t.Errorf("expected same list, got %q and %q", id, again)
	}
	if len(f.lists) != 1 {
		t.Errorf("expected one list, got %d", len(f.lists))
	}
}

func TestExport_SkipsExistingTitles(t *testing.T) {
	f, exp := newFakeTasks(t)
	f.lists = []*tasks.TaskList{{Id: "ls", Title: "LearnSphere"}}
	f.items["ls"] = []*tasks.Task{{Id: "x", Title: "Read chapter 3"}}

	res, err := exp.Export(context.Background(), googletasks.DefaultListTitle, []service.Task{
		{Title: "Read chapter 3"},
		{Title: "Flashcards", DueDate: "2026-10-20"},
		{Title: "flashcards"},
		{Title: "  "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ListID != "ls" || res.Created != 1 || res.Skipped != 3 {
		t.Errorf("unexpected result %+v", res)
	}
	got := f.items["ls"]
	if len(got) != 2 || got[1].Title != "Flashcards" {
		t.Fatalf("unexpected tasks %+v", got)
	}
	if got[1].Due != "2026-10-20T00:00:00Z" || got[1].Status != "needsAction" {
		t.Errorf("unexpected inserted task %+v", got[1])
	}
}

func TestExport_AuthFailure(t *testing.T) {
	f, exp := newFakeTasks(t)
	f.fail = http.StatusUnauthorized

	_, err := exp.Export(context.Background(), "LearnSphere", []service.Task{{Title: "a"}})
	msg, ok := service.ServerMessage(err)
	if !ok || msg != "google token expired or revoked (run: learnsphere gconnect)" {
		t.Errorf("expected token message, got %v", err)
	}
}
