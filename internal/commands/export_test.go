package commands_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"learnsphere/internal/backend/googletasks"
	"learnsphere/internal/commands"
	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/testutil"
)

// googleStub records the tasks inserted into a single list.
type googleStub struct {
	mu       sync.Mutex
	inserted []*tasks.Task
}

func (g *googleStub) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/tasks/v1/users/@me/lists", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(&tasks.TaskLists{Items: []*tasks.TaskList{{Id: "ls", Title: googletasks.DefaultListTitle}}})
	}).Methods(http.MethodGet)
	r.HandleFunc("/tasks/v1/lists/{list}/tasks", func(w http.ResponseWriter, req *http.Request) {
		_ = json.NewEncoder(w).Encode(&tasks.Tasks{})
	}).Methods(http.MethodGet)
	r.HandleFunc("/tasks/v1/lists/{list}/tasks", func(w http.ResponseWriter, req *http.Request) {
		var t tasks.Task
		_ = json.NewDecoder(req.Body).Decode(&t)
		g.mu.Lock()
		g.inserted = append(g.inserted, &t)
		g.mu.Unlock()
		_ = json.NewEncoder(w).Encode(&t)
	}).Methods(http.MethodPost)
	return r
}

func TestExportCommand(t *testing.T) {
	stub := &googleStub{}
	srv := httptest.NewServer(stub.router())
	t.Cleanup(srv.Close)

	prev := commands.NewExporter
	commands.NewExporter = func(ctx context.Context, cfg *config.Config) (*googletasks.Exporter, error) {
		return googletasks.NewWithHTTPClient(ctx, srv.Client(), option.WithEndpoint(srv.URL+"/"))
	}
	t.Cleanup(func() { commands.NewExporter = prev })

	cfg := &config.Config{Dir: t.TempDir()}
	if err := os.WriteFile(filepath.Join(cfg.Dir, config.GoogleTokenFile), []byte(`{}`), 0600); err != nil {
		t.Fatalf("failed to write google token: %v", err)
	}

	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Flashcards")
	svc.AddTask("t2", "Read chapter 3")

	stdout, stderr, code := runWithConfig(t, &commands.ExportCmd{}, cfg, svc, nil)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "exported 2, skipped 0\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if len(stub.inserted) != 2 || stub.inserted[0].Title != "Flashcards" {
		t.Errorf("unexpected inserted tasks %+v", stub.inserted)
	}
}
