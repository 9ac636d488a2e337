package learnsphere_test

import (
	"context"
	"strings"
	"testing"

	"learnsphere/internal/api"
	"learnsphere/internal/backend/learnsphere"
	"learnsphere/internal/service"
	"learnsphere/internal/session"
	"learnsphere/internal/testutil"
)

func newClient(t *testing.T, srv *testutil.APIServer, token string) (*learnsphere.Client, *session.Guard) {
	t.Helper()
	guard := session.NewGuard(session.NewMemoryStore(token))
	return learnsphere.NewWithAPI(api.New(srv.URL, guard)), guard
}

func TestLogin_EstablishesSession(t *testing.T) {
	srv := testutil.NewAPIServer(t)
	client, guard := newClient(t, srv, "")

	res, err := client.Login(context.Background(), "ada@example.com", testutil.ValidPassword)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.User.Email != "ada@example.com" {
		t.Errorf("unexpected user %+v", res.User)
	}
	if got := guard.Header().Get("Authorization"); got != "Bearer "+srv.Token {
		t.Errorf("expected stored token, got %q", got)
	}

	user, err := client.Me(context.Background())
	if err != nil {
		t.Fatalf("me failed: %v", err)
	}
	if user.Name != "Ada" {
		t.Errorf("expected Ada, got %q", user.Name)
	}
}

func TestLogin_BadPassword(t *testing.T) {
	srv := testutil.NewAPIServer(t)
	client, guard := newClient(t, srv, "")

	_, err := client.Login(context.Background(), "ada@example.com", "nope")
	if err == nil {
		t.Fatal("expected error")
	}
	if guard.HasSession() {
		t.Error("failed login must not store a session")
	}
}

func TestSignup(t *testing.T) {
	srv := testutil.NewAPIServer(t)
	client, guard := newClient(t, srv, "")

	res, err := client.Signup(context.Background(), "Grace", "grace@example.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.User.Name != "Grace" || !guard.HasSession() {
		t.Errorf("expected session for Grace, got %+v", res)
	}
}

func TestGoogleLoginURL(t *testing.T) {
	srv := testutil.NewAPIServer(t)
	client, _ := newClient(t, srv, "")

	got := client.GoogleLoginURL("http://localhost:8085/callback")
	want := srv.URL + "/auth/google?redirect=http%3A%2F%2Flocalhost%3A8085%2Fcallback"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSchedulesAndTasks(t *testing.T) {
	srv := testutil.NewAPIServer(t)
	client, _ := newClient(t, srv, srv.Token)
	ctx := context.Background()

	sc, err := client.CreateSchedule(ctx, service.Schedule{Title: "Read", Time: "09:00"})
	if err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	if sc.ID == "" {
		t.Fatal("expected server-assigned id")
	}

	task, err := client.CreateTask(ctx, service.Task{Title: "Read chapter 3"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	sc.TaskID = task.ID
	if _, err := client.UpdateSchedule(ctx, sc); err != nil {
		t.Fatalf("update schedule: %v", err)
	}

	list, err := client.ListSchedules(ctx)
	if err != nil {
		t.Fatalf("list schedules: %v", err)
	}
	if len(list) != 1 || list[0].TaskID != task.ID {
		t.Errorf("expected linked schedule, got %+v", list)
	}

	task.Status = service.TaskCompleted
	if _, err := client.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update task: %v", err)
	}
	pending, err := client.PendingTasksToday(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending tasks, got %+v", pending)
	}

	if err := client.DeleteSchedule(ctx, sc.ID); err != nil {
		t.Fatalf("delete schedule: %v", err)
	}
	if len(srv.Schedules()) != 0 {
		t.Error("schedule should be deleted")
	}
}

func TestListNotes_QueryParameters(t *testing.T) {
	srv := testutil.NewAPIServer(t)
	for _, title := range []string{"c", "a", "b"} {
		srv.AddNote(title, "content "+title)
	}
	client, _ := newClient(t, srv, srv.Token)

	page, err := client.ListNotes(context.Background(), service.NotesQuery{Sort: "title", Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Notes) != 2 || page.Notes[0].Title != "a" || page.Notes[1].Title != "b" {
		t.Errorf("unexpected page %+v", page.Notes)
	}
	if page.TotalPages != 2 {
		t.Errorf("expected 2 pages, got %d", page.TotalPages)
	}

	reqs := srv.Requests()
	if last := reqs[len(reqs)-1]; last.Route != "notes.list" {
		t.Errorf("unexpected route %q", last.Route)
	}
}

func TestStreak(t *testing.T) {
	srv := testutil.NewAPIServer(t)
	srv.SetStreak(service.Streak{CurrentStreak: 2, MaxStreak: 2})
	client, _ := newClient(t, srv, srv.Token)

	st, err := client.TouchStreak(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.CurrentStreak != 3 || st.MaxStreak != 3 {
		t.Errorf("unexpected streak %+v", st)
	}
}

func TestGenerateQuiz(t *testing.T) {
	srv := testutil.NewAPIServer(t)
	id := srv.AddNote("Cells", "Mitochondria")
	srv.SetQuiz(id, service.Quiz{Questions: []service.Question{
		{Question: "Powerhouse?", Options: []string{"Nucleus", "Mitochondria"}, CorrectAnswer: 1},
	}})
	client, _ := newClient(t, srv, srv.Token)

	q, err := client.GenerateQuiz(context.Background(), id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(q.Questions) != 1 || q.Questions[0].CorrectAnswer != 1 {
		t.Errorf("unexpected quiz %+v", q)
	}
}

func TestSummarize_Unavailable(t *testing.T) {
	srv := testutil.NewAPIServer(t)
	client, _ := newClient(t, srv, srv.Token)

	_, err := client.Summarize(context.Background(), "Some notes.")
	if !service.IsCode(err, service.CodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}

	srv.SetSummary("Short.")
	got, err := client.Summarize(context.Background(), "Some notes.")
	if err != nil || got != "Short." {
		t.Errorf("expected summary, got %q %v", got, err)
	}
}

func TestDeleteOverview_NotFound(t *testing.T) {
	srv := testutil.NewAPIServer(t)
	client, _ := newClient(t, srv, srv.Token)

	err := client.DeleteOverview(context.Background(), "missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found, got %v", err)
	}
	if msg, ok := service.ServerMessage(err); !ok || msg != "Overview item not found" {
		t.Errorf("unexpected server message %q", msg)
	}
}
