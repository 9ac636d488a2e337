package panels_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"learnsphere/internal/panels"
	"learnsphere/internal/service"
	"learnsphere/internal/testutil"
)

type fakeUI struct {
	alerts  []string
	prompts []string
	answer  bool
}

func (u *fakeUI) Alert(msg string) { u.alerts = append(u.alerts, msg) }

func (u *fakeUI) Confirm(prompt string) bool {
	u.prompts = append(u.prompts, prompt)
	return u.answer
}

func yes() *fakeUI { return &fakeUI{answer: true} }

func TestOverviewCreate_AppendsServerRecord(t *testing.T) {
	svc := testutil.NewFakeService()
	p := panels.NewOverview(svc, yes(), nil)

	ok, err := p.Create(context.Background(), "  Physics  ", "Kinematics")
	if err != nil || !ok {
		t.Fatalf("unexpected result %v %v", ok, err)
	}
	if len(p.Items) != 1 || p.Items[0].ID == "" || p.Items[0].Title != "Physics" {
		t.Errorf("expected appended server record, got %+v", p.Items)
	}
}

func TestOverviewCreate_BlankIsNoop(t *testing.T) {
	svc := testutil.NewFakeService()
	ui := yes()
	p := panels.NewOverview(svc, ui, nil)

	ok, err := p.Create(context.Background(), "   ", "x")
	if ok || err != nil {
		t.Errorf("expected silent no-op, got %v %v", ok, err)
	}
	if len(svc.Calls()) != 0 || len(ui.alerts) != 0 {
		t.Errorf("expected no request and no alert, got %v %v", svc.Calls(), ui.alerts)
	}
}

func TestCreate_FailureAlerts(t *testing.T) {
	svc := testutil.NewFakeService()
	ui := yes()
	p := panels.NewMilestones(svc, ui, nil)

	svc.Errs["CreateMilestone"] = &service.Error{Code: service.CodeBackend, Status: http.StatusBadRequest, Message: "Date is invalid"}
	if _, err := p.Create(context.Background(), "Exam", "tomorrow"); err == nil {
		t.Fatal("expected error")
	}

	svc.Errs["CreateMilestone"] = service.WrapError(service.CodeNetwork, "network error", errors.New("refused"))
	if _, err := p.Create(context.Background(), "Exam", ""); err == nil {
		t.Fatal("expected error")
	}

	want := []string{"Date is invalid", "Network error: could not add milestone"}
	if len(ui.alerts) != 2 || ui.alerts[0] != want[0] || ui.alerts[1] != want[1] {
		t.Errorf("expected alerts %q, got %q", want, ui.alerts)
	}
	if len(p.Items) != 0 {
		t.Error("failed create must not change the list")
	}
}

func TestCreate_LostSessionNotAlerted(t *testing.T) {
	svc := testutil.NewFakeService()
	ui := yes()
	p := panels.NewOverview(svc, ui, nil)
	svc.Errs["CreateOverview"] = service.ErrUnauthorized

	_, err := p.Create(context.Background(), "x", "")
	if !service.IsCode(err, service.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(ui.alerts) != 0 {
		t.Errorf("unexpected alert %q", ui.alerts)
	}
}

func TestDelete_RemovesOnlyOnSuccess(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddMilestone("m1", "Midterm", "")
	svc.AddMilestone("m2", "Final", "")
	ui := yes()
	p := panels.NewMilestones(svc, ui, nil)
	if err := p.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	svc.Errs["DeleteMilestone"] = errors.New("boom")
	if ok, _ := p.Delete(context.Background(), "m1"); ok {
		t.Error("delete should report failure")
	}
	if len(p.Items) != 2 {
		t.Errorf("failed delete must keep the item, got %d items", len(p.Items))
	}

	delete(svc.Errs, "DeleteMilestone")
	if ok, err := p.Delete(context.Background(), "m1"); !ok || err != nil {
		t.Fatalf("unexpected result %v %v", ok, err)
	}
	if len(p.Items) != 1 || p.Items[0].ID != "m2" {
		t.Errorf("expected only m2 left, got %+v", p.Items)
	}
}

func TestDelete_DeclinedSendsNothing(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddOverview("o1", "Biology")
	ui := &fakeUI{answer: false}
	p := panels.NewOverview(svc, ui, nil)
	_ = p.Load(context.Background())

	ok, err := p.Delete(context.Background(), "o1")
	if ok || err != nil {
		t.Errorf("expected declined delete, got %v %v", ok, err)
	}
	if svc.CallCount("DeleteOverview") != 0 {
		t.Error("declined delete must not issue a request")
	}
	if len(ui.prompts) != 1 {
		t.Errorf("expected one confirmation, got %d", len(ui.prompts))
	}
}

func TestScheduleCreate_LinksTask(t *testing.T) {
	svc := testutil.NewFakeService()
	p := panels.NewSchedules(svc, yes(), nil)

	ok, err := p.Create(context.Background(), "Reading", "10:00", "ch. 3", "Read chapter 3")
	if !ok || err != nil {
		t.Fatalf("unexpected result %v %v", ok, err)
	}
	if len(p.Items) != 1 {
		t.Fatalf("expected 1 schedule, got %d", len(p.Items))
	}
	sc := p.Items[0]
	if sc.TaskID == "" || sc.Task == nil || sc.Task.Title != "Read chapter 3" {
		t.Errorf("expected linked task, got %+v", sc)
	}
	stored := svc.Schedules()
	if len(stored) != 1 || stored[0].TaskID != sc.TaskID {
		t.Errorf("link not persisted: %+v", stored)
	}
	want := []string{"CreateSchedule", "CreateTask", "UpdateSchedule"}
	if got := svc.Calls(); len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestScheduleCreate_TaskFailureKeepsSchedule(t *testing.T) {
	svc := testutil.NewFakeService()
	ui := yes()
	p := panels.NewSchedules(svc, ui, nil)
	svc.Errs["CreateTask"] = service.WrapError(service.CodeNetwork, "network error", errors.New("reset"))

	ok, err := p.Create(context.Background(), "Reading", "10:00", "", "Read chapter 3")
	if err == nil {
		t.Fatal("expected task error")
	}
	if !ok {
		t.Error("schedule was created and should be reported")
	}
	if len(p.Items) != 1 || p.Items[0].Title != "Reading" {
		t.Errorf("schedule must remain after task failure, got %+v", p.Items)
	}
	if p.Items[0].TaskID != "" {
		t.Error("schedule should not be linked")
	}
	if len(ui.alerts) != 1 || ui.alerts[0] != "Network error: could not add task for schedule" {
		t.Errorf("unexpected alerts %q", ui.alerts)
	}
	if svc.CallCount("DeleteSchedule") != 0 {
		t.Error("no rollback expected")
	}
}

func TestScheduleCreate_LinkFailureKeepsSchedule(t *testing.T) {
	svc := testutil.NewFakeService()
	p := panels.NewSchedules(svc, yes(), nil)
	svc.Errs["UpdateSchedule"] = errors.New("boom")

	ok, err := p.Create(context.Background(), "Reading", "10:00", "", "Read")
	if !ok || err == nil {
		t.Fatalf("expected created schedule with link error, got %v %v", ok, err)
	}
	if len(p.Items) != 1 || len(svc.Tasks()) != 1 {
		t.Errorf("schedule and task must both remain: %+v %+v", p.Items, svc.Tasks())
	}
}

func TestScheduleCreate_RequiresTitleAndTime(t *testing.T) {
	svc := testutil.NewFakeService()
	p := panels.NewSchedules(svc, yes(), nil)

	if ok, _ := p.Create(context.Background(), "Reading", " ", "", ""); ok {
		t.Error("blank time should be a no-op")
	}
	if len(svc.Calls()) != 0 {
		t.Errorf("expected no requests, got %v", svc.Calls())
	}
}

func TestScheduleComplete(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Read chapter 3")
	svc.AddSchedule(service.Schedule{ID: "s1", Title: "Reading", Time: "10:00", TaskID: "t1"})
	svc.AddSchedule(service.Schedule{ID: "s2", Title: "Gym", Time: "18:00"})
	p := panels.NewSchedules(svc, yes(), nil)
	if err := p.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if ok, err := p.Complete(context.Background(), "s1"); !ok || err != nil {
		t.Fatalf("unexpected result %v %v", ok, err)
	}
	tasks := svc.Tasks()
	if tasks[0].Status != service.TaskCompleted || tasks[0].Title != "Read chapter 3" {
		t.Errorf("expected completed task, got %+v", tasks[0])
	}
	if len(p.Items) != 1 || p.Items[0].ID != "s2" {
		t.Errorf("completed schedule should be dropped, got %+v", p.Items)
	}

	// Reloading keeps it hidden.
	if err := p.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(p.Items) != 1 {
		t.Errorf("completed schedule reappeared: %+v", p.Items)
	}
}

func TestScheduleComplete_FailureKeepsItem(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("t1", "Read")
	svc.AddSchedule(service.Schedule{ID: "s1", Title: "Reading", Time: "10:00", TaskID: "t1"})
	p := panels.NewSchedules(svc, yes(), nil)
	_ = p.Load(context.Background())
	svc.Errs["UpdateTask"] = errors.New("boom")

	if ok, _ := p.Complete(context.Background(), "s1"); ok {
		t.Error("expected failure")
	}
	if len(p.Items) != 1 {
		t.Error("schedule should stay visible")
	}
}

func TestNotesCreate_BlankSendsNothing(t *testing.T) {
	for _, tc := range [][2]string{{"", "content"}, {"title", "   "}, {" \t", "\n"}} {
		svc := testutil.NewFakeService()
		p := panels.NewNotes(svc, yes(), nil)
		if ok, err := p.Create(context.Background(), tc[0], tc[1]); ok || err != nil {
			t.Errorf("Create(%q, %q) = %v, %v", tc[0], tc[1], ok, err)
		}
		if len(svc.Calls()) != 0 {
			t.Errorf("Create(%q, %q) issued %v", tc[0], tc[1], svc.Calls())
		}
	}
}

func TestNotes_SortAndPageRefetch(t *testing.T) {
	svc := testutil.NewFakeService()
	for _, title := range []string{"b", "a", "c"} {
		svc.AddNote(title, title, "content "+title)
	}
	p := panels.NewNotes(svc, yes(), nil)
	p.Limit = 2

	if err := p.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := p.Fetched(); len(got) != 2 || got[0].Title != "c" {
		t.Errorf("expected newest first, got %+v", got)
	}
	if p.TotalPages != 2 {
		t.Errorf("expected 2 pages, got %d", p.TotalPages)
	}

	if err := p.SetSort(context.Background(), panels.SortTitle); err != nil {
		t.Fatal(err)
	}
	if got := p.Fetched(); got[0].Title != "a" || got[1].Title != "b" {
		t.Errorf("expected title order, got %+v", got)
	}

	if err := p.SetPage(context.Background(), 2); err != nil {
		t.Fatal(err)
	}
	if got := p.Fetched(); len(got) != 1 || got[0].Title != "c" {
		t.Errorf("expected page 2, got %+v", got)
	}
	if n := svc.CallCount("ListNotes"); n != 3 {
		t.Errorf("expected 3 fetches, got %d", n)
	}

	if err := p.SetSort(context.Background(), "random"); !service.IsCode(err, service.CodeInvalid) {
		t.Errorf("expected invalid sort error, got %v", err)
	}
}

func TestNotes_SearchFiltersLocally(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddNote("n1", "Cell Biology", "mitochondria")
	svc.AddNote("n2", "Algebra", "groups and RINGS")
	svc.AddNote("n3", "History", "Rome")
	p := panels.NewNotes(svc, yes(), nil)
	_ = p.Load(context.Background())
	before := svc.CallCount("ListNotes")

	p.SetSearch("rings")
	if got := p.Visible(); len(got) != 1 || got[0].ID != "n2" {
		t.Errorf("expected content match, got %+v", got)
	}
	p.SetSearch("BIOLOGY")
	if got := p.Visible(); len(got) != 1 || got[0].ID != "n1" {
		t.Errorf("expected title match, got %+v", got)
	}
	p.SetSearch("")
	if got := p.Visible(); len(got) != 3 {
		t.Errorf("expected all notes, got %d", len(got))
	}
	if svc.CallCount("ListNotes") != before {
		t.Error("search must not refetch")
	}
}

func TestQuiz_Grade(t *testing.T) {
	svc := testutil.NewFakeService()
	questions := make([]service.Question, 5)
	for i := range questions {
		questions[i] = service.Question{Question: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: i % 4}
	}
	svc.SetQuiz("n1", service.Quiz{Questions: questions})
	q := panels.NewQuiz(svc, yes(), nil)

	if err := q.Generate(context.Background(), "n1"); err != nil {
		t.Fatal(err)
	}
	// Three correct, one wrong, one unanswered.
	for i, opt := range []int{0, 1, 2, 0} {
		if err := q.Select(i, opt); err != nil {
			t.Fatal(err)
		}
	}
	g := q.Grade()
	if g.Correct != 3 || g.Total != 5 || g.Score != 60 {
		t.Errorf("expected 3/5 = 60, got %+v", g)
	}

	if err := q.Select(0, 9); !service.IsCode(err, service.CodeInvalid) {
		t.Errorf("expected invalid option error, got %v", err)
	}
	if err := q.Select(7, 0); !service.IsCode(err, service.CodeInvalid) {
		t.Errorf("expected invalid question error, got %v", err)
	}
}

func TestScore(t *testing.T) {
	three := []service.Question{{CorrectAnswer: 0}, {CorrectAnswer: 1}, {CorrectAnswer: 2}}
	cases := []struct {
		sel  []int
		want int
	}{
		{[]int{0, 1, 2}, 100},
		{[]int{0, 0, 0}, 33},
		{[]int{0, 1, 0}, 67},
		{[]int{-1, -1, -1}, 0},
	}
	for _, tc := range cases {
		if got := panels.Score(three, tc.sel).Score; got != tc.want {
			t.Errorf("Score(%v) = %d, want %d", tc.sel, got, tc.want)
		}
	}
	if got := panels.Score(nil, nil); got.Score != 0 || got.Total != 0 {
		t.Errorf("empty quiz should score 0, got %+v", got)
	}
}

func TestQuiz_GenerateFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	ui := yes()
	q := panels.NewQuiz(svc, ui, nil)

	if err := q.Generate(context.Background(), "missing"); err == nil {
		t.Fatal("expected error")
	}
	if len(ui.alerts) != 1 || ui.alerts[0] != "Network error: could not generate quiz" {
		t.Errorf("unexpected alerts %q", ui.alerts)
	}
}
