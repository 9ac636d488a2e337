package output_test

import (
	"bytes"
	"strings"
	"testing"

	"learnsphere/internal/output"
	"learnsphere/internal/service"
	"learnsphere/internal/timer"
)

func TestItem(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, "dark")

	p.Item(3, "Read\nchapter", "")
	p.Item(12, "  ", "due today")

	want := "   3  Read chapter\n  12  (untitled)  due today\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestSchedule_ShowsLinkedTask(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, "light")

	p.Schedule(1, service.Schedule{Title: "Reading", Time: "10:00", Task: &service.Task{Title: "Ch. 3"}})

	if got := buf.String(); got != "   1  10:00  Reading  task: Ch. 3\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWeek_ScalesBars(t *testing.T) {
	var buf bytes.Buffer
	p := output.NewPrinter(&buf, "dark")

	p.Week([]service.ActivityBucket{{Day: "Mon", Count: 10}, {Day: "Tue", Count: 5}, {Day: "Wed", Count: 0}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if strings.Count(lines[0], "#") != 20 || strings.Count(lines[1], "#") != 10 || strings.Count(lines[2], "#") != 0 {
		t.Errorf("unexpected bars:\n%s", buf.String())
	}
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	output.NewPrinter(&buf, "unknown").Header("Notes")

	want := output.ListSeparator + "\nNotes\n" + output.ListSeparator + "\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestTimer(t *testing.T) {
	var buf bytes.Buffer
	output.NewPrinter(&buf, "dark").Timer(timer.Snapshot{State: timer.StatePaused, RemainingSeconds: 754})

	if got := buf.String(); got != "12:34  paused\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestExcerpt(t *testing.T) {
	if got := output.Excerpt("short\n text", 20); got != "short text" {
		t.Errorf("got %q", got)
	}
	if got := output.Excerpt("abcdefghij", 4); got != "abcd..." {
		t.Errorf("got %q", got)
	}
}
