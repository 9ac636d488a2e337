// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"learnsphere/internal/service"
	"learnsphere/internal/timer"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"

	// barWidth is the widest weekly-activity bar.
	barWidth = 20
)

// Palette holds the colors of a theme.
type Palette struct {
	Accent string
	Muted  string
	Good   string
	Bad    string
}

// Palettes maps theme names to colors.
var Palettes = map[string]Palette{
	"dark":  {Accent: "205", Muted: "245", Good: "86", Bad: "9"},
	"light": {Accent: "57", Muted: "240", Good: "28", Bad: "160"},
}

// Printer writes themed output. Colors are dropped when w is not a terminal.
type Printer struct {
	w      io.Writer
	header lipgloss.Style
	muted  lipgloss.Style
	accent lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
}

// NewPrinter creates a Printer for theme. Unknown themes use dark.
func NewPrinter(w io.Writer, theme string) *Printer {
	pal, ok := Palettes[theme]
	if !ok {
		pal = Palettes["dark"]
	}
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color(pal.Accent)),
		muted:  r.NewStyle().Foreground(lipgloss.Color(pal.Muted)),
		accent: r.NewStyle().Foreground(lipgloss.Color(pal.Accent)),
		good:   r.NewStyle().Foreground(lipgloss.Color(pal.Good)),
		bad:    r.NewStyle().Foreground(lipgloss.Color(pal.Bad)),
	}
}

// Header formats a section header.
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.w, ListSeparator)
	fmt.Fprintln(p.w, p.header.Render(normalizeTitle(title)))
	fmt.Fprintln(p.w, ListSeparator)
}

// Line writes s followed by a newline.
func (p *Printer) Line(s string) {
	fmt.Fprintln(p.w, s)
}

// Muted writes s in the muted color.
func (p *Printer) Muted(s string) {
	fmt.Fprintln(p.w, p.muted.Render(s))
}

// Item formats a numbered line.
// Format: "{N:>4}  {TITLE}" plus "  {DETAIL}" when detail is set.
func (p *Printer) Item(num int, title, detail string) {
	line := fmt.Sprintf("%4d  %s", num, normalizeTitle(title))
	if detail = strings.TrimSpace(detail); detail != "" {
		line += "  " + p.muted.Render(normalizeTitle(detail))
	}
	fmt.Fprintln(p.w, line)
}

// Overview formats an overview card.
func (p *Printer) Overview(num int, item service.OverviewItem) {
	p.Item(num, item.Title, item.Description)
}

// Milestone formats a milestone with its date.
func (p *Printer) Milestone(num int, m service.Milestone) {
	detail := m.Date
	if m.Completed {
		detail = strings.TrimSpace(detail + " " + p.good.Render("done"))
	}
	p.Item(num, m.Title, detail)
}

// Schedule formats a schedule as "{TIME}  {TITLE}" with its linked task.
func (p *Printer) Schedule(num int, s service.Schedule) {
	var detail []string
	if s.Detail != "" {
		detail = append(detail, s.Detail)
	}
	if s.Task != nil {
		detail = append(detail, "task: "+normalizeTitle(s.Task.Title))
	}
	p.Item(num, p.accent.Render(s.Time)+"  "+normalizeTitle(s.Title), strings.Join(detail, " | "))
}

// Task formats a task with its status.
func (p *Printer) Task(num int, t service.Task) {
	status := t.Status
	if status == service.TaskCompleted {
		status = p.good.Render(status)
	}
	p.Item(num, t.Title, status)
}

// Note formats a note title with the start of its content.
func (p *Printer) Note(num int, n service.Note) {
	p.Item(num, n.Title, Excerpt(n.Content, 60))
}

// Streak formats the streak counters.
func (p *Printer) Streak(st service.Streak) {
	fmt.Fprintf(p.w, "current streak: %s days\n", p.accent.Render(fmt.Sprint(st.CurrentStreak)))
	fmt.Fprintf(p.w, "longest streak: %d days\n", st.MaxStreak)
	if st.LastActivityDate != "" {
		p.Muted("last active: " + st.LastActivityDate)
	}
}

// Week formats weekly activity as a bar chart scaled to the busiest day.
func (p *Printer) Week(week []service.ActivityBucket) {
	max := 0
	for _, b := range week {
		if b.Count > max {
			max = b.Count
		}
	}
	for _, b := range week {
		n := 0
		if max > 0 {
			n = b.Count * barWidth / max
		}
		fmt.Fprintf(p.w, "%-4s %s %d\n", b.Day, p.accent.Render(strings.Repeat("#", n)), b.Count)
	}
}

// Timer formats the countdown.
func (p *Printer) Timer(s timer.Snapshot) {
	fmt.Fprintf(p.w, "%s  %s\n", p.header.Render(timer.Format(s.RemainingSeconds)), p.muted.Render(string(s.State)))
}

// Error formats an error line.
func (p *Printer) Error(msg string) {
	fmt.Fprintln(p.w, p.bad.Render("error: "+msg))
}

// Excerpt flattens s and cuts it to at most n runes.
func Excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "..."
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
