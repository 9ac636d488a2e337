// Package service defines the backend-agnostic interface for LearnSphere operations.
package service

// Task status values understood by the API.
const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
)

// User is the authenticated account.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResult is returned by login and signup.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// OverviewItem is a card on the study overview panel.
type OverviewItem struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Milestone is a dated study goal.
type Milestone struct {
	ID        string `json:"_id,omitempty"`
	Title     string `json:"title"`
	Date      string `json:"date,omitempty"`
	Completed bool   `json:"completed,omitempty"`
}

// Task is a to-do item, optionally linked from a schedule.
type Task struct {
	ID      string `json:"_id,omitempty"`
	Title   string `json:"title"`
	Status  string `json:"status,omitempty"`
	DueDate string `json:"dueDate,omitempty"`
}

// Schedule is a timed entry of the daily plan.
// Task is a client-side snapshot joined from the pending-task list.
type Schedule struct {
	ID     string `json:"_id,omitempty"`
	Title  string `json:"title"`
	Time   string `json:"time"`
	Detail string `json:"detail,omitempty"`
	TaskID string `json:"taskId,omitempty"`
	Task   *Task  `json:"-"`
}

// Streak counters are computed server-side.
type Streak struct {
	CurrentStreak    int    `json:"currentStreak"`
	MaxStreak        int    `json:"maxStreak"`
	LastActivityDate string `json:"lastActivityDate,omitempty"`
}

// ActivityBucket is one day of the weekly-activity chart.
type ActivityBucket struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Note is a study note.
type Note struct {
	ID        string `json:"_id,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// NotesQuery selects one server-side page of notes.
type NotesQuery struct {
	Sort  string
	Page  int
	Limit int
}

// NotesPage is one page of notes.
type NotesPage struct {
	Notes      []Note `json:"notes"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}

// Question is a multiple-choice quiz question.
// CorrectAnswer is the index into Options declared by the server.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Quiz is the set of questions generated for a note.
type Quiz struct {
	Questions []Question `json:"questions"`
}
