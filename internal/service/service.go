// Package service defines the backend-agnostic interface for LearnSphere operations.
package service

import (
	"context"
	"encoding/json"
)

// Service defines the operations of the remote LearnSphere API.
// Commands and panels never talk HTTP directly; they go through this interface.
type Service interface {
	// HasSession reports whether a session token is stored. It performs no I/O.
	HasSession() bool

	// LoginRequired reports whether a protected call found no session or had
	// its session rejected since the last login. It performs no I/O.
	LoginRequired() bool

	// Logout removes the stored session.
	Logout() error

	// Login exchanges credentials for a session token.
	Login(ctx context.Context, email, password string) (AuthResult, error)

	// Signup creates an account and returns a session token.
	Signup(ctx context.Context, name, email, password string) (AuthResult, error)

	// GoogleLoginURL returns the URL that starts the redirect-based Google
	// login, sending the browser back to redirect with a token parameter.
	GoogleLoginURL(redirect string) string

	// UseToken stores a token obtained outside Login, such as the one the
	// Google redirect delivers.
	UseToken(token string) error

	// Me returns the profile of the session owner.
	Me(ctx context.Context) (User, error)

	ListOverview(ctx context.Context) ([]OverviewItem, error)
	CreateOverview(ctx context.Context, item OverviewItem) (OverviewItem, error)
	DeleteOverview(ctx context.Context, id string) error

	ListMilestones(ctx context.Context) ([]Milestone, error)
	CreateMilestone(ctx context.Context, m Milestone) (Milestone, error)
	DeleteMilestone(ctx context.Context, id string) error

	ListSchedules(ctx context.Context) ([]Schedule, error)
	CreateSchedule(ctx context.Context, s Schedule) (Schedule, error)
	UpdateSchedule(ctx context.Context, s Schedule) (Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error

	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, t Task) (Task, error)
	UpdateTask(ctx context.Context, t Task) (Task, error)
	DeleteTask(ctx context.Context, id string) error

	// PendingTasksToday returns today's open tasks.
	PendingTasksToday(ctx context.Context) ([]Task, error)

	// WeeklyActivity returns the raw weekly-activity payload.
	// The shape is judged by the caller so malformed data can fall back.
	WeeklyActivity(ctx context.Context) (json.RawMessage, error)

	GetStreak(ctx context.Context) (Streak, error)
	InitStreak(ctx context.Context) (Streak, error)
	// TouchStreak records activity for today and returns the new counters.
	TouchStreak(ctx context.Context) (Streak, error)

	ListNotes(ctx context.Context, q NotesQuery) (NotesPage, error)
	CreateNote(ctx context.Context, n Note) (Note, error)
	DeleteNote(ctx context.Context, id string) error

	// GenerateQuiz asks the server to build a quiz from a note.
	GenerateQuiz(ctx context.Context, noteID string) (Quiz, error)

	// Summarize returns an AI summary of notes.
	// Returns a CodeUnavailable error when the server has no AI configured.
	Summarize(ctx context.Context, notes string) (string, error)
}
