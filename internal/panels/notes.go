package panels

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"learnsphere/internal/service"
)

// Note sort keys understood by the API.
const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortTitle  = "title"
)

// DefaultNotesLimit is the page size.
const DefaultNotesLimit = 10

// ValidSort reports whether key is a known sort key.
func ValidSort(key string) bool {
	switch key {
	case SortNewest, SortOldest, SortTitle:
		return true
	}
	return false
}

// Notes holds one server page of notes plus a local search filter.
//
// Changing the sort key or the page refetches. Changing the search term only
// filters the page already fetched.
type Notes struct {
	panel
	Sort       string
	Page       int
	Limit      int
	TotalPages int
	Search     string
	fetched    []service.Note
}

// NewNotes creates a Notes panel on page 1, newest first.
func NewNotes(svc service.Service, ui UI, logger *zap.Logger) *Notes {
	return &Notes{panel: newPanel(svc, ui, logger), Sort: SortNewest, Page: 1, Limit: DefaultNotesLimit}
}

// Load fetches the current page.
func (n *Notes) Load(ctx context.Context) error {
	page, err := n.svc.ListNotes(ctx, service.NotesQuery{Sort: n.Sort, Page: n.Page, Limit: n.Limit})
	if err != nil {
		return n.fail("load notes", err)
	}
	n.fetched = page.Notes
	if page.Page > 0 {
		n.Page = page.Page
	}
	n.TotalPages = page.TotalPages
	return nil
}

// SetSort changes the sort key and refetches.
func (n *Notes) SetSort(ctx context.Context, key string) error {
	if !ValidSort(key) {
		return service.NewError(service.CodeInvalid, "unknown sort: "+key)
	}
	n.Sort = key
	return n.Load(ctx)
}

// SetPage moves to page (minimum 1) and refetches.
func (n *Notes) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	n.Page = page
	return n.Load(ctx)
}

// SetSearch filters the fetched page. It never issues a request.
func (n *Notes) SetSearch(term string) {
	n.Search = term
}

// Fetched returns the current page as fetched.
func (n *Notes) Fetched() []service.Note {
	return n.fetched
}

// Visible returns the fetched notes whose title or content contains the
// search term, ignoring case.
func (n *Notes) Visible() []service.Note {
	term := strings.ToLower(strings.TrimSpace(n.Search))
	if term == "" {
		return n.fetched
	}
	var out []service.Note
	for _, note := range n.fetched {
		if strings.Contains(strings.ToLower(note.Title), term) || strings.Contains(strings.ToLower(note.Content), term) {
			out = append(out, note)
		}
	}
	return out
}

// Create adds a note. Blank title or content is a no-op.
func (n *Notes) Create(ctx context.Context, title, content string) (bool, error) {
	if !required(&title, &content) {
		return false, nil
	}
	created, err := n.svc.CreateNote(ctx, service.Note{Title: title, Content: content})
	if err != nil {
		return false, n.fail("save note", err)
	}
	n.fetched = append(n.fetched, created)
	return true, nil
}

// Delete removes the note with id after confirmation.
func (n *Notes) Delete(ctx context.Context, id string) (bool, error) {
	i := indexOf(n.fetched, func(note service.Note) bool { return note.ID == id })
	if i < 0 {
		return false, service.NewError(service.CodeInvalid, "note not found")
	}
	if !n.ui.Confirm("Delete note " + quote(n.fetched[i].Title) + "?") {
		return false, nil
	}
	if err := n.svc.DeleteNote(ctx, id); err != nil {
		return false, n.fail("delete note", err)
	}
	n.fetched = removeAt(n.fetched, i)
	return true, nil
}
