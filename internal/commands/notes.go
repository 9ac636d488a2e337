package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"learnsphere/internal/config"
	"learnsphere/internal/exitcode"
	"learnsphere/internal/output"
	"learnsphere/internal/panels"
	"learnsphere/internal/service"
)

func init() {
	Register(&NotesCmd{})
	Register(&NoteAddCmd{})
	Register(&NoteRmCmd{})
}

// pageFlags selects the notes page a command works on. Item numbers refer
// to positions on that page.
type pageFlags struct {
	sort string
	page int
}

func (f *pageFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.sort, "sort", panels.SortNewest, "")
	fs.IntVar(&f.page, "page", 1, "")
}

func (f *pageFlags) validate() error {
	if !panels.ValidSort(f.sort) {
		return fmt.Errorf("unknown sort: %s (use newest, oldest or title)", f.sort)
	}
	return nil
}

// load fetches the selected page into a new Notes panel.
func (f *pageFlags) load(ctx context.Context, cfg *config.Config, svc service.Service, ui panels.UI, errOut io.Writer) (*panels.Notes, error) {
	p := panels.NewNotes(svc, ui, newLogger(cfg, errOut))
	p.Sort = f.sort
	if err := p.SetPage(ctx, f.page); err != nil {
		return nil, err
	}
	return p, nil
}

// NotesCmd lists one page of notes.
type NotesCmd struct {
	pageFlags
	search string
}

func (c *NotesCmd) Name() string      { return "notes" }
func (c *NotesCmd) Aliases() []string { return nil }
func (c *NotesCmd) Synopsis() string  { return "List notes" }
func (c *NotesCmd) Usage() string {
	return "learnsphere notes [common flags] [--sort newest|oldest|title] [--page <n>] [--search <text>]"
}
func (c *NotesCmd) NeedsAuth() bool { return true }

func (c *NotesCmd) RegisterFlags(fs *flag.FlagSet) {
	c.pageFlags.register(fs)
	fs.StringVar(&c.search, "search", "", "")
}

func (c *NotesCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if err := c.validate(); err != nil {
		return usageError(errOut, err)
	}
	p, err := c.load(ctx, cfg, svc, newUI(errOut, false), errOut)
	if err != nil {
		return panelExit(errOut, err)
	}
	p.SetSearch(c.search)

	pr := output.NewPrinter(out, cfg.Theme)
	pr.Header("Notes")
	visible := p.Visible()
	for _, n := range visible {
		// Numbers stay page positions so they work with note-rm and quiz.
		pr.Note(pagePosition(p.Fetched(), n.ID), n)
	}
	if c.search != "" && len(visible) == 0 && !cfg.Quiet {
		pr.Muted("no notes match " + quote(c.search))
	}
	if p.TotalPages > 1 && !cfg.Quiet {
		pr.Muted(fmt.Sprintf("page %d of %d", p.Page, p.TotalPages))
	}
	return exitcode.Success
}

func pagePosition(page []service.Note, id string) int {
	for i, n := range page {
		if n.ID == id {
			return i + 1
		}
	}
	return 0
}

func quote(s string) string {
	return "\"" + s + "\""
}

// NoteAddCmd adds a note. Without --content the content is read from stdin.
type NoteAddCmd struct {
	content string
}

func (c *NoteAddCmd) Name() string      { return "note-add" }
func (c *NoteAddCmd) Aliases() []string { return nil }
func (c *NoteAddCmd) Synopsis() string  { return "Add a note" }
func (c *NoteAddCmd) Usage() string {
	return "learnsphere note-add [common flags] [--content <text>] <title...>"
}
func (c *NoteAddCmd) NeedsAuth() bool { return true }

func (c *NoteAddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.content, "content", "", "")
}

func (c *NoteAddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	content := c.content
	if content == "" {
		data, err := io.ReadAll(Stdin)
		if err != nil {
			fmt.Fprintf(errOut, "error: failed to read note content: %v\n", err)
			return exitcode.UserError
		}
		content = string(data)
	}

	p := panels.NewNotes(svc, newUI(errOut, false), newLogger(cfg, errOut))
	created, err := p.Create(ctx, strings.Join(args, " "), content)
	if err != nil {
		return panelExit(errOut, err)
	}
	if !created {
		fmt.Fprintln(errOut, "error: title and content required")
		return exitcode.UserError
	}
	return ok(out, cfg.Quiet)
}

// NoteRmCmd deletes a note by its position on a page.
type NoteRmCmd struct {
	pageFlags
	yes bool
}

func (c *NoteRmCmd) Name() string      { return "note-rm" }
func (c *NoteRmCmd) Aliases() []string { return nil }
func (c *NoteRmCmd) Synopsis() string  { return "Delete a note" }
func (c *NoteRmCmd) Usage() string {
	return "learnsphere note-rm [common flags] [--sort <key>] [--page <n>] [--yes] <n>"
}
func (c *NoteRmCmd) NeedsAuth() bool { return true }

func (c *NoteRmCmd) RegisterFlags(fs *flag.FlagSet) {
	c.pageFlags.register(fs)
	fs.BoolVar(&c.yes, "yes", false, "")
}

func (c *NoteRmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	note, p, code := c.pick(ctx, cfg, svc, args, newUI(errOut, c.yes), errOut)
	if p == nil {
		return code
	}
	deleted, err := p.Delete(ctx, note.ID)
	if err != nil {
		return panelExit(errOut, err)
	}
	if !deleted {
		return exitcode.Success
	}
	return ok(out, cfg.Quiet)
}

// pick resolves args to a note on the selected page. On failure the panel
// is nil and code is the exit code.
func (f *pageFlags) pick(ctx context.Context, cfg *config.Config, svc service.Service, args []string, ui panels.UI, errOut io.Writer) (service.Note, *panels.Notes, int) {
	if err := f.validate(); err != nil {
		return service.Note{}, nil, usageError(errOut, err)
	}
	if _, err := ParseRef(args); err != nil {
		return service.Note{}, nil, usageError(errOut, err)
	}
	p, err := f.load(ctx, cfg, svc, ui, errOut)
	if err != nil {
		return service.Note{}, nil, panelExit(errOut, err)
	}
	i, err := resolveRef(args, len(p.Fetched()))
	if err != nil {
		return service.Note{}, nil, usageError(errOut, err)
	}
	return p.Fetched()[i], p, exitcode.Success
}
