// Package render draws collections for terminals and plain text.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"

	"github.com/roach88/todoflux/internal/ir"
)

// NoSelection renders a list without a cursor.
const NoSelection = -1

// Renderer formats collections using a termenv color profile.
// The Ascii profile produces plain text with no escape sequences.
type Renderer struct {
	profile termenv.Profile
}

// New returns a renderer for w. Terminals get colors; anything else
// (pipes, files, buffers) gets plain text.
func New(w io.Writer) *Renderer {
	if f, ok := w.(*os.File); ok {
		return &Renderer{profile: termenv.NewOutput(f).EnvColorProfile()}
	}
	return &Renderer{profile: termenv.Ascii}
}

// NewWithProfile returns a renderer with a fixed profile.
func NewWithProfile(p termenv.Profile) *Renderer {
	return &Renderer{profile: p}
}

// Plain reports whether output carries no escape sequences.
func (r *Renderer) Plain() bool {
	return r.profile == termenv.Ascii
}

// Title renders a heading line.
func (r *Renderer) Title(s string) string {
	if r.Plain() {
		return s
	}
	return r.profile.String(s).Bold().Foreground(r.profile.Color("#818cf8")).String()
}

// Muted renders secondary text such as ids and hints.
func (r *Renderer) Muted(s string) string {
	if r.Plain() {
		return s
	}
	return r.profile.String(s).Faint().String()
}

// Error renders an error line.
func (r *Renderer) Error(s string) string {
	if r.Plain() {
		return s
	}
	return r.profile.String(s).Foreground(r.profile.Color("#fb7185")).String()
}

// List renders the collection as a numbered list, one item per line.
// selected marks one row with a cursor; pass NoSelection for none.
//
//	To-do (2)
//	  1. Buy milk.  [todo-1]
//	> 2. Practice typing.  [todo-2]
func (r *Renderer) List(c ir.Collection, selected int) string {
	var b strings.Builder
	b.WriteString(r.Title(fmt.Sprintf("To-do (%d)", len(c))))
	b.WriteString("\n")

	if len(c) == 0 {
		b.WriteString("  " + r.Muted("(empty)") + "\n")
		return b.String()
	}

	for i, item := range c {
		cursor := "  "
		text := item.Text
		if i == selected {
			cursor = "> "
			if !r.Plain() {
				text = r.profile.String(text).Reverse().String()
			}
		}
		fmt.Fprintf(&b, "%s%d. %s  %s\n", cursor, i+1, text, r.Muted("["+item.ID.String()+"]"))
	}
	return b.String()
}

// WriteList writes List(c, NoSelection) to w.
func (r *Renderer) WriteList(w io.Writer, c ir.Collection) error {
	_, err := io.WriteString(w, r.List(c, NoSelection))
	return err
}
