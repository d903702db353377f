// Package ui provides the interactive terminal to-do list.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/roach88/todoflux/internal/ir"
	"github.com/roach88/todoflux/internal/render"
	"github.com/roach88/todoflux/internal/store"
)

// ErrNotTTY is returned by Run when stdout is not a terminal.
var ErrNotTTY = fmt.Errorf("tui requires a TTY")

// Run starts the TUI on the given store and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, s *store.Store, out io.Writer) error {
	if !IsTTY(out) {
		return ErrNotTTY
	}

	model := NewModel(ctx, s, render.New(out))
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithOutput(out))
	_, err := program.Run()
	return err
}

// Model is the bubbletea model: a text input above the list.
//
// Actions reach the store through Submit. The model does not keep its own
// copy of the list; it re-reads the store when the store notifies it.
type Model struct {
	ctx      context.Context
	store    *store.Store
	renderer *render.Renderer

	input    string
	selected int
	items    ir.Collection
	status   string
	isError  bool

	changed     chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
	unsubscribe func()
}

type collectionChangedMsg struct{}

// NewModel subscribes to s. Call Close to unsubscribe.
func NewModel(ctx context.Context, s *store.Store, r *render.Renderer) *Model {
	m := &Model{
		ctx:      ctx,
		store:    s,
		renderer: r,
		items:    s.Collection(),
		selected: render.NoSelection,
		changed:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	m.unsubscribe = s.Subscribe(m.notify)
	if len(m.items) > 0 {
		m.selected = 0
	}
	return m
}

// notify is the store observer. It coalesces bursts into one pending message.
func (m *Model) notify() {
	select {
	case m.changed <- struct{}{}:
	default:
	}
}

// Close unsubscribes from the store and releases a pending waitForChange.
// Safe to call more than once.
func (m *Model) Close() {
	m.closeOnce.Do(func() {
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		close(m.done)
	})
}

// waitForChange blocks until the store notifies. Close or a cancelled
// context releases it with no message.
func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changed:
			return collectionChangedMsg{}
		case <-m.done:
			return nil
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case collectionChangedMsg:
		m.refresh()
		return m, m.waitForChange()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return tea.Quit
	case tea.KeyEnter:
		m.add()
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case tea.KeyDelete, tea.KeyCtrlD:
		m.remove()
	case tea.KeyBackspace:
		if m.input != "" {
			_, size := utf8.DecodeLastRuneInString(m.input)
			m.input = m.input[:len(m.input)-size]
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return nil
}

// add submits the input text. Empty input is rejected here; the engine
// itself accepts any text.
func (m *Model) add() {
	text := strings.TrimSpace(m.input)
	if text == "" {
		m.setStatus("Type something first.", true)
		return
	}
	if _, err := m.store.Submit(m.ctx, ir.AddToDo(text)); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.input = ""
	m.setStatus(fmt.Sprintf("Added %q.", text), false)
}

// remove submits a remove for the selected item.
func (m *Model) remove() {
	if m.selected < 0 || m.selected >= len(m.items) {
		m.setStatus("Nothing selected.", true)
		return
	}
	item := m.items[m.selected]
	if _, err := m.store.Submit(m.ctx, ir.RemoveToDo(item.ID)); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(fmt.Sprintf("Removed %q.", item.Text), false)
}

func (m *Model) setStatus(s string, isError bool) {
	m.status = s
	m.isError = isError
}

// refresh re-reads the store and keeps the cursor in range.
func (m *Model) refresh() {
	m.items = m.store.Collection()
	switch {
	case len(m.items) == 0:
		m.selected = render.NoSelection
	case m.selected < 0:
		m.selected = 0
	case m.selected >= len(m.items):
		m.selected = len(m.items) - 1
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString("New item: " + m.input + "_\n\n")
	b.WriteString(m.renderer.List(m.items, m.selected))
	b.WriteString("\n")
	if m.status != "" {
		if m.isError {
			b.WriteString(m.renderer.Error(m.status))
		} else {
			b.WriteString(m.status)
		}
		b.WriteString("\n")
	}
	b.WriteString(m.renderer.Muted("enter add | up/down select | del, ctrl+d remove | esc quit"))
	b.WriteString("\n")
	return b.String()
}

// Input returns the pending input text.
func (m *Model) Input() string { return m.input }

// Selected returns the cursor row, or render.NoSelection.
func (m *Model) Selected() int { return m.selected }

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
