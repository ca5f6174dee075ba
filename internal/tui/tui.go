// Package tui is the interactive Bubble Tea front end.
//
// The model never owns list state. It calls todo.Ops and redraws from the
// snapshots the store publishes after each persisted mutation.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/todo"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/Makepad-fr/tada/internal/view"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeBrowse mode = iota
	modeAdding
	modeEditing
	modeConfirm
)

// Messages shown to the user, matching the CLI wording.
const (
	msgEmptyTitle = "Error, cannot submit empty form!"
	msgDuplicate  = "Todo already exists!"
	msgEmptyList  = "Currently Empty! *** Add some Todos ***"
)

// snapshotMsg carries a collection published by the store.
type snapshotMsg []model.Item

type keyMap struct {
	Toggle, Add, Edit, Delete   key.Binding
	MarkAll, UnmarkAll          key.Binding
	ClearMarked, ClearAll, Quit key.Binding
}

var keys = keyMap{
	Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Edit:        key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	MarkAll:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mark all")),
	UnmarkAll:   key.NewBinding(key.WithKeys("M"), key.WithHelp("M", "unmark all")),
	ClearMarked: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear marked")),
	ClearAll:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
	Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the Bubble Tea model for the interactive list.
type Model struct {
	ctx context.Context
	ops todo.Ops

	snapshots   chan []model.Item
	unsubscribe func()

	items []model.Item // current projection
	list  list.Model

	mode     mode
	ti       textinput.Model // shared text input (add & edit)
	editID   int64
	inputErr string

	confirmPrompt string
	confirmAction func() error

	status string
	width  int
	height int
}

// New builds a model bound to ops and subscribes to its snapshots.
func New(ctx context.Context, ops todo.Ops) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Muted
	l.Styles.PaginationStyle = ui.Current().Muted
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.DisableQuitKeybindings()
	l.KeyMap.NextPage.SetKeys("right", "l", "pgdown", "f")
	bindings := func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Add, keys.Edit, keys.Delete}
	}
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return append(bindings(), keys.MarkAll, keys.UnmarkAll, keys.ClearMarked, keys.ClearAll)
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = model.MaxTitleLen

	m := Model{
		ctx:       ctx,
		ops:       ops,
		snapshots: make(chan []model.Item, 1),
		list:      l,
		ti:        ti,
		width:     80,
		height:    24,
	}
	ch := m.snapshots
	m.unsubscribe = ops.Subscribe(func(items []model.Item) {
		// Keep only the latest snapshot; older ones are stale.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- items:
		default:
		}
	})
	m.setItems(ops.Items())
	m.resize()
	return m
}

// Close stops the store subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func waitForSnapshot(ch <-chan []model.Item) tea.Cmd {
	return func() tea.Msg { return snapshotMsg(<-ch) }
}

func (m Model) Init() tea.Cmd { return waitForSnapshot(m.snapshots) }

func (m *Model) setItems(items []model.Item) {
	m.items = view.Project(items)
	m.list.SetItems(toListItems(m.items))
	if n := len(m.items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	s := view.Summarize(m.items)
	t := ui.Current()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		"Todos",
		t.Success.Render(t.SymDone), s.Completed,
		t.Pending.Render(t.SymPending), s.Pending,
		t.Accent.Render("Total"), s.Total,
	)
}

func (m *Model) resize() {
	// border (2) + header progress line + footer line
	h := m.height - 5
	if m.mode != modeBrowse {
		h -= 4
	}
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) selected() (model.Item, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Item{}, false
	}
	return it.Item, true
}

// report reloads the list after an operation and turns its error into a
// status line. Keys queued behind the operation must see the new order
// before the snapshot message arrives.
func (m *Model) report(err error) {
	m.setItems(m.ops.Items())
	if err == nil {
		return
	}
	log.Printf("tui: %v", err)
	m.status = err.Error()
}

func (m *Model) enterInput(md mode, value, placeholder string) tea.Cmd {
	m.mode = md
	m.inputErr = ""
	m.ti.SetValue(value)
	m.ti.CursorEnd()
	m.ti.Placeholder = placeholder
	m.resize()
	return m.ti.Focus()
}

func (m *Model) leaveMode() {
	m.mode = modeBrowse
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.confirmPrompt = ""
	m.confirmAction = nil
	m.resize()
}

func (m *Model) askConfirm(prompt string, action func() error) {
	m.mode = modeConfirm
	m.confirmPrompt = prompt
	m.confirmAction = action
	m.resize()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.setItems(msg)
		return m, waitForSnapshot(m.snapshots)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil
	}

	switch m.mode {
	case modeAdding, modeEditing:
		return m.updateInput(msg)
	case modeConfirm:
		return m.updateConfirm(msg)
	}
	return m.updateBrowse(msg)
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter":
			title, err := model.ValidateTitle(m.ti.Value())
			if err != nil {
				m.inputErr = inputError(err)
				return m, nil
			}
			if m.mode == modeAdding {
				_, err = m.ops.Add(m.ctx, title)
			} else {
				err = m.ops.Edit(m.ctx, m.editID, title)
			}
			if errors.Is(err, todo.ErrDuplicateTitle) {
				m.inputErr = msgDuplicate
				return m, nil
			}
			m.report(err)
			m.leaveMode()
			return m, nil
		case "esc":
			m.leaveMode()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func inputError(err error) string {
	switch {
	case errors.Is(err, model.ErrEmptyTitle):
		return msgEmptyTitle
	case errors.Is(err, model.ErrTitleTooShort):
		return fmt.Sprintf("Title needs at least %d characters", model.MinTitleLen)
	case errors.Is(err, model.ErrTitleTooLong):
		return fmt.Sprintf("Title can have at most %d characters", model.MaxTitleLen)
	}
	return err.Error()
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(k.String()) {
	case "y", "enter":
		action := m.confirmAction
		m.leaveMode()
		if action != nil {
			m.report(action())
		}
	case "n", "esc", "q":
		m.leaveMode()
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	// While the filter prompt is open every key belongs to it.
	if !ok || m.list.SettingFilter() {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	m.status = ""
	actions := view.Affordances(m.items)

	switch {
	case key.Matches(k, keys.Quit):
		if k.String() == "esc" && m.list.IsFiltered() {
			break
		}
		return m, tea.Quit
	case key.Matches(k, keys.Toggle):
		if it, ok := m.selected(); ok {
			m.report(m.ops.Toggle(m.ctx, it.ID))
		}
		return m, nil
	case key.Matches(k, keys.Add):
		cmd := m.enterInput(modeAdding, "", "Add todo...")
		return m, cmd
	case key.Matches(k, keys.Edit):
		if it, ok := m.selected(); ok {
			m.editID = it.ID
			cmd := m.enterInput(modeEditing, it.Title, "Edit todo...")
			return m, cmd
		}
		return m, nil
	case key.Matches(k, keys.Delete):
		if it, ok := m.selected(); ok {
			id := it.ID
			m.askConfirm("Are you sure to delete it?", func() error { return m.ops.Delete(m.ctx, id) })
		}
		return m, nil
	case key.Matches(k, keys.MarkAll):
		if actions.MarkAll {
			m.report(m.ops.MarkAll(m.ctx, true))
		}
		return m, nil
	case key.Matches(k, keys.UnmarkAll):
		if actions.UnmarkAll {
			m.report(m.ops.MarkAll(m.ctx, false))
		}
		return m, nil
	case key.Matches(k, keys.ClearMarked):
		if actions.ClearMarked {
			m.askConfirm("Are you sure to clear marked?", func() error { return m.ops.Clear(m.ctx, false) })
		}
		return m, nil
	case key.Matches(k, keys.ClearAll):
		if actions.ClearAll {
			m.askConfirm("Are you sure to clear all?", func() error { return m.ops.Clear(m.ctx, true) })
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	t := ui.Current()
	s := view.Summarize(m.items)

	var b strings.Builder
	if len(m.items) == 0 {
		b.WriteString(t.Title.Render(m.list.Title) + "\n\n")
		b.WriteString(t.Error.Render(msgEmptyList) + "\n")
	} else {
		b.WriteString(m.list.View() + "\n")
	}
	b.WriteString(t.Muted.Render(ui.ProgressBar(s.Completed, s.Total, 28)))

	bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
	switch m.mode {
	case modeAdding, modeEditing:
		title := "Add new todo"
		if m.mode == modeEditing {
			title = "Edit todo"
		}
		if m.inputErr != "" {
			title += " · " + t.Error.Render(m.inputErr)
		}
		b.WriteString("\n" + bar.Render(title+"\n"+m.ti.View()))
	case modeConfirm:
		b.WriteString("\n" + bar.Render(t.Pending.Render(m.confirmPrompt)+"\n"+t.Muted.Render("y: yes · n: no")))
	}
	if m.status != "" {
		b.WriteString("\n" + t.Error.Render(m.status))
	}
	return ui.Panel([]string{b.String()})
}

// Run starts the interactive list and blocks until the user quits.
func Run(ctx context.Context, ops todo.Ops) error {
	m := New(ctx, ops)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
