// Package tui provides a Bubble Tea settings editor for AutoMarkCheck.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/config"
	"github.com/BIOS9/AutoMarkCheckCrossplatform/internal/logging"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))
)

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateLoading State = iota
	StateBrowse
	StateEditing
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   logging.Level
}

// Model is the Bubble Tea model for the settings editor.
type Model struct {
	state   State
	input   textinput.Model
	spinner spinner.Model

	ctx   context.Context
	store *config.Store

	fields   []config.Field
	cursor   int
	settings *config.Settings
	saved    config.Settings

	status      string
	statusLevel logging.Level
	logs        []LogEntry
	err         error

	changes <-chan config.Change
	entries <-chan logging.Entry

	copy func(string) error

	width  int
	height int
}

// NewModel creates an editor for the settings in store. Entries logged
// through logger are shown at the bottom of the screen; logger may be nil.
func NewModel(ctx context.Context, store *config.Store, logger *logging.Logger) Model {
	ti := textinput.New()
	ti.CharLimit = 255
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	var entries chan logging.Entry
	if logger != nil {
		entries = make(chan logging.Entry, 64)
		logger.OnEntry(func(e logging.Entry) {
			select {
			case entries <- e:
			default:
			}
		})
	}

	return Model{
		state:   StateLoading,
		input:   ti,
		spinner: sp,
		ctx:     ctx,
		store:   store,
		fields:  config.Fields(),
		entries: entries,
		copy:    clipboard.WriteAll,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.watch(), m.waitForLog(), m.spinner.Tick)
}

// Message types
type (
	// LoadedMsg is sent when the settings file has been read.
	LoadedMsg struct {
		Settings *config.Settings
		Err      error
	}

	// SavedMsg is sent when a save completes.
	SavedMsg struct {
		Settings config.Settings
		Err      error
	}

	// WatchMsg carries the change channel once watching has started.
	WatchMsg struct {
		Changes <-chan config.Change
		Err     error
	}

	// ChangeMsg is sent when the settings file changes on disk.
	ChangeMsg struct {
		Change config.Change
	}

	// LogMsg is sent for each log entry.
	LogMsg struct {
		Entry logging.Entry
	}
)

// Dirty reports whether there are unsaved edits.
func (m Model) Dirty() bool {
	return m.settings != nil && *m.settings != m.saved
}

// Settings returns the settings being edited, or nil while loading.
func (m Model) Settings() *config.Settings {
	return m.settings
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.state == StateEditing {
			return m.updateEditing(msg)
		}
		return m.updateBrowse(msg)

	case spinner.TickMsg:
		if m.state == StateLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case LoadedMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		m.adopt(msg.Settings)
		m.state = StateBrowse
		m.err = nil
		m.setStatus(logging.LevelInfo, "Loaded "+m.store.Path())

	case SavedMsg:
		if msg.Err != nil {
			m.setStatus(logging.LevelError, "Save failed: "+msg.Err.Error())
			return m, nil
		}
		m.saved = msg.Settings
		m.setStatus(logging.LevelInfo, "Saved "+m.store.Path())

	case WatchMsg:
		if msg.Err != nil {
			m.setStatus(logging.LevelWarning, "Not watching for changes: "+msg.Err.Error())
			return m, nil
		}
		m.changes = msg.Changes
		cmds = append(cmds, m.waitForChange())

	case ChangeMsg:
		m.applyChange(msg.Change)
		cmds = append(cmds, m.waitForChange())

	case LogMsg:
		m.logs = append(m.logs, LogEntry{Message: msg.Entry.Message, Level: msg.Entry.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}
		cmds = append(cmds, m.waitForLog())
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "r":
		if m.state == StateBrowse || m.state == StateError {
			m.state = StateLoading
			return m, tea.Batch(m.load(), m.spinner.Tick)
		}
	}

	if m.state != StateBrowse {
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.fields)-1 {
			m.cursor++
		}

	case "enter", " ":
		return m.activate()

	case "ctrl+s":
		return m, m.save()

	case "d":
		m.settings = config.DefaultSettings()
		m.setStatus(logging.LevelWarning, "Defaults restored; ctrl+s to save")

	case "c":
		data, err := json.MarshalIndent(m.settings, "", "  ")
		if err == nil {
			err = m.copy(string(data))
		}
		if err != nil {
			m.setStatus(logging.LevelError, "Copy failed: "+err.Error())
		} else {
			m.setStatus(logging.LevelInfo, "Settings copied to clipboard")
		}
	}

	return m, nil
}

// activate toggles bools, cycles the log level, and opens the text input for
// everything else.
func (m Model) activate() (tea.Model, tea.Cmd) {
	f := m.fields[m.cursor]
	switch f.Kind {
	case config.KindBool:
		m.settings.CoursesPublic = !m.settings.CoursesPublic
		return m, nil
	case config.KindLevel:
		m.settings.LogLevel = m.settings.LogLevel.Next()
		return m, nil
	}

	value, _ := m.settings.Get(f.Name)
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Placeholder = f.Description
	m.state = StateEditing
	return m, m.input.Focus()
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.input.Blur()
		m.state = StateBrowse
		return m, nil

	case "enter":
		f := m.fields[m.cursor]
		if err := m.settings.Set(f.Name, m.input.Value()); err != nil {
			m.setStatus(logging.LevelError, err.Error())
			return m, nil
		}
		m.input.Blur()
		m.state = StateBrowse
		m.setStatus(logging.LevelInfo, f.Name+" updated; ctrl+s to save")
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) adopt(s *config.Settings) {
	m.settings = s
	m.saved = *s
}

func (m *Model) applyChange(c config.Change) {
	switch {
	case c.Err != nil:
		m.setStatus(logging.LevelWarning, "Settings file changed but could not be read: "+c.Err.Error())
	case m.state == StateEditing || m.Dirty():
		if *c.Settings != m.saved {
			m.setStatus(logging.LevelWarning, "Settings file changed on disk; r to reload")
		}
	default:
		if m.settings == nil || *c.Settings != *m.settings {
			m.setStatus(logging.LevelInfo, "Reloaded settings changed on disk")
		}
		m.adopt(c.Settings)
		if m.state != StateBrowse {
			m.state = StateBrowse
			m.err = nil
		}
	}
}

func (m *Model) setStatus(level logging.Level, status string) {
	m.statusLevel = level
	m.status = status
}

func (m Model) load() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		s, err := store.Load(ctx)
		return LoadedMsg{Settings: s, Err: err}
	}
}

func (m Model) save() tea.Cmd {
	ctx, store := m.ctx, m.store
	snapshot := *m.settings
	return func() tea.Msg {
		err := store.Save(ctx, &snapshot)
		return SavedMsg{Settings: snapshot, Err: err}
	}
}

func (m Model) watch() tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		changes, err := store.Watch(ctx)
		return WatchMsg{Changes: changes, Err: err}
	}
}

func (m Model) waitForChange() tea.Cmd {
	changes := m.changes
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-changes
		if !ok {
			return nil
		}
		return ChangeMsg{Change: c}
	}
}

func (m Model) waitForLog() tea.Cmd {
	entries := m.entries
	if entries == nil {
		return nil
	}
	return func() tea.Msg {
		return LogMsg{Entry: <-entries}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("AutoMarkCheck Settings"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.store.Path()))
	b.WriteString("\n\n")

	switch m.state {
	case StateLoading:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Loading settings..."))
		b.WriteString("\n")
	case StateBrowse, StateEditing:
		b.WriteString(m.viewFields())
	case StateError:
		b.WriteString(m.viewError())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(levelStyle(m.statusLevel).Render(m.status))
		b.WriteString("\n")
	}

	if len(m.logs) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderLogs())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewFields() string {
	var b strings.Builder

	heading := "Settings"
	if m.Dirty() {
		heading += " (unsaved)"
	}
	b.WriteString(subtitleStyle.Render(heading))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		value, _ := m.settings.Get(f.Name)
		if f.Kind == config.KindString {
			value = fmt.Sprintf("%q", value)
		}

		line := fmt.Sprintf("%-20s %s", f.Name, value)
		if i == m.cursor {
			if m.state == StateEditing {
				line = fmt.Sprintf("%-20s %s", f.Name, m.input.View())
			}
			b.WriteString(selectedStyle.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.fields[m.cursor].Description))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Could not load settings:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		prefix := "•"
		switch log.Level {
		case logging.LevelError:
			prefix = "✗"
		case logging.LevelWarning:
			prefix = "!"
		case logging.LevelInfo:
			prefix = "›"
		}
		b.WriteString(levelStyle(log.Level).Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func levelStyle(level logging.Level) lipgloss.Style {
	switch level {
	case logging.LevelError:
		return errorStyle
	case logging.LevelWarning:
		return warningStyle
	case logging.LevelInfo:
		return infoStyle
	default:
		return dimStyle
	}
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateBrowse:
		return "↑/↓: select • enter: edit • ctrl+s: save • r: reload • d: defaults • c: copy • q: quit"
	case StateEditing:
		return "enter: apply • esc: cancel"
	case StateError:
		return "r: retry • q: quit"
	}
	return "q: quit"
}

// Run starts the settings editor and blocks until it exits.
func Run(ctx context.Context, store *config.Store, logger *logging.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewModel(ctx, store, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
