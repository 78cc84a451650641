// Package tui provides the interactive task browser: groups on the
// left level, tasks within a group one level down, with lifecycle
// commands bound to single keys.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Caspar241/releasehub/internal/domain"
	"github.com/Caspar241/releasehub/internal/grouping"
	"github.com/Caspar241/releasehub/internal/lifecycle"
	"github.com/Caspar241/releasehub/internal/task"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginLeft(2)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true).
				PaddingLeft(2)

	itemStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			PaddingLeft(4)

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	snoozedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			PaddingLeft(4)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginLeft(2).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			MarginLeft(2)
)

// keyMap defines the keyboard shortcuts of the browser.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Back     key.Binding
	Complete key.Binding
	SnoozeS  key.Binding
	SnoozeD  key.Binding
	SnoozeW  key.Binding
	Dismiss  key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Enter:    key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter", "open")),
	Back:     key.NewBinding(key.WithKeys("esc", "left", "h"), key.WithHelp("esc", "back")),
	Complete: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),
	SnoozeS:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "snooze 2h")),
	SnoozeD:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "snooze 1d")),
	SnoozeW:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "snooze 1w")),
	Dismiss:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "dismiss")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type viewMode int

const (
	viewGroups viewMode = iota
	viewTasks
)

// browseModel is the bubbletea model for the task browser.
type browseModel struct {
	ctx       context.Context
	grouping  *grouping.Service
	lifecycle *lifecycle.Manager
	userID    string

	groups      []*grouping.TaskGroup
	mode        viewMode
	groupCursor int
	taskCursor  int
	lastErr     string
	width       int
	height      int
}

// NewBrowseModel creates the browser model with groups preloaded.
func NewBrowseModel(ctx context.Context, groupingSvc *grouping.Service, lifecycleMgr *lifecycle.Manager, userID string) (browseModel, error) {
	m := browseModel{
		ctx:       ctx,
		grouping:  groupingSvc,
		lifecycle: lifecycleMgr,
		userID:    userID,
	}
	if err := m.reload(); err != nil {
		return m, err
	}
	return m, nil
}

func (m *browseModel) reload() error {
	groups, err := m.grouping.ListGroups(m.ctx, m.userID)
	if err != nil {
		return err
	}
	m.groups = groups
	if m.groupCursor >= len(m.groups) {
		m.groupCursor = max(0, len(m.groups)-1)
	}
	if m.mode == viewTasks && len(m.groups) > 0 {
		tasks := m.groups[m.groupCursor].Tasks
		if m.taskCursor >= len(tasks) {
			m.taskCursor = max(0, len(tasks)-1)
		}
	}
	return nil
}

// Init implements tea.Model.
func (m browseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.lastErr = ""
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			m.moveCursor(-1)
			return m, nil

		case key.Matches(msg, keys.Down):
			m.moveCursor(1)
			return m, nil

		case key.Matches(msg, keys.Enter):
			if m.mode == viewGroups && len(m.groups) > 0 {
				m.mode = viewTasks
				m.taskCursor = 0
			}
			return m, nil

		case key.Matches(msg, keys.Back):
			if m.mode == viewTasks {
				m.mode = viewGroups
			}
			return m, nil

		case key.Matches(msg, keys.Complete):
			m.runCommand(func(inst *task.Instance) error {
				_, err := m.lifecycle.Complete(m.ctx, inst.InstanceID, inst.Version)
				return err
			})
			return m, nil

		case key.Matches(msg, keys.SnoozeS), key.Matches(msg, keys.SnoozeD), key.Matches(msg, keys.SnoozeW):
			hours := map[string]int{"1": 2, "2": 24, "3": 168}[msg.String()]
			m.runCommand(func(inst *task.Instance) error {
				_, err := m.lifecycle.Snooze(m.ctx, inst.InstanceID, hours, inst.Version)
				return err
			})
			return m, nil

		case key.Matches(msg, keys.Dismiss):
			m.runCommand(func(inst *task.Instance) error {
				_, err := m.lifecycle.Dismiss(m.ctx, inst.InstanceID, inst.Version)
				return err
			})
			return m, nil
		}
	}

	return m, nil
}

func (m *browseModel) moveCursor(delta int) {
	if m.mode == viewGroups {
		m.groupCursor = clamp(m.groupCursor+delta, 0, len(m.groups)-1)
		return
	}
	if len(m.groups) > 0 {
		m.taskCursor = clamp(m.taskCursor+delta, 0, len(m.groups[m.groupCursor].Tasks)-1)
	}
}

// runCommand applies a lifecycle command to the selected task and
// reloads the projection so progress and ordering stay current.
func (m *browseModel) runCommand(command func(*task.Instance) error) {
	if m.mode != viewTasks || len(m.groups) == 0 {
		return
	}
	tasks := m.groups[m.groupCursor].Tasks
	if m.taskCursor >= len(tasks) {
		return
	}

	if err := command(tasks[m.taskCursor]); err != nil {
		m.lastErr = err.Error()
		return
	}
	if err := m.reload(); err != nil {
		m.lastErr = err.Error()
	}
}

// View implements tea.Model.
func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ReleaseHub Tasks"))
	b.WriteString("\n\n")

	if len(m.groups) == 0 {
		b.WriteString(itemStyle.Render("No task groups yet. Apply a template first."))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("q: quit"))
		return b.String()
	}

	if m.mode == viewGroups {
		m.renderGroups(&b)
	} else {
		m.renderTasks(&b)
	}

	if m.lastErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("✗ " + firstLine(m.lastErr)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m browseModel) renderGroups(b *strings.Builder) {
	b.WriteString(headerStyle.Render(fmt.Sprintf("Groups: %d", len(m.groups))))
	b.WriteString("\n\n")

	for i, group := range m.groups {
		style := itemStyle
		cursor := "  "
		if i == m.groupCursor {
			style = selectedItemStyle
			cursor = "→ "
		}
		line := fmt.Sprintf("%s%s (%s) %d/%d",
			cursor, group.AnchorLabel, group.AnchorType,
			group.Progress.Completed, group.Progress.Total)
		if group.CycleKey != "" {
			line += fmt.Sprintf(" [%s]", group.CycleKey)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("↑/↓: navigate | enter: open | q: quit"))
}

func (m browseModel) renderTasks(b *strings.Builder) {
	group := m.groups[m.groupCursor]
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s — %d/%d done",
		group.AnchorLabel, group.Progress.Completed, group.Progress.Total)))
	b.WriteString("\n\n")

	now := time.Now().UTC()
	for i, inst := range group.Tasks {
		style := itemStyle
		cursor := "  "
		if i == m.taskCursor {
			style = selectedItemStyle
			cursor = "→ "
		}

		marker := "[ ]"
		switch inst.Status {
		case domain.StatusCompleted:
			marker = "[✓]"
			if i != m.taskCursor {
				style = doneStyle
			}
		case domain.StatusSnoozed:
			marker = "[z]"
			if i != m.taskCursor {
				style = snoozedStyle
			}
		}

		line := fmt.Sprintf("%s%s %s", cursor, marker, inst.Title)
		if inst.DueDate != nil {
			due := inst.DueDate.Format("2006-01-02")
			if inst.Overdue(now) && inst.Status == domain.StatusPending {
				due = overdueStyle.Render(due + " overdue")
			}
			line += "  " + due
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("c: complete | 1/2/3: snooze 2h/1d/1w | x: dismiss | esc: back | q: quit"))
}

// RunBrowser launches the interactive task browser.
func RunBrowser(ctx context.Context, groupingSvc *grouping.Service, lifecycleMgr *lifecycle.Manager, userID string) error {
	model, err := NewBrowseModel(ctx, groupingSvc, lifecycleMgr, userID)
	if err != nil {
		return err
	}

	program := tea.NewProgram(model)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running task browser: %w", err)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
