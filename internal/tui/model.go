// Package tui is the terminal view of the signed-in user's tasks, split into
// pending and completed groups.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tareas/internal/client"
	"tareas/internal/models"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const requestTimeout = 15 * time.Second

// doneMsg reports that a controller call finished.
type doneMsg struct {
	err error
}

type Model struct {
	ctrl   *client.Controller
	status *Status
	keys   KeyMap
	help   help.Model
	input  textinput.Model

	adding    bool
	busy      bool
	cursor    int
	width     int
	loggedOut bool
	quitting  bool
}

// New builds the view. status must be the Notifier and Navigator the
// controller was created with.
func New(ctrl *client.Controller, status *Status) Model {
	ti := textinput.New()
	ti.Placeholder = "Título de la tarea"
	ti.CharLimit = 255
	ti.Prompt = "+ "

	return Model{
		ctrl:   ctrl,
		status: status,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		input:  ti,
	}
}

// LoggedOut reports whether the view closed because the session ended.
func (m Model) LoggedOut() bool {
	return m.loggedOut
}

func (m Model) Init() tea.Cmd {
	return m.call(m.ctrl.Refresh)
}

func (m Model) call(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return doneMsg{err: fn(ctx)}
	}
}

// rows is the pending group followed by the completed group, the order the
// cursor walks.
func (m Model) rows() []models.Task {
	return append(m.ctrl.Pending(), m.ctrl.Completed()...)
}

func (m Model) selected() (models.Task, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return models.Task{}, false
	}
	return rows[m.cursor], true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case doneMsg:
		m.busy = false
		if m.status.Route() == client.RouteLogin {
			m.loggedOut = true
			m.quitting = true
			return m, tea.Quit
		}
		if n := len(m.rows()); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		title := strings.TrimSpace(m.input.Value())
		m.adding = false
		m.input.Blur()
		m.input.Reset()
		if title == "" {
			return m, nil
		}
		m.busy = true
		return m, m.call(func(ctx context.Context) error {
			return m.ctrl.CreateTask(ctx, title, nil)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.adding = true
		return m, m.input.Focus()
	}

	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.busy = true
		return m, m.call(m.ctrl.Refresh)

	case key.Matches(msg, m.keys.Complete):
		task, ok := m.selected()
		if !ok || task.IsCompleted() {
			return m, nil
		}
		m.busy = true
		return m, m.call(func(ctx context.Context) error {
			return m.ctrl.CompleteTask(ctx, task.ID)
		})

	case key.Matches(msg, m.keys.Delete):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.busy = true
		return m, m.call(func(ctx context.Context) error {
			return m.ctrl.DeleteTask(ctx, task.ID)
		})
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	greeting := "Mis tareas"
	if user, ok := m.ctrl.Session().User(); ok {
		greeting = fmt.Sprintf("Hola, %s", user.Name)
	}
	b.WriteString(HeaderStyle.Render(greeting))
	b.WriteString("\n")

	pending := m.ctrl.Pending()
	completed := m.ctrl.Completed()

	b.WriteString(GroupTitleStyle.Render(fmt.Sprintf("Pendientes (%d)", len(pending))))
	b.WriteString("\n")
	b.WriteString(m.renderGroup(pending, 0, "No hay tareas pendientes"))

	b.WriteString("\n")
	b.WriteString(GroupTitleStyle.Render(fmt.Sprintf("Completadas (%d)", len(completed))))
	b.WriteString("\n")
	b.WriteString(m.renderGroup(completed, len(pending), "No hay tareas completadas"))

	if m.adding {
		b.WriteString("\n")
		b.WriteString(InputStyle.Render(m.input.View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) renderGroup(tasks []models.Task, offset int, empty string) string {
	if len(tasks) == 0 {
		return EmptyStyle.Render(empty) + "\n"
	}

	var b strings.Builder
	for i, task := range tasks {
		check := "[ ]"
		style := TaskStyle
		if task.IsCompleted() {
			check = "[x]"
			style = CompletedTaskStyle
		}
		if offset+i == m.cursor {
			style = SelectedTaskStyle
		}

		b.WriteString(style.Render(fmt.Sprintf("%s %s", check, task.Titulo)))
		b.WriteString("\n")
		if task.Descripcion != nil && *task.Descripcion != "" {
			b.WriteString(DescriptionStyle.Render(*task.Descripcion))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderStatus() string {
	if m.busy {
		return lipgloss.NewStyle().Foreground(ColorFgMuted).Render("…")
	}
	text, isErr := m.status.Current()
	if text == "" {
		return ""
	}
	if isErr {
		return StatusErrorStyle.Render(text)
	}
	return StatusSuccessStyle.Render(text)
}
