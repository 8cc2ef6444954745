// Package tui is the terminal presentation of a request flow.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/taskforce/pkg/flow"
)

// Controller is the subset of *flow.Controller the UI drives.
type Controller interface {
	Snapshot() flow.Snapshot
	FetchSubtasks(ctx context.Context, description string) error
	ToggleSelection(index int) error
	FetchStructure(ctx context.Context) error
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#3B82F6")).
			PaddingLeft(1).
			PaddingRight(1)
	headingStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	checkedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type focus int

const (
	focusInput focus = iota
	focusList
)

// fetchDoneMsg reports that a controller request returned. err is only set
// for rejected preconditions; request failures live in the snapshot.
type fetchDoneMsg struct{ err error }

type Model struct {
	ctx        context.Context
	controller Controller
	input      textinput.Model
	spinner    spinner.Model
	snap       flow.Snapshot
	focus      focus
	cursor     int
	pending    bool
	notice     string
}

func NewModel(ctx context.Context, controller Controller) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter Task"
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:        ctx,
		controller: controller,
		input:      ti,
		spinner:    sp,
		snap:       controller.Snapshot(),
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) loading() bool {
	return m.pending || m.snap.Loading
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchDoneMsg:
		m.pending = false
		m.snap = m.controller.Snapshot()
		m.notice = ""
		if msg.err != nil {
			m.notice = msg.err.Error()
		}
		if m.cursor >= len(m.snap.Subtasks) {
			m.cursor = 0
		}
		if m.focus == focusInput && len(m.snap.Subtasks) > 0 && msg.err == nil {
			m.setFocus(focusList)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "shift+tab":
			if m.focus == focusInput {
				m.setFocus(focusList)
			} else {
				m.setFocus(focusInput)
			}
			return m, nil
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		description := m.input.Value()
		if m.loading() || !m.snap.CanSubmit(description) {
			return m, nil
		}
		m.pending = true
		m.notice = ""
		ctx, c := m.ctx, m.controller
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return fetchDoneMsg{err: c.FetchSubtasks(ctx, description)}
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Subtasks)-1 {
			m.cursor++
		}
	case " ", "space", "x":
		if m.loading() || len(m.snap.Subtasks) == 0 {
			return m, nil
		}
		if err := m.controller.ToggleSelection(m.cursor); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.snap = m.controller.Snapshot()
	case "s", "enter":
		if m.loading() || !m.snap.CanRequestStructure() {
			return m, nil
		}
		m.pending = true
		m.notice = ""
		ctx, c := m.ctx, m.controller
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			return fetchDoneMsg{err: c.FetchStructure(ctx)}
		})
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Welcome to TaskForce"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.loading() {
		b.WriteString(m.spinner.View() + " Loading...\n")
	}
	if m.snap.Error != "" {
		b.WriteString(errorStyle.Render(m.snap.Error) + "\n")
	}
	if m.notice != "" {
		b.WriteString(disabledStyle.Render(m.notice) + "\n")
	}

	if len(m.snap.Subtasks) > 0 {
		b.WriteString(headingStyle.Render("Subtasks:") + "\n")
		for i, s := range m.snap.Subtasks {
			cursor := "  "
			if m.focus == focusList && i == m.cursor {
				cursor = cursorStyle.Render("> ")
			}
			box := "[ ]"
			if m.snap.IsSelected(i) {
				box = checkedStyle.Render("[x]")
			}
			fmt.Fprintf(&b, "%s%s %s\n", cursor, box, s.String())
		}
	}

	if len(m.snap.Structure) > 0 {
		b.WriteString(headingStyle.Render("Overall Structure:") + "\n")
		for i, step := range m.snap.Structure {
			fmt.Fprintf(&b, "%d. %s - %s\n", i+1, step.Step, step.TimeEstimate)
			for _, d := range step.Details {
				fmt.Fprintf(&b, "   - %s\n", d)
			}
		}
	}

	help := "enter: get subtasks • tab: switch focus • esc: quit"
	if m.focus == focusList {
		help = "space: toggle • s: get overall structure • tab: edit task • q: quit"
	}
	b.WriteString(helpStyle.Render(help))
	b.WriteString("\n")
	return b.String()
}

// Run starts the terminal UI and blocks until the user quits.
func Run(ctx context.Context, controller Controller) error {
	p := tea.NewProgram(NewModel(ctx, controller), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return fmt.Errorf("tui run failed: %w", err)
	}
	return nil
}
