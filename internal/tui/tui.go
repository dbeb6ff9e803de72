// internal/tui/tui.go
// Package tui provides the interactive session interface for chorus.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chorus-cli/chorus/internal/session"
	"github.com/chorus-cli/chorus/internal/util"
)

var (
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// responseMsg carries a completed response back into the update loop.
type responseMsg string

// model is the Bubble Tea model for the interactive session.
type model struct {
	ctx        context.Context
	sess       *session.Session
	textArea   textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	transcript []string
	waiting    bool
	width      int
	height     int
}

func initialModel(ctx context.Context, sess *session.Session) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Ask anything, or type a command..."
	ta.Focus()
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	return &model{
		ctx:      ctx,
		sess:     sess,
		spinner:  s,
		textArea: ta,
		viewport: viewport.New(100, 20),
	}
}

// Init starts the spinner ticker.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

// Update handles key presses, window resizes, and completed responses.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = util.Max(msg.Height-4, 3)
		m.textArea.SetWidth(msg.Width - 2)
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				return m, nil
			}
			input := strings.TrimSpace(m.textArea.Value())
			if strings.EqualFold(input, "exit") {
				return m, tea.Quit
			}
			m.textArea.Reset()
			m.transcript = append(m.transcript, userStyle.Render("You: ")+input)
			m.refreshViewport()
			m.waiting = true
			return m, m.dispatch(input)
		}

	case responseMsg:
		m.waiting = false
		m.transcript = append(m.transcript, answerStyle.Render("Chorus: ")+string(msg), "")
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.textArea, cmd = m.textArea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// dispatch runs the session handler off the update loop.
func (m *model) dispatch(input string) tea.Cmd {
	return func() tea.Msg {
		return responseMsg(m.sess.Handle(m.ctx, input))
	}
}

func (m *model) refreshViewport() {
	width := util.Max(m.viewport.Width, 20)
	var lines []string
	for _, entry := range m.transcript {
		lines = append(lines, util.WrapToWidth(entry, width))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// View renders the transcript, input line, and status row.
func (m *model) View() string {
	status := helpStyle.Render("enter: send • esc: quit • \"exit\" also quits")
	if m.waiting {
		status = m.spinner.View() + " waiting for models..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), m.textArea.View(), status)
}

// Start runs the interactive session until the user exits.
func Start(ctx context.Context, sess *session.Session) error {
	program := tea.NewProgram(initialModel(ctx, sess), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
