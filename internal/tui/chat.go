// Package tui is the interactive chat surface: a viewport over the
// conversation history and a textarea for the next question.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hyperjump/docchat/internal/cli"
	"github.com/hyperjump/docchat/internal/models"
	"github.com/hyperjump/docchat/internal/session"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	snippetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// askDoneMsg signals that a SubmitQuestion call has completed (either way).
type askDoneMsg struct{}

// fileReloadedMsg signals that the watched document was re-uploaded.
type fileReloadedMsg struct{}

// FileReloaded returns the message the watcher sends into the program after
// re-submitting an upload.
func FileReloaded() tea.Msg {
	return fileReloadedMsg{}
}

// Model is the bubbletea model over a session.
type Model struct {
	session  *session.Session
	viewport viewport.Model
	textarea textarea.Model
	width    int
	height   int

	// lastLen tracks the rendered history length; the viewport jumps to
	// the bottom only when it changes.
	lastLen  int
	thinking bool
	ready    bool
}

// New creates the chat model over an already-uploaded session.
func New(s *session.Session) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about the document..."
	ta.Focus()
	ta.CharLimit = 2000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	return Model{
		session:  s,
		textarea: ta,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textarea.SetWidth(msg.Width - 4)
		vpHeight := msg.Height - 10
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = vpHeight
		}
		m.refreshHistory()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.session.SetPending(m.textarea.Value())
			if !m.thinking && m.session.CanAsk() {
				question := m.textarea.Value()
				m.thinking = true
				return m, m.ask(question)
			}
			return m, nil
		}

	case askDoneMsg:
		m.thinking = false
		if m.session.Err() == "" {
			m.textarea.Reset()
		}
		m.refreshHistory()
		return m, nil

	case fileReloadedMsg:
		m.refreshHistory()
		return m, nil
	}

	// Typing stays possible while a request is in flight; only submission
	// is gated.
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		m.session.SubmitQuestion(context.Background(), question)
		return askDoneMsg{}
	}
}

// refreshHistory re-renders the viewport content and scrolls to the bottom
// strictly when the history length has changed.
func (m *Model) refreshHistory() {
	if !m.ready {
		return
	}
	history := m.session.History()
	m.viewport.SetContent(renderTurns(history, m.viewport.Width))
	if len(history) != m.lastLen {
		m.lastLen = len(history)
		m.viewport.GotoBottom()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.titleLine()) + "\n")
	b.WriteString(m.statusLine() + "\n")
	b.WriteString(borderStyle.Render(m.viewport.View()))
	b.WriteString("\n\n")
	b.WriteString(m.textarea.View() + "\n")
	b.WriteString(helpStyle.Render("Enter: send • Esc: quit"))
	return b.String()
}

func (m Model) titleLine() string {
	file := m.session.File()
	if file == nil {
		return "docchat — no document"
	}
	return fmt.Sprintf("docchat — %s (%s)", file.Name, cli.FormatSize(file.Size))
}

// statusLine shows at most one line: the in-flight indicator, else the most
// recent error, else nothing.
func (m Model) statusLine() string {
	if m.thinking {
		return statusStyle.Render("Thinking...")
	}
	if errMsg := m.session.Err(); errMsg != "" {
		return errorStyle.Render(errMsg)
	}
	return ""
}

// renderTurns formats the conversation for the viewport.
func renderTurns(turns []models.ChatTurn, width int) string {
	if len(turns) == 0 {
		return snippetStyle.Render("No questions yet. Type below and press Enter.")
	}
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(questionStyle.Render("You: "))
		b.WriteString(turn.Question)
		b.WriteString("\n")
		b.WriteString(answerStyle.Render("Assistant: "))
		b.WriteString(turn.Answer)
		b.WriteString("\n")
		for _, snippet := range turn.Context {
			b.WriteString(snippetStyle.Render("  › " + cli.Truncate(snippet, maxSnippetLen(width))))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func maxSnippetLen(width int) int {
	if width <= 8 {
		return 120
	}
	return width - 4
}
