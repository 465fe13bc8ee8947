// Command chat is a terminal client for the chat server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/boneycanute/bare-bones-chat/internal/client"
	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	pricingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
)

// stateChangedMsg signals that the controller mutated conversation state.
type stateChangedMsg struct{}

// submitDoneMsg signals that a Submit call returned.
type submitDoneMsg struct{ err error }

type chatModel struct {
	ctl       *client.Controller
	agentName string

	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool
}

func newChatModel(ctl *client.Controller, agentName string) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.Focus()
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return chatModel{ctl: ctl, agentName: agentName, textarea: ta, spinner: sp}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - m.textarea.Height() - 5
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(msg.Width - 2)
		m.refreshMessages()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.ctl.Streaming() && strings.TrimSpace(m.textarea.Value()) != "" {
				m.ctl.SetInput(m.textarea.Value())
				m.textarea.Reset()
				return m, submitCmd(m.ctl)
			}
		case tea.KeyCtrlG:
			m.rateLastAssistant(domain.RatingPositive)
		case tea.KeyCtrlB:
			m.rateLastAssistant(domain.RatingNegative)
		case tea.KeyCtrlX:
			m.ctl.DismissError()
		}

	case stateChangedMsg:
		m.refreshMessages()

	case submitDoneMsg:
		// Errors already live on the controller; the banner shows them.
		m.refreshMessages()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m chatModel) View() string {
	if !m.ready {
		return "loading..."
	}

	header := headerStyle.Render(m.agentName)
	header += helpStyle.Render(fmt.Sprintf("  credits: %d", m.ctl.Credits()))

	status := ""
	if m.ctl.Streaming() {
		status = m.spinner.View() + " thinking..."
	}
	if err := m.ctl.Err(); err != nil {
		status = errorStyle.Render("error: "+err.Error()) + helpStyle.Render("  (ctrl+x to dismiss)")
	}

	help := helpStyle.Render("enter: send • ctrl+g/ctrl+b: rate last reply • ctrl+c: quit")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, m.viewport.View(), status, m.textarea.View(), help)
}

// refreshMessages re-renders the transcript into the viewport and scrolls to
// the bottom.
func (m *chatModel) refreshMessages() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, msg := range m.ctl.Messages() {
		if msg.IsPricing {
			b.WriteString(pricingStyle.Render("You are out of credits. Upgrade to keep chatting.") + "\n\n")
			continue
		}

		label := assistantStyle.Render("assistant")
		if msg.Role == domain.RoleUser {
			label = userStyle.Render("you")
		}
		suffix := ""
		if msg.Feedback != nil {
			suffix = helpStyle.Render(" [" + msg.Feedback.Rating + "]")
		}
		b.WriteString(label + suffix + "\n" + msg.Content + "\n\n")
	}

	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(b.String()))
	m.viewport.GotoBottom()
}

// rateLastAssistant records feedback against the newest assistant message.
func (m *chatModel) rateLastAssistant(rating string) {
	messages := m.ctl.Messages()
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleAssistant && !messages[i].IsPricing {
			m.ctl.Feedback(messages[i].ID, rating)
			return
		}
	}
}

// submitCmd runs the blocking submission off the UI goroutine.
func submitCmd(ctl *client.Controller) tea.Cmd {
	return func() tea.Msg {
		return submitDoneMsg{err: ctl.Submit(context.Background())}
	}
}

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "chat server base URL")
	agentID := flag.String("agent", "", "agent id to chat with")
	namespace := flag.String("namespace", "", "vector namespace for retrieval")
	flag.Parse()

	c := client.New(*serverURL)
	ctl := client.NewController(c)
	ctl.AgentID = *agentID
	ctl.Namespace = *namespace

	agentName := "bare-bones-chat"
	if *agentID != "" {
		if agent, err := c.GetAgent(context.Background(), *agentID); err != nil {
			log.Printf("WARN: failed to load agent %s: %v", *agentID, err)
		} else {
			agentName = agent.Name
			if agent.OpeningMessage != "" {
				ctl.AppendOpeningMessage(agent.OpeningMessage)
			}
		}
	}

	p := tea.NewProgram(newChatModel(ctl, agentName), tea.WithAltScreen())
	ctl.OnChange = func() {
		p.Send(stateChangedMsg{})
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
