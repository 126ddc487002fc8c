package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmaren/registra/internal/chat"
	"github.com/jmaren/registra/internal/gateway"
)

// App is the root bubbletea model.
// Layout: CHAT VIEWPORT | INPUT ZONE | STATUS BAR.
type App struct {
	conv *chat.Conversation
	gw   *gateway.Client

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model

	width   int
	height  int
	ready   bool
	busy    bool
	pending string // user text shown while the request is in flight
	choice  int    // selected confirmation option

	system   []string // ephemeral /state and command output
	quitting bool
}

var confirmChoices = []chat.ConfirmChoice{chat.ConfirmYes, chat.ConfirmChange}

// NewApp creates the TUI over an existing conversation and its backend client.
func NewApp(conv *chat.Conversation, gw *gateway.Client) *App {
	ti := textinput.New()
	ti.Placeholder = "Ask about enrollment... (/state, /new, /quit)"
	ti.Focus()

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(AssistantStyle),
	)

	return &App{
		conv:  conv,
		gw:    gw,
		input: ti,
		spin:  sp,
	}
}

// Init starts the input cursor blink.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update processes all incoming messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		viewportHeight := a.height - a.inputHeight() - 1
		if viewportHeight < 3 {
			viewportHeight = 3
		}
		if !a.ready {
			a.viewport = viewport.New(a.width, viewportHeight)
			a.ready = true
		} else {
			a.viewport.Width = a.width
			a.viewport.Height = viewportHeight
		}
		a.input.Width = a.width - 4
		a.refresh()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if !a.busy {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case turnMsg:
		a.busy = false
		a.pending = ""
		a.choice = 0
		a.refresh()
		return a, nil

	case stateMsg:
		if msg.Err != nil {
			a.system = append(a.system, ErrorStyle.Render(fmt.Sprintf("state: %v", msg.Err)))
		} else {
			a.system = append(a.system, renderState(msg.State))
		}
		a.refresh()
		return a, nil
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		a.quitting = true
		return a, tea.Quit
	case "ctrl+n":
		return a.startNew()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	if a.busy {
		return a, nil
	}

	switch a.conv.Mode() {
	case chat.ModeAwaitingConfirmation:
		return a.handleConfirmKey(msg)
	case chat.ModeConfirmed:
		// Only a new conversation makes sense now; keep slash commands alive.
		if msg.String() == "enter" && strings.HasPrefix(a.input.Value(), "/") {
			return a.handleSlashCommand(a.input.Value())
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	default:
		return a.handleComposeKey(msg)
	}
}

func (a *App) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" {
		text := strings.TrimSpace(a.input.Value())
		if text == "" {
			return a, nil
		}
		if strings.HasPrefix(text, "/") {
			return a.handleSlashCommand(text)
		}
		a.input.SetValue("")
		return a.submit(text)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if a.choice > 0 {
			a.choice--
		}
		return a, nil
	case "down", "j", "tab":
		if a.choice < len(confirmChoices)-1 {
			a.choice++
		}
		return a, nil
	case "enter":
		choice := confirmChoices[a.choice]
		a.busy = true
		a.pending = choice.Text()
		a.refresh()
		conv := a.conv
		return a, tea.Batch(a.spin.Tick, func() tea.Msg {
			return turnMsg{Appended: conv.RespondToConfirmation(context.Background(), choice)}
		})
	}
	return a, nil
}

func (a *App) submit(text string) (tea.Model, tea.Cmd) {
	a.busy = true
	a.pending = text
	a.refresh()
	conv := a.conv
	return a, tea.Batch(a.spin.Tick, func() tea.Msg {
		return turnMsg{Appended: conv.Submit(context.Background(), text)}
	})
}

func (a *App) handleSlashCommand(cmd string) (tea.Model, tea.Cmd) {
	a.input.SetValue("")
	parts := strings.Fields(cmd)

	switch parts[0] {
	case "/quit":
		a.quitting = true
		return a, tea.Quit

	case "/new":
		return a.startNew()

	case "/state":
		id := a.conv.ID()
		if id == "" {
			a.system = append(a.system, MutedStyle.Render("No backend conversation yet. Say something first."))
			a.refresh()
			return a, nil
		}
		gw := a.gw
		return a, func() tea.Msg {
			state, err := gw.State(context.Background(), id)
			return stateMsg{State: state, Err: err}
		}

	default:
		a.system = append(a.system, MutedStyle.Render(fmt.Sprintf("Unknown command: %s", parts[0])))
		a.refresh()
		return a, nil
	}
}

func (a *App) startNew() (tea.Model, tea.Cmd) {
	if a.busy {
		return a, nil
	}
	a.conv.Reset()
	a.system = nil
	a.pending = ""
	a.choice = 0
	a.input.SetValue("")
	a.refresh()
	return a, a.input.Focus()
}

// refresh rebuilds the viewport content from the conversation.
func (a *App) refresh() {
	if !a.ready {
		return
	}
	a.viewport.SetContent(a.renderMessages())
	a.viewport.GotoBottom()
}

func (a *App) renderMessages() string {
	wrap := lipgloss.NewStyle().Width(a.width)

	var b strings.Builder
	for _, m := range a.conv.Messages() {
		switch m.Role {
		case chat.RoleUser:
			b.WriteString(UserStyle.Render("You: "))
		default:
			b.WriteString(AssistantStyle.Render("Registra: "))
		}
		b.WriteString(wrap.Render(m.Content))
		b.WriteString("\n\n")
	}
	if a.pending != "" {
		b.WriteString(UserStyle.Render("You: "))
		b.WriteString(wrap.Render(a.pending))
		b.WriteString("\n\n")
	}
	for _, line := range a.system {
		b.WriteString(line)
		b.WriteString("\n\n")
	}
	return b.String()
}

func renderState(s *gateway.ConversationState) string {
	var b strings.Builder
	b.WriteString(MutedStyle.Render(fmt.Sprintf("Conversation %s", s.ConversationID)))
	b.WriteString("\n")
	for k, v := range s.State {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("  %s: %v", k, v)))
		b.WriteString("\n")
	}
	if len(s.Missing) > 0 {
		b.WriteString(MutedStyle.Render(fmt.Sprintf("  missing: %s", strings.Join(s.Missing, ", "))))
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Render(fmt.Sprintf("  complete: %v", s.IsComplete)))
	return b.String()
}

func (a *App) inputHeight() int {
	if a.conv.Mode() == chat.ModeAwaitingConfirmation && !a.busy {
		return len(confirmChoices) + 2
	}
	return 2
}

// View renders CHAT | INPUT | STATUS.
func (a *App) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}
	if !a.ready {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.viewport.View(),
		a.inputView(),
		a.statusView(),
	)
}

func (a *App) inputView() string {
	if a.busy {
		return fmt.Sprintf("\n%s %s", a.spin.View(), MutedStyle.Render("thinking..."))
	}

	switch a.conv.Mode() {
	case chat.ModeAwaitingConfirmation:
		var b strings.Builder
		b.WriteString("\n")
		for i, c := range confirmChoices {
			if i == a.choice {
				b.WriteString(SelectedStyle.Render(fmt.Sprintf("> %s", c.Text())))
			} else {
				b.WriteString(MutedStyle.Render(fmt.Sprintf("  %s", c.Text())))
			}
			b.WriteString("\n")
		}
		b.WriteString(MutedStyle.Render("up/down to choose, enter to send"))
		return b.String()

	case chat.ModeConfirmed:
		return "\n" + MutedStyle.Render("Query confirmed. Press ctrl+n for a new conversation, ctrl+c to quit.")

	default:
		return "\n" + a.input.View()
	}
}

func (a *App) statusView() string {
	id := a.conv.ID()
	if id == "" {
		id = "new"
	}
	status := fmt.Sprintf("registra | %s | %s", id, a.conv.Mode())
	return StatusBarStyle.Width(a.width).Render(status)
}
