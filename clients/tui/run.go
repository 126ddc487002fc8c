package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmaren/registra/internal/chat"
	"github.com/jmaren/registra/internal/gateway"
)

// Run starts the TUI and blocks until the user quits.
func Run(conv *chat.Conversation, gw *gateway.Client) error {
	p := tea.NewProgram(NewApp(conv, gw), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
