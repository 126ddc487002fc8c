package tui

import (
	"github.com/jmaren/registra/internal/chat"
	"github.com/jmaren/registra/internal/gateway"
)

// turnMsg signals a completed conversation turn.
type turnMsg struct {
	Appended []chat.Message
}

// stateMsg carries the backend's slot state dump for /state.
type stateMsg struct {
	State *gateway.ConversationState
	Err   error
}
