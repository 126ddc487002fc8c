// Package chat holds the client-side conversation state: the append-only
// message list, the backend conversation id, and the three-way input mode.
package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn entry. Immutable once created; the message list
// only grows within a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func newMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Mode is the three-valued input state. Exactly one holds at any time.
type Mode string

const (
	// ModeComposing means normal input is enabled.
	ModeComposing Mode = "composing"
	// ModeAwaitingConfirmation means the backend asked for a yes/change answer.
	ModeAwaitingConfirmation Mode = "awaiting_confirmation"
	// ModeConfirmed is terminal until Reset; only starting a new conversation
	// remains available.
	ModeConfirmed Mode = "confirmed"
)

// Reply is what the backend gateway returns for one turn.
type Reply struct {
	Response             string
	ConversationID       string
	Confirmed            bool
	AwaitingConfirmation bool
}

// Gateway sends one user message to the chat backend and returns its reply.
type Gateway interface {
	Send(ctx context.Context, message, conversationID string) (*Reply, error)
}
