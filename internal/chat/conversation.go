package chat

import (
	"context"
	"strings"
	"sync"
)

// DefaultGreeting seeds a fresh conversation.
const DefaultGreeting = "Hi! I can help you explore enrollment trends. " +
	"Ask me something like \"How many students enrolled in Fall 2024?\""

// ErrorReplyText is the fixed assistant message shown when the backend is
// unreachable or answers with a non-2xx status.
const ErrorReplyText = "Sorry, I ran into a problem reaching the server. Please try again."

// ConfirmChoice selects one of the confirmation answers.
type ConfirmChoice int

const (
	ConfirmYes ConfirmChoice = iota
	ConfirmChange
)

// Literal texts sent to the backend for each confirmation choice.
const (
	confirmYesText    = "yes"
	confirmChangeText = "I want to change something"
)

// Text returns the literal sent to the backend for the choice.
func (c ConfirmChoice) Text() string {
	if c == ConfirmChange {
		return confirmChangeText
	}
	return confirmYesText
}

// Conversation owns the ordered message list, the backend conversation id
// and the input mode. One gateway request is in flight at most; a Submit
// while a request is pending is a no-op. All mutation happens under mu, the
// gateway call itself runs unlocked so the flag can gate concurrent callers.
type Conversation struct {
	mu       sync.Mutex
	gw       Gateway
	greeting string

	id       string
	mode     Mode
	inFlight bool
	messages []Message
}

// NewConversation creates a conversation seeded with the greeting message.
// An empty greeting falls back to DefaultGreeting.
func NewConversation(gw Gateway, greeting string) *Conversation {
	if greeting == "" {
		greeting = DefaultGreeting
	}
	c := &Conversation{gw: gw, greeting: greeting}
	c.reset()
	return c
}

// ID returns the backend-assigned conversation id, empty until the first reply.
func (c *Conversation) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

// Mode returns the current input mode.
func (c *Conversation) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// InFlight reports whether a gateway request is pending.
func (c *Conversation) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Messages returns a copy of the message list.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Submit sends user text through the gateway and appends both sides of the
// turn. It returns the messages appended by this call: nothing when the text
// is blank, a request is already in flight, or the conversation is in its
// terminal confirmed state. A transport failure appends ErrorReplyText and
// leaves the mode unchanged; it is never escalated to the caller.
func (c *Conversation) Submit(ctx context.Context, text string) []Message {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return c.send(ctx, text, false)
}

// RespondToConfirmation answers a pending confirmation request. Valid only
// while the mode is awaiting_confirmation; otherwise a no-op.
func (c *Conversation) RespondToConfirmation(ctx context.Context, choice ConfirmChoice) []Message {
	return c.send(ctx, choice.Text(), true)
}

// Reset clears the conversation id, restores composing mode, and replaces
// the message list with a single fresh greeting. It returns the greeting.
func (c *Conversation) Reset() Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	return c.messages[0]
}

func (c *Conversation) reset() {
	c.id = ""
	c.mode = ModeComposing
	c.inFlight = false
	c.messages = []Message{newMessage(RoleAssistant, c.greeting)}
}

func (c *Conversation) send(ctx context.Context, text string, confirmation bool) []Message {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil
	}
	if confirmation && c.mode != ModeAwaitingConfirmation {
		c.mu.Unlock()
		return nil
	}
	if !confirmation && c.mode == ModeConfirmed {
		// Terminal until Reset.
		c.mu.Unlock()
		return nil
	}
	userMsg := newMessage(RoleUser, text)
	c.messages = append(c.messages, userMsg)
	c.inFlight = true
	id := c.id
	c.mu.Unlock()

	reply, err := c.gw.Send(ctx, text, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if err != nil {
		errMsg := newMessage(RoleAssistant, ErrorReplyText)
		c.messages = append(c.messages, errMsg)
		return []Message{userMsg, errMsg}
	}

	if reply.ConversationID != "" {
		c.id = reply.ConversationID
	}
	switch {
	case reply.Confirmed:
		c.mode = ModeConfirmed
	case reply.AwaitingConfirmation:
		c.mode = ModeAwaitingConfirmation
	default:
		c.mode = ModeComposing
	}

	assistantMsg := newMessage(RoleAssistant, reply.Response)
	c.messages = append(c.messages, assistantMsg)
	return []Message{userMsg, assistantMsg}
}
