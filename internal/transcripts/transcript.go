// Package transcripts persists chat conversations and their query state.
package transcripts

import (
	"time"

	"github.com/jmaren/registra/internal/dialog"
)

// Status is the lifecycle state of a conversation.
type Status string

const (
	StatusActive    Status = "active"
	StatusConfirmed Status = "confirmed"
)

// Transcript holds metadata about one conversation.
type Transcript struct {
	ID           string            `json:"id"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Status       Status            `json:"status"`
	MessageCount int               `json:"message_count"`
	Query        dialog.QueryState `json:"query"`
	AskingFor    string            `json:"asking_for,omitempty"`
}

// Message is a single turn, serializable to JSONL.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	Ts      time.Time `json:"ts"`
}

// Store defines the persistence interface for transcripts.
type Store interface {
	Create(id string) (*Transcript, error)
	Get(id string) (*Transcript, error)
	List() ([]*Transcript, error)
	UpdateMeta(t *Transcript) error
	Delete(id string) error
	AppendMessage(id string, msg Message) error
	LoadMessages(id string) ([]Message, error)
}
