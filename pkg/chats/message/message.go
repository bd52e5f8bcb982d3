// Package message defines the Message type used in LLM conversations.
package message

import (
	"github.com/germanamz/playground/pkg/chats/role"
)

// Message represents a single message in a conversation.
// It is a value type that copies cheaply.
type Message struct {
	Sender   string
	Role     role.Role
	Text     string
	Metadata map[string]any
}

// New creates a message with the given sender, role, and text.
func New(sender string, r role.Role, text string) Message {
	return Message{
		Sender: sender,
		Role:   r,
		Text:   text,
	}
}

// SetMeta sets a metadata key-value pair on the message.
// It initializes the Metadata map if nil.
func (m *Message) SetMeta(key string, value any) {
	if m.Metadata == nil {
		m.Metadata = make(map[string]any)
	}
	m.Metadata[key] = value
}

// GetMeta retrieves a metadata value by key.
func (m Message) GetMeta(key string) (any, bool) {
	if m.Metadata == nil {
		return nil, false
	}
	v, ok := m.Metadata[key]
	return v, ok
}
