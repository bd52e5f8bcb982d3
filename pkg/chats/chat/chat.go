// Package chat provides the conversation container handed to model adapters.
package chat

import (
	"github.com/germanamz/playground/pkg/chats/message"
	"github.com/germanamz/playground/pkg/chats/role"
)

// Chat is a mutable conversation container. The zero value is ready to use.
// Chat is not safe for concurrent use; callers must synchronize externally.
type Chat struct {
	model    string
	messages []message.Message
}

// New creates a Chat pre-populated with the given messages.
func New(msgs ...message.Message) *Chat {
	return &Chat{messages: msgs}
}

// FromPrompt creates a Chat addressed to model holding a single user message.
func FromPrompt(model, prompt string) *Chat {
	c := New(message.New("user", role.User, prompt))
	c.model = model
	return c
}

// Model returns the model the conversation is addressed to, or an empty
// string when the adapter's default model should be used.
func (c *Chat) Model() string {
	return c.model
}

// Messages returns a copy of all messages in the conversation.
func (c *Chat) Messages() []message.Message {
	cp := make([]message.Message, len(c.messages))
	copy(cp, c.messages)
	return cp
}

// SystemPrompt returns the text of the first system message, or an empty
// string if there is none.
func (c *Chat) SystemPrompt() string {
	for _, m := range c.messages {
		if m.Role == role.System {
			return m.Text
		}
	}
	return ""
}
