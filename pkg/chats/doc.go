// Package chats provides a provider-agnostic data model for playground
// generations.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/playground/pkg/chats/role]: conversation roles (system, user, assistant)
//   - [github.com/germanamz/playground/pkg/chats/message]: messages composed of a role, sender, and text
//   - [github.com/germanamz/playground/pkg/chats/chat]: the conversation handed to a model adapter
//
// No provider or API code is included. Adapters translate a chat into the
// vendor's request shape.
package chats
