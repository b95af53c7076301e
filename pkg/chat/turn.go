// Package chat provides the conversation data model shared by the web view
// and the terminal client.
package chat

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation. A turn is immutable once
// created; its position in the log reflects append order. Role alternation
// is not enforced.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
