// Package completion provides a chat-completion client for OpenAI-compatible
// API endpoints.
package completion

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Options struct {
	Temperature float64
	MaxTokens   int
}

// Client produces a completion for a conversation. Implementations must be
// safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, messages []Message, opts Options) (string, error)
}
