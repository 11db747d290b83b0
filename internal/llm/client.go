// Package llm integrates the hosted language model used for query
// translation and result summarization.
package llm

import (
	"context"
)

// Message is one role-tagged entry in a chat completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Role values accepted by the completion endpoint
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Client is the capability the pipeline depends on: an ordered list of
// messages in, one text completion out. Implementations are stateless
// between calls.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Config holds configuration for LLM clients
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   int
	MaxTokens int
}
