package llm

import (
	"context"
	"fmt"
)

// Role identifies the author of a conversation message.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client is an abstraction over LLM providers
type Client interface {
	// Chat continues a conversation under a system prompt and returns the model's reply text
	Chat(ctx context.Context, system string, messages []Message, tier ModelTier) (string, error)
	// GenerateJSON generates JSON content from a single prompt using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderAnthropic:
		return NewAnthropicClient(config, apiKey)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}

// splitConversation checks that a conversation ends with a user turn and
// returns the earlier turns and the final user message.
func splitConversation(messages []Message) ([]Message, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("conversation is empty")
	}
	last := messages[len(messages)-1]
	if last.Role != RoleUser {
		return nil, "", fmt.Errorf("conversation must end with a user message, got %q", last.Role)
	}
	return messages[:len(messages)-1], last.Content, nil
}
