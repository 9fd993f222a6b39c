package llm

// CompletionRequest is a single-shot, non-streaming generation call.
// Credentials travel with each call so a provider never caches them.
type CompletionRequest struct {
	BaseURL string
	APIKey  string
	Model   string

	// System and User are the two prompts. Providers without a system role
	// concatenate them into one instruction block.
	System string
	User   string

	Temperature float64
	MaxTokens   int
}

// StreamRequest opens a streamed chat completion over a full conversation.
type StreamRequest struct {
	BaseURL string
	APIKey  string
	Model   string

	// System is sent as the leading system message when non-empty.
	System   string
	Messages []Message

	Temperature float64
	MaxTokens   int
}
