package llm

// StreamChunk is one decoded chat-completion stream frame.
type StreamChunk struct {
	// Model that generated the chunk, when the provider reports it.
	Model string `json:"model,omitempty"`

	// Delta is the incremental content carried by the first choice.
	// Empty when the frame carries no content (role announcements,
	// finish markers, keep-alive payloads).
	Delta string `json:"delta"`

	// FinishReason is set on the final chunk by most providers.
	FinishReason string `json:"finish_reason,omitempty"`
}
