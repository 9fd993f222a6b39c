package llm

// Preferred response languages understood by the chat relay.
const (
	LanguageEnglish = "english"
	LanguageHindi   = "hindi"
)

// ChatRequest is the body of a streaming chat request: the conversation
// history plus a hint for the language the assistant should answer in.
type ChatRequest struct {
	// Conversation messages, oldest first
	Messages []Message `json:"messages"`

	// PreferredLanguage is "english" or "hindi". Empty means english.
	PreferredLanguage string `json:"preferredLanguage,omitempty"`
}

// ErrorResponse is the JSON error body returned by the HTTP surfaces.
type ErrorResponse struct {
	Error string `json:"error"`
}
