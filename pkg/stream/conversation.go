package stream

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/papercomputeco/gita/pkg/llm"
)

// ErrSendInFlight is returned when Send is called while another send on the
// same conversation is still streaming.
var ErrSendInFlight = errors.New("a reply is already streaming")

// Conversation is the chat history as the user sees it.
//
// Send appends the user turn and an empty assistant placeholder up front and
// fills the placeholder as deltas arrive. If the stream fails or is
// cancelled, both are removed again so the history is exactly what it was
// before the send and a retry does not duplicate turns.
type Conversation struct {
	mu       sync.Mutex
	messages []llm.Message
	language string

	// cancel aborts the in-flight send, if any.
	cancel context.CancelFunc

	// epoch is bumped by Clear so a send that outlives it leaves the new
	// history alone.
	epoch uint64
}

// NewConversation returns an empty conversation whose replies are requested
// in language ("english" or "hindi").
func NewConversation(language string) *Conversation {
	return &Conversation{language: language}
}

// Messages returns a copy of the history, including a partially streamed
// reply.
func (c *Conversation) Messages() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// Language returns the preferred reply language.
func (c *Conversation) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// SetLanguage changes the preferred reply language for later sends.
func (c *Conversation) SetLanguage(language string) {
	c.mu.Lock()
	c.language = language
	c.mu.Unlock()
}

// Send streams the reply to text through consumer. publish, when non-nil,
// receives each snapshot after the history has been updated with it.
func (c *Conversation) Send(ctx context.Context, consumer *Consumer, text string, publish PublishFunc) (string, error) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return "", ErrSendInFlight
	}

	user := llm.NewTextMessage(llm.RoleUser, text)
	history := append(slices.Clone(c.messages), user)
	base := len(c.messages)
	c.messages = append(c.messages, user, llm.NewTextMessage(llm.RoleAssistant, ""))

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	epoch := c.epoch
	req := llm.ChatRequest{Messages: history, PreferredLanguage: c.language}
	c.mu.Unlock()
	defer cancel()

	reply, err := consumer.Run(ctx, req, func(snapshot string) {
		c.mu.Lock()
		if c.epoch == epoch {
			c.messages[base+1].Content = snapshot
		}
		c.mu.Unlock()

		if publish != nil {
			publish(snapshot)
		}
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		if err == nil {
			err = ErrCancelled
		}
		return "", err
	}
	c.cancel = nil

	if err != nil {
		c.messages = c.messages[:base]
		return "", err
	}

	c.messages[base+1].Content = reply
	return reply, nil
}

// Cancel aborts the in-flight send, if any. Its turns are rolled back.
func (c *Conversation) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
}

// Clear cancels any in-flight send and empties the history.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.messages = nil
	c.epoch++
}
