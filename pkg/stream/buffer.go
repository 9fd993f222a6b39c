package stream

import (
	"strings"
	"sync"
)

// MessageBuffer accumulates deltas, in arrival order, into one assistant
// message. It is append-only while the stream is open and immutable once
// sealed. One goroutine writes; any number may take snapshots.
type MessageBuffer struct {
	mu     sync.RWMutex
	sb     strings.Builder
	sealed bool
}

// Append adds delta to the end of the message. It reports false, leaving
// the content unchanged, once the buffer is sealed.
func (b *MessageBuffer) Append(delta string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		return false
	}
	b.sb.WriteString(delta)
	return true
}

// Snapshot returns the message accumulated so far.
func (b *MessageBuffer) Snapshot() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sb.String()
}

// Len returns the length in bytes of the accumulated message.
func (b *MessageBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sb.Len()
}

// Seal makes the buffer immutable.
func (b *MessageBuffer) Seal() {
	b.mu.Lock()
	b.sealed = true
	b.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (b *MessageBuffer) Sealed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sealed
}
