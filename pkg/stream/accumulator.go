package stream

import (
	"strings"

	"github.com/papercomputeco/gita/pkg/llm/provider/openai"
	"github.com/papercomputeco/gita/pkg/sse"
)

// OutcomeKind tells the read loop what to do after a frame is applied.
type OutcomeKind int

const (
	// Continue reading.
	Continue OutcomeKind = iota

	// Terminate stops reading, even if the body has more bytes.
	Terminate

	// Recoverable asks the read loop to push Outcome.Reparse back in front of
	// the unread input and keep reading.
	Recoverable
)

func (k OutcomeKind) String() string {
	switch k {
	case Continue:
		return "continue"
	case Terminate:
		return "terminate"
	case Recoverable:
		return "recoverable"
	default:
		return "unknown"
	}
}

// Outcome is the result of applying one frame.
type Outcome struct {
	Kind OutcomeKind

	// Delta is the content appended by this frame, if any.
	Delta string

	// Snapshot is the buffer content after a non-empty Delta was appended.
	Snapshot string

	// Reparse is the raw line to push back for a Recoverable outcome.
	Reparse string
}

// Accumulator folds data frames into a MessageBuffer.
//
// A data frame whose JSON does not parse is assumed to have been cut at an
// embedded newline. The first failure returns Recoverable so the line is
// re-joined with the line that follows it. If the joined line still fails,
// any complete frame glued onto the fragment is salvaged and the fragment
// itself is dropped. Malformed input never touches content already in the
// buffer.
type Accumulator struct {
	buf *MessageBuffer

	// pending is the fragment handed back in the last Recoverable outcome.
	pending string

	dropped int
}

// NewAccumulator returns an Accumulator that writes into buf.
func NewAccumulator(buf *MessageBuffer) *Accumulator {
	return &Accumulator{buf: buf}
}

// Apply folds one frame into the buffer.
func (a *Accumulator) Apply(frame sse.Frame) Outcome {
	switch frame.Kind {
	case sse.FrameTerminator:
		a.pending = ""
		return Outcome{Kind: Terminate}
	case sse.FrameData:
		return a.applyData(frame)
	default:
		return Outcome{Kind: Continue}
	}
}

// Pending reports whether a fragment is waiting to be re-joined.
func (a *Accumulator) Pending() bool {
	return a.pending != ""
}

// Dropped returns how many unrecoverable fragments were discarded.
func (a *Accumulator) Dropped() int {
	return a.dropped
}

// Discard drops a pending fragment. The read loop calls it when the stream
// ends before the fragment could be completed.
func (a *Accumulator) Discard() {
	if a.pending != "" {
		a.pending = ""
		a.dropped++
	}
}

func (a *Accumulator) applyData(frame sse.Frame) Outcome {
	chunk, err := openai.ParseStreamChunk([]byte(frame.Data))
	if err != nil {
		return a.recover(frame)
	}
	a.pending = ""

	if chunk.Delta == "" {
		return Outcome{Kind: Continue}
	}

	if !a.buf.Append(chunk.Delta) {
		return Outcome{Kind: Terminate}
	}

	return Outcome{
		Kind:     Continue,
		Delta:    chunk.Delta,
		Snapshot: a.buf.Snapshot(),
	}
}

func (a *Accumulator) recover(frame sse.Frame) Outcome {
	rest, joined := strings.CutPrefix(frame.Raw, a.pending)
	if a.pending == "" || !joined {
		a.Discard()
		a.pending = frame.Raw
		return Outcome{Kind: Recoverable, Reparse: frame.Raw}
	}

	a.Discard()
	if rest != "" {
		return a.Apply(sse.Classify(rest))
	}

	return Outcome{Kind: Continue}
}
