// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// decoder for chat-completion streams. It turns a chunked byte stream into
// logical protocol lines and classifies each line into a Frame.
//
// Every "data:" line is treated as an independent frame. Events are not
// assembled across lines and the "event:" and "id:" fields are not
// interpreted, since OpenAI-style chat-completion streams carry one JSON
// payload per data line.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// Event stream format:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

// DoneSentinel is the data payload that marks the end of a chat-completion
// stream.
const DoneSentinel = "[DONE]"

// FrameKind tags the variant of a Frame.
type FrameKind int

const (
	// FrameComment is a ":" keep-alive line or any line this decoder does not
	// understand. Comments are discarded.
	FrameComment FrameKind = iota

	// FrameBlank is an empty line (an SSE event boundary).
	FrameBlank

	// FrameData is a "data:" line carrying a payload.
	FrameData

	// FrameTerminator is the "data: [DONE]" line.
	FrameTerminator
)

func (k FrameKind) String() string {
	switch k {
	case FrameComment:
		return "comment"
	case FrameBlank:
		return "blank"
	case FrameData:
		return "data"
	case FrameTerminator:
		return "terminator"
	default:
		return "unknown"
	}
}

// Frame is a single classified protocol line.
type Frame struct {
	Kind FrameKind

	// Data is the trimmed payload of a FrameData frame. It is empty for
	// every other kind.
	Data string

	// Raw is the protocol line the frame was classified from.
	Raw string
}

// Classify turns one protocol line into a Frame.
//
// Unknown lines are classified as comments rather than errors so an unknown
// field never aborts an otherwise healthy stream. The space after "data:" is
// optional, per the SSE field grammar.
func Classify(line string) Frame {
	if line == "" {
		return Frame{Kind: FrameBlank, Raw: line}
	}

	if strings.HasPrefix(line, ":") {
		return Frame{Kind: FrameComment, Raw: line}
	}

	payload, ok := strings.CutPrefix(line, "data:")
	if !ok {
		return Frame{Kind: FrameComment, Raw: line}
	}

	payload = strings.TrimSpace(payload)
	if payload == DoneSentinel {
		return Frame{Kind: FrameTerminator, Raw: line}
	}

	return Frame{Kind: FrameData, Data: payload, Raw: line}
}
