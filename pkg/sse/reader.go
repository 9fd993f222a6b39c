package sse

import (
	"errors"
	"io"
)

const readSize = 32 * 1024

// TeeReader reads SSE frames from a source io.Reader while simultaneously
// writing all raw bytes verbatim to a destination io.Writer.
// This effectively enables "tee" shaped reading where TeeReader.Next
// returns the Frame for inspection while writing to a separate destination.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌───────────────────────┐
// │ TeeReader.Next() │──▶│ destination io.Writer │
// └──────────────────┘   └───────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Frame       │
// └──────────────────┘
//
// Bytes reach the destination as soon as they are read, before the frames
// they contain are returned, so a downstream client sees the stream with no
// added latency.
type TeeReader struct {
	src   io.Reader
	dest  io.Writer
	lines *LineReader
	buf   []byte
	eof   bool
}

// NewTeeReader returns a TeeReader that classifies frames from src and
// writes all raw bytes through to dest.
// The dest writer typically backs an io.Pipe connected to the downstream HTTP
// response.
func NewTeeReader(src io.Reader, dest io.Writer) *TeeReader {
	return &TeeReader{
		src:   src,
		dest:  dest,
		lines: NewLineReader(),
		buf:   make([]byte, readSize),
	}
}

// Next returns the next frame. It blocks until a complete line is available
// or the source is exhausted. A trailing line without a newline is returned
// as a final frame. Next returns io.EOF once the source is exhausted.
func (r *TeeReader) Next() (Frame, error) {
	for {
		if line, ok := r.lines.Next(); ok {
			return Classify(line), nil
		}

		if r.eof {
			if line, ok := r.lines.Finish(); ok {
				return Classify(line), nil
			}
			return Frame{}, io.EOF
		}

		n, err := r.src.Read(r.buf)
		if n > 0 {
			if _, werr := r.dest.Write(r.buf[:n]); werr != nil {
				return Frame{}, werr
			}
			r.lines.Write(r.buf[:n])
		}

		if errors.Is(err, io.EOF) {
			r.eof = true
			continue
		}
		if err != nil {
			return Frame{}, err
		}
	}
}
