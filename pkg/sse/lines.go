package sse

import (
	"bytes"
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const scratchSize = 4096

// LineReader splits a chunked byte stream into protocol lines.
//
// Chunks may end anywhere: in the middle of a line or in the middle of a
// multi-byte UTF-8 sequence. Incomplete sequences are held back until the
// next chunk arrives, so a split code point is never replaced.
//
// Lines are split on "\n" and lose at most one trailing "\r". A bare "\r" is
// not a line break.
//
// LineReader never blocks and is not safe for concurrent use.
type LineReader struct {
	decoder transform.Transformer
	scratch []byte

	// held is undecoded input that ends in an incomplete rune.
	held []byte

	// text is decoded input not yet delivered as a line.
	text []byte
}

// NewLineReader returns an empty LineReader.
func NewLineReader() *LineReader {
	return &LineReader{
		decoder: unicode.UTF8.NewDecoder(),
		scratch: make([]byte, scratchSize),
	}
}

// Feed decodes chunk and returns every line it completed, in order.
func (r *LineReader) Feed(chunk []byte) []string {
	r.Write(chunk)

	var lines []string
	for {
		line, ok := r.Next()
		if !ok {
			return lines
		}
		lines = append(lines, line)
	}
}

// Write decodes chunk into the pending text without splitting it.
// Use Next to pull lines one at a time.
func (r *LineReader) Write(chunk []byte) {
	src := chunk
	if len(r.held) > 0 {
		src = append(r.held, chunk...)
		r.held = nil
	}

	r.decode(src, false)
}

// Next returns the next complete line, if one is buffered.
func (r *LineReader) Next() (string, bool) {
	i := bytes.IndexByte(r.text, '\n')
	if i < 0 {
		return "", false
	}

	line := string(r.text[:i])
	r.text = r.text[i+1:]

	return strings.TrimSuffix(line, "\r"), true
}

// Unread pushes text back in front of the undelivered remainder. The next
// line returned by Next starts with text.
func (r *LineReader) Unread(text string) {
	if text == "" {
		return
	}

	joined := make([]byte, 0, len(text)+len(r.text))
	joined = append(joined, text...)
	r.text = append(joined, r.text...)
}

// Finish flushes everything still buffered as a final, unterminated line.
// Bytes of an incomplete trailing rune are decoded as U+FFFD. Finish returns
// false when nothing is left. Call it after Next has been drained.
func (r *LineReader) Finish() (string, bool) {
	if len(r.held) > 0 {
		held := r.held
		r.held = nil
		r.decode(held, true)
	}

	if len(r.text) == 0 {
		return "", false
	}

	line := string(r.text)
	r.text = nil

	return strings.TrimSuffix(line, "\r"), true
}

// Buffered reports the number of decoded bytes waiting to be delivered.
func (r *LineReader) Buffered() int {
	return len(r.text)
}

func (r *LineReader) decode(src []byte, atEOF bool) {
	for len(src) > 0 {
		nDst, nSrc, err := r.decoder.Transform(r.scratch, src, atEOF)
		r.text = append(r.text, r.scratch[:nDst]...)
		src = src[nSrc:]

		switch {
		case err == nil:
			return
		case errors.Is(err, transform.ErrShortDst):
			continue
		case errors.Is(err, transform.ErrShortSrc):
			r.held = append([]byte(nil), src...)
			return
		default:
			// The UTF-8 decoder replaces invalid input instead of failing, so
			// this only guards against an unexpected transformer error.
			r.text = append(r.text, src...)
			return
		}
	}
}
