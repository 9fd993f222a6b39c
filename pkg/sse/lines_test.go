package sse

import (
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// framesOf runs chunks through a fresh LineReader and classifies every line.
func framesOf(chunks ...[]byte) []Frame {
	r := NewLineReader()

	var frames []Frame
	for _, c := range chunks {
		for _, line := range r.Feed(c) {
			frames = append(frames, Classify(line))
		}
	}
	if line, ok := r.Finish(); ok {
		frames = append(frames, Classify(line))
	}

	return frames
}

const mixedStream = ": keep-alive\r\n" +
	"\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"कर्म \"}}]}\r\n" +
	"\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"योग 🙏\"}}]}\n" +
	"event: ping\n" +
	"data: [DONE]\n" +
	"data: {\"choices\":[{\"delta\":{\"content\":\"tail\"}}]}"

var _ = Describe("LineReader", func() {
	Describe("Feed", func() {
		It("returns nothing until a newline arrives", func() {
			r := NewLineReader()
			Expect(r.Feed([]byte("data: par"))).To(BeEmpty())
			Expect(r.Feed([]byte("tial\n"))).To(Equal([]string{"data: partial"}))
		})

		It("returns several lines from one chunk", func() {
			r := NewLineReader()
			Expect(r.Feed([]byte("a\nb\n\nc"))).To(Equal([]string{"a", "b", ""}))
			Expect(r.Buffered()).To(Equal(1))
		})

		It("strips exactly one trailing carriage return", func() {
			r := NewLineReader()
			Expect(r.Feed([]byte("a\r\nb\r\r\n"))).To(Equal([]string{"a", "b\r"}))
		})

		It("does not split on a bare carriage return", func() {
			r := NewLineReader()
			Expect(r.Feed([]byte("a\rb\n"))).To(Equal([]string{"a\rb"}))
		})

		It("holds back a multi-byte character split across chunks", func() {
			word := []byte("कृष्ण\n")
			r := NewLineReader()

			Expect(r.Feed(word[:1])).To(BeEmpty())
			Expect(r.Buffered()).To(BeZero())
			Expect(r.Feed(word[1:4])).To(BeEmpty())
			Expect(r.Feed(word[4:])).To(Equal([]string{"कृष्ण"}))
		})

		It("replaces invalid bytes instead of failing", func() {
			r := NewLineReader()
			Expect(r.Feed([]byte{'a', 0xff, 'b', '\n'})).To(Equal([]string{"a�b"}))
		})

		It("decodes chunks larger than its scratch buffer", func() {
			long := make([]byte, 0, 3*scratchSize)
			for len(long) < 3*scratchSize {
				long = append(long, "ॐ"...)
			}

			r := NewLineReader()
			lines := r.Feed(append(long, '\n'))
			Expect(lines).To(HaveLen(1))
			Expect(lines[0]).To(Equal(string(long)))
		})
	})

	Describe("Finish", func() {
		It("flushes an unterminated final line", func() {
			r := NewLineReader()
			r.Feed([]byte("one\ntwo"))

			line, ok := r.Finish()
			Expect(ok).To(BeTrue())
			Expect(line).To(Equal("two"))

			_, ok = r.Finish()
			Expect(ok).To(BeFalse())
		})

		It("reports nothing when the stream ended on a newline", func() {
			r := NewLineReader()
			r.Feed([]byte("one\n"))

			_, ok := r.Finish()
			Expect(ok).To(BeFalse())
		})

		It("replaces a truncated trailing character", func() {
			r := NewLineReader()
			r.Feed([]byte("x"))
			r.Feed([]byte("क")[:2])

			line, ok := r.Finish()
			Expect(ok).To(BeTrue())
			Expect(line).To(HavePrefix("x"))
			Expect(line).To(ContainSubstring("\uFFFD"))
		})
	})

	Describe("Unread", func() {
		It("joins pushed-back text onto the next line", func() {
			r := NewLineReader()
			lines := r.Feed([]byte(`data: {"choices":[{"delta":{"content":"a` + "\n"))
			Expect(lines).To(HaveLen(1))

			r.Unread(lines[0])
			Expect(r.Feed([]byte(`b"}}]}` + "\n"))).To(Equal([]string{
				`data: {"choices":[{"delta":{"content":"ab"}}]}`,
			}))
		})

		It("places text ahead of already buffered input", func() {
			r := NewLineReader()
			r.Feed([]byte("tail"))
			r.Unread("head-")

			line, ok := r.Finish()
			Expect(ok).To(BeTrue())
			Expect(line).To(Equal("head-tail"))
		})
	})

	Describe("chunk boundary invariance", func() {
		var whole []Frame

		BeforeEach(func() {
			whole = framesOf([]byte(mixedStream))
		})

		It("classifies the reference stream as expected", func() {
			kinds := make([]FrameKind, 0, len(whole))
			for _, f := range whole {
				kinds = append(kinds, f.Kind)
			}
			Expect(kinds).To(Equal([]FrameKind{
				FrameComment, FrameBlank, FrameData, FrameBlank,
				FrameData, FrameComment, FrameTerminator, FrameData,
			}))
			Expect(whole[2].Data).To(ContainSubstring("कर्म "))
			Expect(whole[4].Data).To(ContainSubstring("योग 🙏"))
		})

		It("yields the same frames for every two-way split", func() {
			msg := []byte(mixedStream)
			for i := 0; i <= len(msg); i++ {
				Expect(framesOf(msg[:i], msg[i:])).To(Equal(whole), "split at byte %d", i)
			}
		})

		It("yields the same frames when fed one byte at a time", func() {
			msg := []byte(mixedStream)
			chunks := make([][]byte, 0, len(msg))
			for i := range msg {
				chunks = append(chunks, msg[i:i+1])
			}
			Expect(framesOf(chunks...)).To(Equal(whole))
		})

		It("yields the same frames for random chunk sizes", func() {
			rng := rand.New(rand.NewPCG(7, 11))
			msg := []byte(mixedStream)

			for range 200 {
				var chunks [][]byte
				for rest := msg; len(rest) > 0; {
					n := min(1+rng.IntN(9), len(rest))
					chunks = append(chunks, rest[:n])
					rest = rest[n:]
				}
				Expect(framesOf(chunks...)).To(Equal(whole))
			}
		})
	})
})
