package stream_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gita/pkg/stream"
)

var _ = Describe("MessageBuffer", func() {
	It("appends in order", func() {
		buf := &stream.MessageBuffer{}
		Expect(buf.Append("Hel")).To(BeTrue())
		Expect(buf.Append("lo ")).To(BeTrue())
		Expect(buf.Append("world")).To(BeTrue())
		Expect(buf.Snapshot()).To(Equal("Hello world"))
		Expect(buf.Len()).To(Equal(11))
	})

	It("keeps earlier snapshots unchanged", func() {
		buf := &stream.MessageBuffer{}
		buf.Append("Om")
		first := buf.Snapshot()
		buf.Append(" Shanti")

		Expect(first).To(Equal("Om"))
		Expect(buf.Snapshot()).To(Equal("Om Shanti"))
	})

	It("rejects appends once sealed", func() {
		buf := &stream.MessageBuffer{}
		buf.Append("done")
		buf.Seal()

		Expect(buf.Sealed()).To(BeTrue())
		Expect(buf.Append(" more")).To(BeFalse())
		Expect(buf.Snapshot()).To(Equal("done"))
	})
})
