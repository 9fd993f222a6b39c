package provider_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gita/pkg/llm/provider"
)

var _ = Describe("New", func() {
	DescribeTable("builds each supported provider",
		func(name string) {
			p, err := provider.New(name, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name()).To(Equal(name))
		},
		Entry("gemini", provider.Gemini),
		Entry("openai", provider.OpenAI),
	)

	It("rejects unknown providers", func() {
		_, err := provider.New("anthropic", nil)
		Expect(err).To(MatchError(ContainSubstring("unknown provider type")))
	})

	It("streams through the gateway provider", func() {
		Expect(provider.NewStreamer(nil).Name()).To(Equal(provider.OpenAI))
	})
})
