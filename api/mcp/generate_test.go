package mcp

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gita/pkg/generation"
	"github.com/papercomputeco/gita/pkg/llm"
	gitalogger "github.com/papercomputeco/gita/pkg/logger"
)

type recordingGenerator struct {
	req    generation.Request
	result *generation.Result
	err    error
}

func (g *recordingGenerator) Generate(_ context.Context, req generation.Request) (*generation.Result, error) {
	g.req = req
	return g.result, g.err
}

var _ = Describe("generate_content tool", func() {
	var (
		gen    *recordingGenerator
		server *Server
	)

	BeforeEach(func() {
		gen = &recordingGenerator{}
		var err error
		server, err = NewServer(Config{Generator: gen, Logger: gitalogger.Nop()})
		Expect(err).NotTo(HaveOccurred())
	})

	It("builds the request from the tool input", func() {
		result := generation.Normalize(generation.ChapterDescription, "ENGLISH: Duty.\nHINDI: कर्तव्य।")
		gen.result = &result

		res, out, err := server.handleGenerate(context.Background(), nil, GenerateInput{
			Type:          "chapter_description",
			Fields:        map[string]string{"chapter_title": "Karma Yoga"},
			ChapterNumber: 3,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.IsError).To(BeFalse())

		Expect(gen.req.Type).To(Equal(generation.ChapterDescription))
		Expect(gen.req.Field(generation.FieldChapterTitle)).To(Equal("Karma Yoga"))
		Expect(*gen.req.ChapterNumber).To(Equal(3))
		Expect(gen.req.VerseNumber).To(BeNil())

		Expect(out.Type).To(Equal("chapter_description"))
		Expect(out.DescriptionEnglish).To(Equal("Duty."))
		Expect(out.DescriptionHindi).To(Equal("कर्तव्य।"))
	})

	It("reports generation failures as tool errors", func() {
		gen.err = llm.NewStatusError(http.StatusTooManyRequests, nil)

		res, _, err := server.handleGenerate(context.Background(), nil, GenerateInput{Type: "modern_story"})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.IsError).To(BeTrue())
		Expect(res.Content).To(HaveLen(1))
		Expect(res.Content[0].(*mcp.TextContent).Text).To(ContainSubstring("Too many requests"))
	})
})
