package mcp_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gita/api/mcp"
	"github.com/papercomputeco/gita/pkg/generation"
	gitalogger "github.com/papercomputeco/gita/pkg/logger"
)

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, generation.Request) (*generation.Result, error) {
	return &generation.Result{RawText: "ok"}, nil
}

var _ = Describe("MCP Server", func() {
	Describe("NewServer", func() {
		It("returns an error when the generator is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Logger: gitalogger.Nop()})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("generator is required"))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Generator: stubGenerator{}})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("creates a server with valid config", func() {
			server, err := mcp.NewServer(mcp.Config{Generator: stubGenerator{}, Logger: gitalogger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})

		It("creates an empty server in noop mode", func() {
			server, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(server.Handler()).NotTo(BeNil())
		})
	})
})
