package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/gita/pkg/generation"
	"github.com/papercomputeco/gita/pkg/llm"
)

var (
	generateToolName    = "generate_content"
	generateDescription = "Generate editorial content for a Bhagavad Gita verse or chapter: transliteration, " +
		"Hindi or English meaning, life application, practical actions, a modern story, problem " +
		"suggestions or a bilingual chapter description. Pass the verse fields the content type needs."
)

// GenerateInput represents the input arguments for the generate_content tool.
type GenerateInput struct {
	Type          string            `json:"type" jsonschema:"the content type, e.g. transliteration, hindi_meaning, modern_story, suggest_problems, chapter_description"`
	Fields        map[string]string `json:"fields,omitempty" jsonschema:"verse and problem fields such as sanskrit_text, english_meaning, problem_name, story_type, chapter_title"`
	ChapterNumber int               `json:"chapter_number,omitempty" jsonschema:"chapter the request is about"`
	VerseNumber   int               `json:"verse_number,omitempty" jsonschema:"verse the request is about"`
}

// GenerateOutput represents the output of the generate_content tool.
type GenerateOutput struct {
	Type               string                         `json:"type"`
	Content            string                         `json:"content"`
	Problems           []generation.ProblemSuggestion `json:"problems,omitempty"`
	DescriptionEnglish string                         `json:"description_english,omitempty"`
	DescriptionHindi   string                         `json:"description_hindi,omitempty"`
}

// handleGenerate processes a generate_content request. Generation failures
// are reported as tool errors rather than protocol errors.
func (s *Server) handleGenerate(ctx context.Context, _ *mcp.CallToolRequest, input GenerateInput) (*mcp.CallToolResult, GenerateOutput, error) {
	logger := s.config.Logger

	req := input.request()
	logger.Debug("MCP generate request",
		"type", input.Type,
		"fields", len(input.Fields),
	)

	result, err := s.config.Generator.Generate(ctx, req)
	if err != nil {
		logger.Error("failed to generate content", "type", input.Type, "error", err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to generate %s: %s", input.Type, toolMessage(err))},
			},
		}, GenerateOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.RawText},
		},
	}, newOutput(input.Type, result), nil
}

func newOutput(tag string, result *generation.Result) GenerateOutput {
	out := GenerateOutput{
		Type:     tag,
		Content:  result.RawText,
		Problems: result.Problems,
	}
	if result.Chapter != nil {
		out.DescriptionEnglish = result.Chapter.English
		out.DescriptionHindi = result.Chapter.Hindi
	}
	return out
}

func (in GenerateInput) request() generation.Request {
	req := generation.Request{Type: generation.ContentType(in.Type)}
	for name, value := range in.Fields {
		req = req.With(name, value)
	}
	if in.ChapterNumber > 0 {
		n := in.ChapterNumber
		req.ChapterNumber = &n
	}
	if in.VerseNumber > 0 {
		n := in.VerseNumber
		req.VerseNumber = &n
	}
	return req
}

// toolMessage keeps validation errors verbatim so the caller can fix its
// input; provider failures get the user-facing text.
func toolMessage(err error) string {
	if errors.Is(err, generation.ErrMissingRequiredField) || errors.Is(err, generation.ErrUnsupportedType) {
		return err.Error()
	}
	return llm.UserMessage(err)
}
