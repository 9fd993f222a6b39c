package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gita/pkg/llm"
	"github.com/papercomputeco/gita/pkg/llm/provider"
	"github.com/papercomputeco/gita/pkg/llm/provider/openai"
)

type capturedRequest struct {
	Path   string
	Auth   string
	Accept string
	Body   map[string]any
}

func gatewayServer(status int, response string, captured *capturedRequest) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.Auth = r.Header.Get("Authorization")
		captured.Accept = r.Header.Get("Accept")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured.Body)

		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
}

var _ = Describe("OpenAI Provider", func() {
	var (
		p        provider.Streamer
		captured *capturedRequest
	)

	BeforeEach(func() {
		p = openai.New(nil)
		captured = &capturedRequest{}
	})

	Describe("Name", func() {
		It("returns 'openai'", func() {
			Expect(p.Name()).To(Equal("openai"))
		})
	})

	Describe("Complete", func() {
		It("sends system and user prompts as separate roles", func() {
			srv := gatewayServer(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"  Karma yoga  "}}]}`, captured)
			DeferCleanup(srv.Close)

			text, err := p.Complete(context.Background(), llm.CompletionRequest{
				BaseURL:     srv.URL + "/v1",
				APIKey:      "gw-key",
				Model:       "google/gemini-2.5-flash",
				System:      "You are a scholar.",
				User:        "Explain verse 2.47",
				Temperature: 0.4,
				MaxTokens:   512,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Karma yoga"))

			Expect(captured.Path).To(Equal("/v1/chat/completions"))
			Expect(captured.Auth).To(Equal("Bearer gw-key"))
			Expect(captured.Body["model"]).To(Equal("google/gemini-2.5-flash"))
			Expect(captured.Body["max_tokens"]).To(BeNumerically("==", 512))
			Expect(captured.Body["temperature"]).To(BeNumerically("~", 0.4))
			Expect(captured.Body).NotTo(HaveKey("stream"))

			messages := captured.Body["messages"].([]any)
			Expect(messages).To(HaveLen(2))
			Expect(messages[0]).To(HaveKeyWithValue("role", "system"))
			Expect(messages[0]).To(HaveKeyWithValue("content", "You are a scholar."))
			Expect(messages[1]).To(HaveKeyWithValue("role", "user"))
		})

		It("returns an empty string when there are no choices", func() {
			srv := gatewayServer(http.StatusOK, `{"choices":[]}`, captured)
			DeferCleanup(srv.Close)

			text, err := p.Complete(context.Background(), llm.CompletionRequest{BaseURL: srv.URL})
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(BeEmpty())
		})

		It("classifies 429 as rate limited", func() {
			srv := gatewayServer(http.StatusTooManyRequests, `{"error":"slow down"}`, captured)
			DeferCleanup(srv.Close)

			_, err := p.Complete(context.Background(), llm.CompletionRequest{BaseURL: srv.URL})
			Expect(errors.Is(err, llm.ErrRateLimited)).To(BeTrue())

			var statusErr *llm.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.Message).To(Equal("slow down"))
		})

		It("classifies 402 as quota exhausted", func() {
			srv := gatewayServer(http.StatusPaymentRequired, `{"error":"payment required"}`, captured)
			DeferCleanup(srv.Close)

			_, err := p.Complete(context.Background(), llm.CompletionRequest{BaseURL: srv.URL})
			Expect(errors.Is(err, llm.ErrQuotaExhausted)).To(BeTrue())
			Expect(errors.Is(err, llm.ErrRateLimited)).To(BeFalse())
		})

		It("fails on an undecodable body", func() {
			srv := gatewayServer(http.StatusOK, `not json`, captured)
			DeferCleanup(srv.Close)

			_, err := p.Complete(context.Background(), llm.CompletionRequest{BaseURL: srv.URL})
			Expect(err).To(MatchError(ContainSubstring("decoding gateway response")))
		})
	})

	Describe("OpenStream", func() {
		It("requests a stream and returns the raw body", func() {
			stream := "data: {\"choices\":[{\"delta\":{\"content\":\"Om\"}}]}\n\ndata: [DONE]\n\n"
			srv := gatewayServer(http.StatusOK, stream, captured)
			DeferCleanup(srv.Close)

			body, err := p.OpenStream(context.Background(), llm.StreamRequest{
				BaseURL:  srv.URL,
				APIKey:   "gw-key",
				Model:    "google/gemini-2.5-flash",
				System:   "Be kind.",
				Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hello")},
			})
			Expect(err).NotTo(HaveOccurred())
			defer body.Close()

			raw, err := io.ReadAll(body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(Equal(stream))

			Expect(captured.Accept).To(Equal("text/event-stream"))
			Expect(captured.Body["stream"]).To(BeTrue())
			messages := captured.Body["messages"].([]any)
			Expect(messages).To(HaveLen(2))
			Expect(messages[0]).To(HaveKeyWithValue("role", "system"))
			Expect(messages[1]).To(HaveKeyWithValue("content", "hello"))
		})

		It("omits the system message when none is given", func() {
			srv := gatewayServer(http.StatusOK, "", captured)
			DeferCleanup(srv.Close)

			body, err := p.OpenStream(context.Background(), llm.StreamRequest{
				BaseURL:  srv.URL,
				Messages: []llm.Message{llm.NewTextMessage(llm.RoleUser, "hello")},
			})
			Expect(err).NotTo(HaveOccurred())
			body.Close()
			Expect(captured.Body["messages"]).To(HaveLen(1))
		})

		It("returns a status error before streaming", func() {
			srv := gatewayServer(http.StatusTooManyRequests, `{"error":"slow down"}`, captured)
			DeferCleanup(srv.Close)

			body, err := p.OpenStream(context.Background(), llm.StreamRequest{BaseURL: srv.URL})
			Expect(body).To(BeNil())
			Expect(errors.Is(err, llm.ErrRateLimited)).To(BeTrue())
		})
	})
})

var _ = Describe("ParseStreamChunk", func() {
	It("extracts the first choice delta", func() {
		chunk, err := openai.ParseStreamChunk([]byte(`{"model":"m","choices":[{"delta":{"content":"Om "}}]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(chunk.Delta).To(Equal("Om "))
		Expect(chunk.Model).To(Equal("m"))
	})

	It("reports the finish reason", func() {
		chunk, err := openai.ParseStreamChunk([]byte(`{"choices":[{"delta":{},"finish_reason":"stop"}]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(chunk.Delta).To(BeEmpty())
		Expect(chunk.FinishReason).To(Equal("stop"))
	})

	It("treats missing fields as no delta", func() {
		for _, payload := range []string{`{}`, `{"choices":[]}`, `{"choices":[{}]}`, `{"choices":[{"delta":{"role":"assistant"}}]}`} {
			chunk, err := openai.ParseStreamChunk([]byte(payload))
			Expect(err).NotTo(HaveOccurred(), payload)
			Expect(chunk.Delta).To(BeEmpty(), payload)
		}
	})

	It("treats a mismatched shape as no delta", func() {
		chunk, err := openai.ParseStreamChunk([]byte(`{"choices":[{"delta":{"content":42}}]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(chunk.Delta).To(BeEmpty())
	})

	It("rejects invalid JSON", func() {
		_, err := openai.ParseStreamChunk([]byte(`{"choices":[{"delta":{"content":"Om`))
		Expect(errors.Is(err, openai.ErrMalformedChunk)).To(BeTrue())
	})
})
