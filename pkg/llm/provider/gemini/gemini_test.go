package gemini_test

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
	"github.com/papercomputeco/gita/pkg/llm/provider/gemini"
)

var _ = Describe("Gemini Provider", func() {
	var (
		path   string
		apiKey string
		body   map[string]any
		status int
		reply  string
		srv    *httptest.Server
		p      *gemini.Provider
	)

	BeforeEach(func() {
		status = http.StatusOK
		reply = `{"candidates":[{"content":{"role":"model","parts":[{"text":"thinking...","thought":true},{"text":" karmaṇy evādhikāras te "}]}}]}`

		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			apiKey = r.Header.Get("x-goog-api-key")
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &body)

			w.WriteHeader(status)
			_, _ = io.WriteString(w, reply)
		}))
		DeferCleanup(srv.Close)

		p = gemini.New(srv.Client())
	})

	call := func() (string, error) {
		return p.Complete(context.Background(), llm.CompletionRequest{
			BaseURL:     srv.URL + "/v1beta",
			APIKey:      "direct-key",
			Model:       "gemini-2.5-flash",
			System:      "Transliterate into IAST.",
			User:        "कर्मण्येवाधिकारस्ते",
			Temperature: 0.2,
			MaxTokens:   256,
		})
	}

	It("returns 'gemini' as its name", func() {
		Expect(p.Name()).To(Equal("gemini"))
	})

	It("concatenates both prompts into one user block", func() {
		text, err := call()
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("karmaṇy evādhikāras te"))

		Expect(path).To(Equal("/v1beta/models/gemini-2.5-flash:generateContent"))
		Expect(apiKey).To(Equal("direct-key"))

		contents := body["contents"].([]any)
		Expect(contents).To(HaveLen(1))
		parts := contents[0].(map[string]any)["parts"].([]any)
		Expect(parts).To(HaveLen(1))
		Expect(parts[0]).To(HaveKeyWithValue("text", "Transliterate into IAST.\n\nकर्मण्येवाधिकारस्ते"))
		Expect(body).NotTo(HaveKey("systemInstruction"))

		cfg := body["generationConfig"].(map[string]any)
		Expect(cfg["maxOutputTokens"]).To(BeNumerically("==", 256))
		Expect(cfg["temperature"]).To(BeNumerically("~", 0.2))
	})

	It("returns an empty string when there are no candidates", func() {
		reply = `{"candidates":[]}`
		text, err := call()
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(BeEmpty())
	})

	It("classifies rate limiting", func() {
		status = http.StatusTooManyRequests
		reply = `{"error":{"message":"quota"}}`

		_, err := call()
		Expect(errors.Is(err, llm.ErrRateLimited)).To(BeTrue())
	})

	It("keeps the provider message for other statuses", func() {
		status = http.StatusBadRequest
		reply = `{"error":{"message":"API key not valid"}}`

		_, err := call()
		var statusErr *llm.StatusError
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.StatusCode).To(Equal(http.StatusBadRequest))
		Expect(statusErr.Message).To(Equal("API key not valid"))
	})
})
