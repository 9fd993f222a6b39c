package llm_test

import (
	"errors"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gita/pkg/llm"
)

var _ = Describe("StatusError", func() {
	It("classifies 429 as rate limited", func() {
		err := llm.NewStatusError(http.StatusTooManyRequests, []byte(`{"error":"slow down"}`))
		Expect(errors.Is(err, llm.ErrRateLimited)).To(BeTrue())
		Expect(errors.Is(err, llm.ErrQuotaExhausted)).To(BeFalse())
		Expect(err.Message).To(Equal("slow down"))
		Expect(err.Error()).To(Equal("status 429: slow down"))
	})

	It("classifies 402 as quota exhausted", func() {
		err := llm.NewStatusError(http.StatusPaymentRequired, []byte(`{"error":"add credits"}`))
		Expect(errors.Is(err, llm.ErrQuotaExhausted)).To(BeTrue())
		Expect(errors.Is(err, llm.ErrRateLimited)).To(BeFalse())
	})

	It("leaves other statuses unclassified", func() {
		err := llm.NewStatusError(http.StatusBadGateway, []byte("upstream down"))
		Expect(errors.Unwrap(err)).To(BeNil())
		Expect(err.Message).To(Equal("upstream down"))
	})

	It("reads nested OpenAI-style error messages", func() {
		err := llm.NewStatusError(http.StatusBadRequest, []byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
		Expect(err.Message).To(Equal("bad model"))
	})

	It("formats an empty body with the status only", func() {
		Expect(llm.NewStatusError(http.StatusInternalServerError, nil).Error()).To(Equal("status 500"))
	})

	It("survives wrapping", func() {
		wrapped := fmt.Errorf("calling gateway: %w", llm.NewStatusError(http.StatusTooManyRequests, nil))
		Expect(errors.Is(wrapped, llm.ErrRateLimited)).To(BeTrue())

		var statusErr *llm.StatusError
		Expect(errors.As(wrapped, &statusErr)).To(BeTrue())
		Expect(statusErr.StatusCode).To(Equal(http.StatusTooManyRequests))
	})
})

var _ = Describe("HTTPStatus", func() {
	It("maps error classes to status codes", func() {
		Expect(llm.HTTPStatus(llm.ErrRateLimited)).To(Equal(http.StatusTooManyRequests))
		Expect(llm.HTTPStatus(llm.NewStatusError(http.StatusPaymentRequired, nil))).To(Equal(http.StatusPaymentRequired))
		Expect(llm.HTTPStatus(llm.ErrNoCredential)).To(Equal(http.StatusInternalServerError))
		Expect(llm.HTTPStatus(errors.New("boom"))).To(Equal(http.StatusInternalServerError))
	})
})

var _ = Describe("UserMessage", func() {
	It("asks the user to wait when rate limited", func() {
		Expect(llm.UserMessage(llm.ErrRateLimited)).To(ContainSubstring("Too many requests"))
	})

	It("reports the service as unavailable when quota is exhausted", func() {
		Expect(llm.UserMessage(llm.ErrQuotaExhausted)).To(ContainSubstring("unavailable"))
	})

	It("passes through the server message for generic status errors", func() {
		err := llm.NewStatusError(http.StatusInternalServerError, []byte(`{"error":"AI gateway error"}`))
		Expect(llm.UserMessage(err)).To(Equal("AI gateway error"))
	})

	It("falls back to a generic message", func() {
		Expect(llm.UserMessage(errors.New("dial tcp: refused"))).To(Equal("Something went wrong. Please try again."))
		Expect(llm.UserMessage(nil)).To(BeEmpty())
	})
})
