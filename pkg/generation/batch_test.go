package generation_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gita/pkg/generation"
	"github.com/papercomputeco/gita/pkg/llm"
)

// scriptedGenerator fails the calls listed in errs by index.
type scriptedGenerator struct {
	mu    sync.Mutex
	errs  map[int]error
	calls []time.Time
}

func (g *scriptedGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.calls)
	g.calls = append(g.calls, time.Now())
	if err := g.errs[n]; err != nil {
		return nil, err
	}
	return &generation.Result{RawText: string(req.Type)}, nil
}

func batchRequests(n int) []generation.Request {
	reqs := make([]generation.Request, n)
	for i := range reqs {
		reqs[i] = newRequest(generation.Transliteration, generation.FieldSanskritText, karmanyeva)
	}
	return reqs
}

var _ = Describe("Batch", func() {
	It("runs every request and reports progress", func() {
		gen := &scriptedGenerator{}
		var seen []int

		items, err := generation.NewBatch(gen, 0, nil).Run(context.Background(), batchRequests(3), func(done, total int, item generation.BatchItem) {
			Expect(total).To(Equal(3))
			seen = append(seen, done)
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(3))
		Expect(seen).To(Equal([]int{1, 2, 3}))
		for _, item := range items {
			Expect(item.Err).NotTo(HaveOccurred())
			Expect(item.Result.RawText).To(Equal("transliteration"))
		}
	})

	It("continues past ordinary failures", func() {
		gen := &scriptedGenerator{errs: map[int]error{1: errors.New("boom")}}

		items, err := generation.NewBatch(gen, 0, nil).Run(context.Background(), batchRequests(3), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(gen.calls).To(HaveLen(3))
		Expect(items[1].Err).To(MatchError("boom"))
		Expect(items[1].Skipped).To(BeFalse())
		Expect(items[2].Err).NotTo(HaveOccurred())
	})

	DescribeTable("stops on rate-limit and quota failures",
		func(status int) {
			gen := &scriptedGenerator{errs: map[int]error{1: llm.NewStatusError(status, nil)}}

			items, err := generation.NewBatch(gen, 0, nil).Run(context.Background(), batchRequests(4), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(gen.calls).To(HaveLen(2))
			Expect(items[0].Err).NotTo(HaveOccurred())
			Expect(items[1].Skipped).To(BeFalse())
			Expect(items[2].Skipped).To(BeTrue())
			Expect(items[3].Skipped).To(BeTrue())
			Expect(llm.HTTPStatus(items[3].Err)).To(Equal(status))
		},
		Entry("429", http.StatusTooManyRequests),
		Entry("402", http.StatusPaymentRequired),
	)

	It("paces calls by the interval", func() {
		gen := &scriptedGenerator{}
		interval := 40 * time.Millisecond

		_, err := generation.NewBatch(gen, interval, nil).Run(context.Background(), batchRequests(3), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(gen.calls).To(HaveLen(3))
		Expect(gen.calls[2].Sub(gen.calls[0])).To(BeNumerically(">=", 2*interval-5*time.Millisecond))
	})

	It("skips the rest when the context is cancelled", func() {
		gen := &scriptedGenerator{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		items, err := generation.NewBatch(gen, 0, nil).Run(ctx, batchRequests(2), nil)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(gen.calls).To(BeEmpty())
		Expect(items[0].Skipped).To(BeTrue())
		Expect(items[1].Skipped).To(BeTrue())
	})
})
