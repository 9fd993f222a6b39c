package generation_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gita/pkg/generation"
)

func intPtr(n int) *int { return &n }

func newRequest(tag generation.ContentType, kv ...string) generation.Request {
	req := generation.Request{Type: tag}
	for i := 0; i+1 < len(kv); i += 2 {
		req = req.With(kv[i], kv[i+1])
	}
	return req
}

const karmanyeva = "कर्मण्येवाधिकारस्ते मा फलेषु कदाचन।"

var _ = Describe("Build", func() {
	It("has a template for every content type", func() {
		for _, tag := range generation.ContentTypes() {
			Expect(tag.Valid()).To(BeTrue(), string(tag))
		}
		Expect(generation.ContentTypes()).To(HaveLen(12))
	})

	It("rejects a type outside the closed set", func() {
		_, err := generation.Build(newRequest("poem", generation.FieldSanskritText, karmanyeva))
		Expect(errors.Is(err, generation.ErrUnsupportedType)).To(BeTrue())
	})

	It("fails with ErrMissingRequiredField when the verse text is absent", func() {
		_, err := generation.Build(newRequest(generation.Transliteration))
		Expect(errors.Is(err, generation.ErrMissingRequiredField)).To(BeTrue())
	})

	It("treats a blank field as missing", func() {
		_, err := generation.Build(newRequest(generation.Transliteration, generation.FieldSanskritText, "   "))
		Expect(errors.Is(err, generation.ErrMissingRequiredField)).To(BeTrue())
	})

	It("includes the verse text in the user prompt", func() {
		prompt, err := generation.Build(newRequest(generation.Transliteration, generation.FieldSanskritText, karmanyeva))
		Expect(err).NotTo(HaveOccurred())
		Expect(prompt.User).To(ContainSubstring(karmanyeva))
		Expect(prompt.System).To(ContainSubstring("IAST"))
	})

	It("is deterministic", func() {
		req := newRequest(generation.LifeApplication,
			generation.FieldSanskritText, karmanyeva,
			generation.FieldEnglishMeaning, "You have a right to your actions alone.")
		req.ChapterNumber = intPtr(2)
		req.VerseNumber = intPtr(47)

		a, err := generation.Build(req)
		Expect(err).NotTo(HaveOccurred())
		b, err := generation.Build(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	Context("with a chapter and verse reference", func() {
		It("anchors both prompts to the verse", func() {
			req := newRequest(generation.EnglishMeaning, generation.FieldSanskritText, karmanyeva)
			req.ChapterNumber = intPtr(2)
			req.VerseNumber = intPtr(47)

			prompt, err := generation.Build(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt.System).To(ContainSubstring("Chapter 2, Verse 47"))
			Expect(prompt.User).To(HavePrefix("Bhagavad Gita Chapter 2, Verse 47"))
		})

		It("writes the reference in Hindi for Hindi templates", func() {
			req := newRequest(generation.HindiMeaning, generation.FieldSanskritText, karmanyeva)
			req.ChapterNumber = intPtr(2)
			req.VerseNumber = intPtr(47)

			prompt, err := generation.Build(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt.System).To(ContainSubstring("अध्याय 2, श्लोक 47"))
			Expect(prompt.User).To(ContainSubstring("अध्याय 2, श्लोक 47"))
		})

		It("names the verse alone when no chapter is given", func() {
			req := newRequest(generation.EnglishMeaning, generation.FieldSanskritText, karmanyeva)
			req.VerseNumber = intPtr(47)

			prompt, err := generation.Build(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt.User).To(HavePrefix("Bhagavad Gita Verse 47"))
			Expect(prompt.System).To(ContainSubstring("Verse 47"))
		})

		It("names the verse alone in Hindi templates", func() {
			req := newRequest(generation.HindiMeaning, generation.FieldSanskritText, karmanyeva)
			req.VerseNumber = intPtr(47)

			prompt, err := generation.Build(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt.User).To(ContainSubstring("श्लोक 47"))
		})

		It("omits the reference when neither chapter nor verse is given", func() {
			prompt, err := generation.Build(newRequest(generation.EnglishMeaning, generation.FieldSanskritText, karmanyeva))
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt.User).NotTo(ContainSubstring("Chapter"))
		})
	})

	Describe("chapter_description", func() {
		It("accepts a chapter number without a title", func() {
			req := newRequest(generation.ChapterDescription)
			req.ChapterNumber = intPtr(3)

			prompt, err := generation.Build(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt.User).To(ContainSubstring("Chapter 3"))
			Expect(prompt.System).To(ContainSubstring("ENGLISH:"))
		})

		It("needs a title or a chapter number", func() {
			_, err := generation.Build(newRequest(generation.ChapterDescription))
			Expect(errors.Is(err, generation.ErrMissingRequiredField)).To(BeTrue())
		})
	})

	Describe("suggest_problems", func() {
		It("lists the existing taxonomy", func() {
			prompt, err := generation.Build(newRequest(generation.SuggestProblems,
				generation.FieldEnglishMeaning, "Perform your duty without attachment.",
				generation.FieldExistingProblems, "Anxiety, Procrastination",
				generation.FieldExistingCategories, "Mind, Work"))
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt.User).To(ContainSubstring("Anxiety, Procrastination"))
			Expect(prompt.User).To(ContainSubstring("Mind, Work"))
			Expect(prompt.System).To(ContainSubstring("JSON array"))
		})
	})

	Describe("budgets", func() {
		DescribeTable("classifies content types",
			func(tag generation.ContentType, budget generation.Budget) {
				Expect(tag.Budget()).To(Equal(budget))
			},
			Entry("transliteration", generation.Transliteration, generation.BudgetShort),
			Entry("hindi meaning", generation.HindiMeaning, generation.BudgetShort),
			Entry("story type", generation.SuggestStoryType, generation.BudgetShort),
			Entry("modern story", generation.ModernStory, generation.BudgetLong),
			Entry("suggest problems", generation.SuggestProblems, generation.BudgetLong),
		)
	})
})

var _ = Describe("ParseContentType", func() {
	It("parses known tags", func() {
		tag, err := generation.ParseContentType("modern_story")
		Expect(err).NotTo(HaveOccurred())
		Expect(tag).To(Equal(generation.ModernStory))
	})

	It("rejects unknown tags", func() {
		_, err := generation.ParseContentType("haiku")
		Expect(errors.Is(err, generation.ErrUnsupportedType)).To(BeTrue())
	})
})
