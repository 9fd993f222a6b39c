package generation

import (
	"fmt"
	"strings"
)

// StoryTypes are the settings a modern story can be told in.
var StoryTypes = []string{"corporate", "family", "student", "relationship", "health", "spiritual"}

// requirement is satisfied when at least one of its fields is non-blank, or
// when orChapter is set and the request carries a chapter number.
type requirement struct {
	anyOf     []string
	orChapter bool
}

// template is the fixed prompt recipe for one content type.
type template struct {
	system   string
	hindi    bool
	budget   Budget
	required []requirement
	user     func(r Request) string
}

var verseContent = requirement{anyOf: []string{FieldSanskritText, FieldEnglishMeaning, FieldHindiMeaning}}

var templates = map[ContentType]template{
	Transliteration: {
		system: "You are an expert in Sanskrit phonetics. Transliterate the given Devanagari " +
			"Sanskrit verse into IAST (International Alphabet of Sanskrit Transliteration). " +
			"Preserve line breaks. Return only the transliteration, with no commentary.",
		budget:   BudgetShort,
		required: []requirement{{anyOf: []string{FieldSanskritText}}},
		user: func(r Request) string {
			return sections(section("Sanskrit verse", r.Field(FieldSanskritText)))
		},
	},

	HindiMeaning: {
		system: "आप भगवद गीता के विद्वान हैं। दिए गए संस्कृत श्लोक का सरल और स्पष्ट हिंदी में अर्थ लिखें। " +
			"केवल अर्थ लिखें, कोई भूमिका, शीर्षक या अतिरिक्त व्याख्या न जोड़ें।",
		hindi:    true,
		budget:   BudgetShort,
		required: []requirement{{anyOf: []string{FieldSanskritText}}},
		user: func(r Request) string {
			return sections(
				section("संस्कृत श्लोक", r.Field(FieldSanskritText)),
				section("लिप्यंतरण", r.Field(FieldTransliteration)),
			)
		},
	},

	EnglishMeaning: {
		system: "You are a scholar of the Bhagavad Gita. Translate the given Sanskrit verse into " +
			"clear, faithful modern English. Return only the meaning, with no heading or commentary.",
		budget:   BudgetShort,
		required: []requirement{{anyOf: []string{FieldSanskritText}}},
		user: func(r Request) string {
			return sections(
				section("Sanskrit verse", r.Field(FieldSanskritText)),
				section("Transliteration", r.Field(FieldTransliteration)),
				section("Hindi meaning", r.Field(FieldHindiMeaning)),
			)
		},
	},

	TranslateHindiToEnglish: {
		system: "You are a professional Hindi to English translator specializing in spiritual texts. " +
			"Translate the given Hindi text into natural English, preserving its meaning and tone. " +
			"Return only the translation.",
		budget:   BudgetShort,
		required: []requirement{{anyOf: []string{FieldHindiText}}},
		user: func(r Request) string {
			return sections(section("Hindi text", r.Field(FieldHindiText)))
		},
	},

	ProblemContext: {
		system: "You are a compassionate counselor grounded in the Bhagavad Gita. Describe, in two " +
			"or three short paragraphs, how the given life problem shows up in everyday modern life " +
			"and why this verse speaks to it. Do not give solutions yet.",
		budget:   BudgetLong,
		required: []requirement{{anyOf: []string{FieldProblemName}}, verseContent},
		user: func(r Request) string {
			return sections(
				problemSections(r),
				verseSections(r),
			)
		},
	},

	SolutionGita: {
		system: "You are a teacher of the Bhagavad Gita. Explain how the teaching of this verse " +
			"resolves the given life problem. Stay faithful to the verse and avoid generic advice.",
		budget:   BudgetLong,
		required: []requirement{{anyOf: []string{FieldProblemName}}, verseContent},
		user: func(r Request) string {
			return sections(
				problemSections(r),
				verseSections(r),
			)
		},
	},

	LifeApplication: {
		system: "You are a practical life coach who draws on the Bhagavad Gita. Explain how a person " +
			"can apply the teaching of this verse in daily life today. Use concrete situations.",
		budget:   BudgetLong,
		required: []requirement{verseContent},
		user: func(r Request) string {
			return sections(
				verseSections(r),
				problemSections(r),
			)
		},
	},

	PracticalAction: {
		system: "You are a practical guide who draws on the Bhagavad Gita. Give three to five short, " +
			"actionable steps a reader can take this week to live the teaching of this verse. " +
			"Return a numbered list only.",
		budget:   BudgetLong,
		required: []requirement{verseContent},
		user: func(r Request) string {
			return sections(
				verseSections(r),
				problemSections(r),
			)
		},
	},

	ModernStory: {
		system: "You are a storyteller. Write an original modern short story of 300 to 500 words, " +
			"set in the given setting, whose arc illustrates the teaching of this Bhagavad Gita " +
			"verse. Give the story a title on the first line. Do not quote the verse directly.",
		budget:   BudgetLong,
		required: []requirement{verseContent, {anyOf: []string{FieldStoryType}}},
		user: func(r Request) string {
			return sections(
				section("Story setting", r.Field(FieldStoryType)),
				verseSections(r),
				problemSections(r),
			)
		},
	},

	SuggestStoryType: {
		system: "You help editors plan content for a Bhagavad Gita site. Pick the single story " +
			"setting that best fits this verse from this list: " + strings.Join(StoryTypes, ", ") +
			". Reply with the setting word only.",
		budget:   BudgetShort,
		required: []requirement{verseContent},
		user: func(r Request) string {
			return sections(verseSections(r), problemSections(r))
		},
	},

	ChapterDescription: {
		system: "You are a scholar of the Bhagavad Gita writing chapter introductions for a " +
			"bilingual site. Write a short description (80 to 120 words) of the chapter in " +
			"English and the same description in Hindi. Respond in exactly this format:\n" +
			"ENGLISH: <english description>\nHINDI: <hindi description>",
		budget:   BudgetLong,
		required: []requirement{{anyOf: []string{FieldChapterTitle}, orChapter: true}},
		user: func(r Request) string {
			return sections(section("Chapter title", r.Field(FieldChapterTitle)))
		},
	},

	SuggestProblems: {
		system: "You help editors tag Bhagavad Gita verses with the modern life problems they " +
			"address. Suggest up to five problems for this verse. Reuse the existing problem " +
			"names and categories whenever one fits; only invent a new one when none does. " +
			"Respond with only a JSON array of objects with the keys \"name\", \"category\" and " +
			"\"relevance_score\" (a number from 0 to 1).",
		budget:   BudgetLong,
		required: []requirement{verseContent},
		user: func(r Request) string {
			return sections(
				verseSections(r),
				section("Existing problems", r.Field(FieldExistingProblems)),
				section("Existing categories", r.Field(FieldExistingCategories)),
			)
		},
	},
}

func verseSections(r Request) string {
	return sections(
		section("Sanskrit verse", r.Field(FieldSanskritText)),
		section("Transliteration", r.Field(FieldTransliteration)),
		section("English meaning", r.Field(FieldEnglishMeaning)),
		section("Hindi meaning", r.Field(FieldHindiMeaning)),
	)
}

func problemSections(r Request) string {
	return sections(
		section("Life problem", r.Field(FieldProblemName)),
		section("Problem description", r.Field(FieldProblemDescription)),
	)
}

func section(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ":\n" + value
}

func sections(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// verseReference names the chapter and verse a request is anchored to.
func verseReference(r Request, hindi bool) string {
	switch {
	case r.ChapterNumber != nil && r.VerseNumber != nil && hindi:
		return fmt.Sprintf("भगवद गीता अध्याय %d, श्लोक %d", *r.ChapterNumber, *r.VerseNumber)
	case r.ChapterNumber != nil && r.VerseNumber != nil:
		return fmt.Sprintf("Bhagavad Gita Chapter %d, Verse %d", *r.ChapterNumber, *r.VerseNumber)
	case r.ChapterNumber != nil && hindi:
		return fmt.Sprintf("भगवद गीता अध्याय %d", *r.ChapterNumber)
	case r.ChapterNumber != nil:
		return fmt.Sprintf("Bhagavad Gita Chapter %d", *r.ChapterNumber)
	case r.VerseNumber != nil && hindi:
		return fmt.Sprintf("भगवद गीता श्लोक %d", *r.VerseNumber)
	case r.VerseNumber != nil:
		return fmt.Sprintf("Bhagavad Gita Verse %d", *r.VerseNumber)
	default:
		return ""
	}
}
