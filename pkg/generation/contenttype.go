// Package generation turns typed content-generation requests into provider
// calls: it builds the prompt pair for a content type, dispatches it to the
// configured provider and normalizes the reply into a typed Result.
package generation

import (
	"errors"
	"fmt"
)

// ErrUnsupportedType is returned for a content type outside the closed set.
var ErrUnsupportedType = errors.New("unsupported content type")

// ContentType selects the prompt template and response shape of a request.
type ContentType string

const (
	Transliteration         ContentType = "transliteration"
	HindiMeaning            ContentType = "hindi_meaning"
	EnglishMeaning          ContentType = "english_meaning"
	TranslateHindiToEnglish ContentType = "translate_hindi_to_english"
	ProblemContext          ContentType = "problem_context"
	SolutionGita            ContentType = "solution_gita"
	LifeApplication         ContentType = "life_application"
	PracticalAction         ContentType = "practical_action"
	ModernStory             ContentType = "modern_story"
	SuggestStoryType        ContentType = "suggest_story_type"
	ChapterDescription      ContentType = "chapter_description"
	SuggestProblems         ContentType = "suggest_problems"
)

// ContentTypes returns every supported content type.
func ContentTypes() []ContentType {
	return []ContentType{
		Transliteration,
		HindiMeaning,
		EnglishMeaning,
		TranslateHindiToEnglish,
		ProblemContext,
		SolutionGita,
		LifeApplication,
		PracticalAction,
		ModernStory,
		SuggestStoryType,
		ChapterDescription,
		SuggestProblems,
	}
}

// ParseContentType validates s against the closed set of content types.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(s)
	if _, ok := templates[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, s)
	}
	return t, nil
}

// Valid reports whether t is a supported content type.
func (t ContentType) Valid() bool {
	_, ok := templates[t]
	return ok
}

// Budget returns the token budget class of t.
func (t ContentType) Budget() Budget {
	if tmpl, ok := templates[t]; ok {
		return tmpl.budget
	}
	return BudgetLong
}

// Budget is a token budget class. Short fields get the low cap, long-form
// generation the high one.
type Budget int

const (
	BudgetShort Budget = iota
	BudgetLong
)

func (b Budget) String() string {
	if b == BudgetShort {
		return "short"
	}
	return "long"
}
