package generation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingRequiredField is returned when a request lacks a field its
// content type needs.
var ErrMissingRequiredField = errors.New("missing required field")

// Prompt is the system/user prompt pair for one provider call.
type Prompt struct {
	System string
	User   string
}

// Build returns the prompt pair for req. It is pure.
//
// When the request names a chapter or verse, the reference is written
// into both prompts so the model answers for that verse and not for another
// with similar wording.
func Build(req Request) (Prompt, error) {
	tmpl, ok := templates[req.Type]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: %q", ErrUnsupportedType, req.Type)
	}

	for _, need := range tmpl.required {
		if !need.satisfiedBy(req) {
			return Prompt{}, fmt.Errorf("%w: %s needs %s", ErrMissingRequiredField, req.Type, need)
		}
	}

	prompt := Prompt{
		System: tmpl.system,
		User:   tmpl.user(req),
	}

	if ref := verseReference(req, tmpl.hindi); ref != "" {
		if tmpl.hindi {
			prompt.System += "\n\nयह अनुरोध " + ref + " के लिए है। उत्तर केवल इसी श्लोक पर आधारित हो।"
		} else {
			prompt.System += "\n\nThis request is about " + ref + ". Answer for this passage specifically."
		}
		prompt.User = sections(ref, prompt.User)
	}

	return prompt, nil
}

func (n requirement) satisfiedBy(req Request) bool {
	if n.orChapter && req.ChapterNumber != nil {
		return true
	}
	for _, f := range n.anyOf {
		if req.Field(f) != "" {
			return true
		}
	}
	return false
}

func (n requirement) String() string {
	names := strings.Join(n.anyOf, " or ")
	if n.orChapter {
		names = keyChapterNumber + " or " + names
	}
	return names
}
