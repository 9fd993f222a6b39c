package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// ErrMalformedRequest is returned when a request body cannot be decoded.
var ErrMalformedRequest = errors.New("malformed generation request")

// Request field names.
const (
	FieldSanskritText       = "sanskrit_text"
	FieldTransliteration    = "transliteration"
	FieldHindiMeaning       = "hindi_meaning"
	FieldEnglishMeaning     = "english_meaning"
	FieldHindiText          = "hindi_text"
	FieldProblemName        = "problem_name"
	FieldProblemDescription = "problem_description"
	FieldStoryType          = "story_type"
	FieldExistingProblems   = "existing_problems"
	FieldExistingCategories = "existing_categories"
	FieldChapterTitle       = "chapter_title"
)

const (
	keyType          = "type"
	keyChapterNumber = "chapter_number"
	keyVerseNumber   = "verse_number"
)

// Request is one content-generation request.
//
// On the wire it is a flat JSON object: {"type": ..., <field>: ...,
// "chapter_number": n, "verse_number": n}. Every key other than those three
// is a field; a null field is present but unset.
type Request struct {
	Type          ContentType
	Fields        map[string]*string
	ChapterNumber *int
	VerseNumber   *int
}

// Field returns the trimmed value of a field, or "" when absent or null.
func (r Request) Field(name string) string {
	v, ok := r.Fields[name]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

// With returns a copy of r with field name set to value.
func (r Request) With(name, value string) Request {
	fields := make(map[string]*string, len(r.Fields)+1)
	maps.Copy(fields, r.Fields)
	fields[name] = &value
	r.Fields = fields
	return r
}

func (r Request) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[keyType] = r.Type
	if r.ChapterNumber != nil {
		out[keyChapterNumber] = *r.ChapterNumber
	}
	if r.VerseNumber != nil {
		out[keyVerseNumber] = *r.VerseNumber
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the flat wire form. String arrays (as sent for the
// existing taxonomy) are joined with ", "; other non-string values keep
// their JSON text.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}

	var typ string
	if err := json.Unmarshal(raw[keyType], &typ); err != nil || typ == "" {
		return fmt.Errorf("%w: missing or non-string %q", ErrMalformedRequest, keyType)
	}

	chapter, err := optionalInt(raw[keyChapterNumber])
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedRequest, keyChapterNumber, err)
	}
	verse, err := optionalInt(raw[keyVerseNumber])
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedRequest, keyVerseNumber, err)
	}

	fields := make(map[string]*string, len(raw))
	for k, v := range raw {
		if k == keyType || k == keyChapterNumber || k == keyVerseNumber {
			continue
		}
		fields[k] = fieldValue(v)
	}

	*r = Request{
		Type:          ContentType(typ),
		Fields:        fields,
		ChapterNumber: chapter,
		VerseNumber:   verse,
	}
	return nil
}

func optionalInt(raw json.RawMessage) (*int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("not an integer: %s", raw)
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	return &n, nil
}

func fieldValue(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		joined := strings.Join(list, ", ")
		return &joined
	}

	text := string(raw)
	return &text
}
