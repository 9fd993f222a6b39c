package generation

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ProblemSuggestion is one life problem suggested for a verse.
type ProblemSuggestion struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	RelevanceScore Score  `json:"relevance_score"`
}

// Score is a relevance score. Models sometimes quote numbers, so a numeric
// string decodes too.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*s = Score(f)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return err
	}
	*s = Score(f)
	return nil
}

// BilingualDescription is a bilingual chapter introduction.
type BilingualDescription struct {
	English string `json:"description_english"`
	Hindi   string `json:"description_hindi"`
}

// Result is a normalized provider reply.
//
// RawText is always set. Problems is non-nil only for suggest_problems
// replies that contained a usable JSON array; Chapter is non-nil only for
// chapter_description replies.
type Result struct {
	RawText  string
	Problems []ProblemSuggestion
	Chapter  *BilingualDescription
}

// Structured reports whether any structured field was extracted.
func (r *Result) Structured() bool {
	return r.Problems != nil || r.Chapter != nil
}

// Normalize extracts structured fields from raw for the content types whose
// output is machine readable. It never fails: when nothing can be extracted
// the raw text is passed up alone for an editor to fix.
func Normalize(tag ContentType, raw string) Result {
	result := Result{RawText: raw}

	switch tag {
	case SuggestProblems:
		if problems, ok := extractProblems(raw); ok {
			result.Problems = problems
		}
	case ChapterDescription:
		desc := splitChapterDescription(raw)
		result.Chapter = &desc
	}

	return result
}

// extractProblems returns the first bracket-balanced [...] substring of raw
// that decodes as a problem list. Each candidate is decoded strictly first,
// then once more after JSON repair. An opening bracket that is never closed
// (a reply cut off by the token cap) is only tried through repair.
func extractProblems(raw string) ([]ProblemSuggestion, bool) {
	for start := 0; start < len(raw); start++ {
		if raw[start] != '[' {
			continue
		}

		end := matchBracket(raw, start)
		if end < 0 {
			if problems, ok := decodeProblems(raw[start:], false); ok {
				return problems, true
			}
			continue
		}
		if problems, ok := decodeProblems(raw[start:end+1], true); ok {
			return problems, true
		}
	}

	return nil, false
}

// matchBracket returns the index of the "]" closing the "[" at start, or -1.
// Brackets inside JSON strings are ignored.
func matchBracket(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

func decodeProblems(candidate string, strict bool) ([]ProblemSuggestion, bool) {
	var decoded []ProblemSuggestion

	err := json.Unmarshal([]byte(candidate), &decoded)
	if err != nil || !strict {
		repaired, ok := repair(candidate)
		if !ok {
			return nil, false
		}
		decoded = nil
		if err := json.Unmarshal([]byte(repaired), &decoded); err != nil {
			return nil, false
		}
	}

	problems := make([]ProblemSuggestion, 0, len(decoded))
	for _, p := range decoded {
		p.Name = strings.TrimSpace(p.Name)
		p.Category = strings.TrimSpace(p.Category)
		if p.Name == "" {
			continue
		}
		problems = append(problems, p)
	}

	if len(decoded) > 0 && len(problems) == 0 {
		return nil, false
	}

	return problems, true
}

// repair runs candidate through jsonrepair. A panic inside the repairer
// counts as a failed repair so Normalize keeps its no-failure contract.
func repair(candidate string) (repaired string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			repaired, ok = "", false
		}
	}()

	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return "", false
	}
	return repaired, true
}

var (
	englishLabel = regexp.MustCompile(`(?i)[*#_]*\benglish[\s*_]*:`)
	hindiLabel   = regexp.MustCompile(`(?i)[*#_]*\bhindi[\s*_]*:`)
)

// splitChapterDescription splits raw on its ENGLISH: and HINDI: labels,
// wherever they appear. Text before the first label is dropped. Without both
// labels, the whole text (less a leading English label) is the English
// description and the Hindi one is empty.
func splitChapterDescription(raw string) BilingualDescription {
	en := englishLabel.FindStringIndex(raw)
	hi := hindiLabel.FindStringIndex(raw)

	switch {
	case en != nil && hi != nil && en[0] < hi[0]:
		return BilingualDescription{
			English: cleanLabelled(raw[en[1]:hi[0]]),
			Hindi:   cleanLabelled(raw[hi[1]:]),
		}
	case en != nil && hi != nil:
		return BilingualDescription{
			English: cleanLabelled(raw[en[1]:]),
			Hindi:   cleanLabelled(raw[hi[1]:en[0]]),
		}
	case en != nil && strings.TrimSpace(raw[:en[0]]) == "":
		return BilingualDescription{English: cleanLabelled(raw[en[1]:])}
	default:
		return BilingualDescription{English: strings.TrimSpace(raw)}
	}
}

func cleanLabelled(s string) string {
	return strings.Trim(s, " \t\r\n*_")
}
