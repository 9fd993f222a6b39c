package generation

// Response is the JSON body returned for a successful generation.
//
// Problems is null when no list was extracted and [] when the model returned
// an empty one, so an empty suggestion list stays structured on the client.
type Response struct {
	Content            string              `json:"content"`
	Problems           []ProblemSuggestion `json:"problems"`
	DescriptionEnglish *string             `json:"description_english,omitempty"`
	DescriptionHindi   *string             `json:"description_hindi,omitempty"`
}

// NewResponse converts a Result to its wire form.
func NewResponse(r *Result) Response {
	resp := Response{
		Content:  r.RawText,
		Problems: r.Problems,
	}
	if r.Chapter != nil {
		resp.DescriptionEnglish = &r.Chapter.English
		resp.DescriptionHindi = &r.Chapter.Hindi
	}
	return resp
}

// Result converts the wire form back to a Result.
func (r Response) Result() *Result {
	result := &Result{
		RawText:  r.Content,
		Problems: r.Problems,
	}
	if r.DescriptionEnglish != nil || r.DescriptionHindi != nil {
		result.Chapter = &BilingualDescription{}
		if r.DescriptionEnglish != nil {
			result.Chapter.English = *r.DescriptionEnglish
		}
		if r.DescriptionHindi != nil {
			result.Chapter.Hindi = *r.DescriptionHindi
		}
	}
	return result
}
