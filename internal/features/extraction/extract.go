// Package extraction flattens Gemini generateContent replies into plain text.
//
// Extract is pure and total: any input, including nil and values of
// unexpected types, yields a Result and never panics.
package extraction

import (
	"encoding/json"
	"strings"
)

// Extract accepts a single response record or an ordered sequence of records.
// Records may be given as decoded JSON (map[string]interface{}), as Response
// values, or as a JSON document in a string or byte slice.
func Extract(input interface{}) Result {
	switch v := input.(type) {
	case nil:
		return Result{Kind: KindInvalidFormat}
	case string:
		return extractJSON([]byte(v))
	case []byte:
		return extractJSON(v)
	case json.RawMessage:
		return extractJSON(v)
	case map[string]interface{}:
		return finish(fromResponses([]Response{decodeRecord(v)}))
	case Response:
		return finish(fromResponses([]Response{v}))
	case *Response:
		if v == nil {
			return Result{Kind: KindInvalidFormat}
		}
		return finish(fromResponses([]Response{*v}))
	case []Response:
		return finish(fromResponses(v))
	case []map[string]interface{}:
		responses := make([]Response, 0, len(v))
		for _, record := range v {
			responses = append(responses, decodeRecord(record))
		}
		return finish(fromResponses(responses))
	case []interface{}:
		responses := make([]Response, 0, len(v))
		for _, item := range v {
			record, ok := item.(map[string]interface{})
			if !ok {
				return Result{Kind: KindInvalidFormat}
			}
			responses = append(responses, decodeRecord(record))
		}
		return finish(fromResponses(responses))
	}
	return Result{Kind: KindInvalidFormat}
}

// ExtractText is Extract rendered to a string.
func ExtractText(input interface{}) string {
	return Extract(input).String()
}

func extractJSON(data []byte) Result {
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return Result{Kind: KindMalformed}
	}
	switch decoded.(type) {
	case map[string]interface{}, []interface{}:
		return Extract(decoded)
	}
	return Result{Kind: KindInvalidFormat}
}

// fromResponses concatenates the first candidate's parts of every response,
// in order and without a separator.
func fromResponses(responses []Response) Result {
	var (
		sb      strings.Builder
		blocked *PromptFeedback
	)

	for _, resp := range responses {
		if len(resp.Candidates) == 0 {
			if resp.PromptFeedback != nil && blocked == nil {
				blocked = resp.PromptFeedback
			}
			continue
		}
		sb.WriteString(candidateText(resp.Candidates[0]))
	}

	if sb.Len() > 0 {
		return Result{Kind: KindText, Text: sb.String()}
	}
	if blocked != nil {
		return Result{Kind: KindBlocked, BlockReason: blocked.BlockReason, SafetyRatings: blocked.SafetyRatings}
	}
	return Result{Kind: KindEmpty}
}

func candidateText(c Candidate) string {
	if c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range c.Content.Parts {
		if p.Text != nil {
			sb.WriteString(*p.Text)
		}
	}
	return sb.String()
}

func finish(r Result) Result {
	if r.Kind != KindText {
		return r
	}
	text := Clean(r.Text)
	if text == "" {
		return Result{Kind: KindEmpty}
	}
	if pairs, ok := jsonObjectToPairs(text); ok {
		text = pairs
	}
	r.Text = text
	return r
}
