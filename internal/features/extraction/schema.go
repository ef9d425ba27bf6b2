package extraction

// Response is the part of a Gemini generateContent reply the extractor reads.
// Every level is optional; a missing level simply contributes no text.
type Response struct {
	Candidates     []Candidate
	PromptFeedback *PromptFeedback
}

type Candidate struct {
	Content *Content
}

type Content struct {
	Parts []Part
}

// Part.Text is nil when the part carries no text or a non-string text value.
type Part struct {
	Text *string
}

type PromptFeedback struct {
	BlockReason   string
	SafetyRatings []SafetyRating
}

type SafetyRating struct {
	Category    string
	Probability string
}

// decodeRecord maps a generic JSON object onto Response. Fields of the wrong
// type are treated as absent rather than as errors.
func decodeRecord(record map[string]interface{}) Response {
	var resp Response

	for _, rawCandidate := range asSlice(record["candidates"]) {
		candidateMap, ok := rawCandidate.(map[string]interface{})
		if !ok {
			resp.Candidates = append(resp.Candidates, Candidate{})
			continue
		}

		var candidate Candidate
		if contentMap, ok := candidateMap["content"].(map[string]interface{}); ok {
			content := &Content{}
			for _, rawPart := range asSlice(contentMap["parts"]) {
				var part Part
				if partMap, ok := rawPart.(map[string]interface{}); ok {
					if text, ok := partMap["text"].(string); ok {
						part.Text = &text
					}
				}
				content.Parts = append(content.Parts, part)
			}
			candidate.Content = content
		}
		resp.Candidates = append(resp.Candidates, candidate)
	}

	feedback := decodeFeedback(record)
	if feedback != nil {
		resp.PromptFeedback = feedback
	}

	return resp
}

// decodeFeedback reads promptFeedback, also accepting a top-level blockReason.
func decodeFeedback(record map[string]interface{}) *PromptFeedback {
	source, ok := record["promptFeedback"].(map[string]interface{})
	if !ok {
		source = record
	}

	reason, _ := source["blockReason"].(string)
	if reason == "" {
		return nil
	}

	feedback := &PromptFeedback{BlockReason: reason}
	for _, rawRating := range asSlice(source["safetyRatings"]) {
		ratingMap, ok := rawRating.(map[string]interface{})
		if !ok {
			continue
		}
		category, _ := ratingMap["category"].(string)
		probability, _ := ratingMap["probability"].(string)
		feedback.SafetyRatings = append(feedback.SafetyRatings, SafetyRating{Category: category, Probability: probability})
	}
	return feedback
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}
