package extraction

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindText Kind = iota
	KindEmpty
	KindBlocked
	KindInvalidFormat
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindEmpty:
		return "empty"
	case KindBlocked:
		return "blocked"
	case KindInvalidFormat:
		return "invalid_format"
	case KindMalformed:
		return "malformed"
	}
	return "unknown"
}

const (
	InvalidFormatMessage = "Error: invalid response format"
	NoTextMessage        = "No text content found in response"
	MalformedMessage     = "Error processing response"
)

// Result is the outcome of an extraction. Only KindText carries usable text;
// the other kinds render to fixed user-facing messages.
type Result struct {
	Kind          Kind
	Text          string
	BlockReason   string
	SafetyRatings []SafetyRating
}

func (r Result) OK() bool {
	return r.Kind == KindText
}

func (r Result) String() string {
	switch r.Kind {
	case KindText:
		return r.Text
	case KindEmpty:
		return NoTextMessage
	case KindBlocked:
		return blockedMessage(r.BlockReason, r.SafetyRatings)
	case KindInvalidFormat:
		return InvalidFormatMessage
	case KindMalformed:
		return MalformedMessage
	}
	return MalformedMessage
}

func blockedMessage(reason string, ratings []SafetyRating) string {
	msg := fmt.Sprintf("Response blocked: %s", reason)
	if len(ratings) == 0 {
		return msg
	}

	parts := make([]string, 0, len(ratings))
	for _, r := range ratings {
		parts = append(parts, fmt.Sprintf("%s=%s", r.Category, r.Probability))
	}
	return fmt.Sprintf("%s (safety ratings: %s)", msg, strings.Join(parts, ", "))
}
