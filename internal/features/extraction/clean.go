package extraction

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

var fenceRx = regexp.MustCompile("```[A-Za-z0-9_-]*")

// Clean strips markdown code fences, backticks and bold markers.
func Clean(text string) string {
	text = fenceRx.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "`", "")
	text = strings.ReplaceAll(text, "**", "")
	return strings.TrimSpace(text)
}

// LooksLikeKeyValue reports whether text has the key=value|key=value shape.
// Callers use it for logging only.
func LooksLikeKeyValue(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	for _, segment := range strings.Split(text, "|") {
		key, _, found := strings.Cut(segment, "=")
		if !found || strings.TrimSpace(key) == "" {
			return false
		}
	}
	return true
}

// jsonObjectToPairs renders a flat JSON object as key=value|key=value,
// keeping the key order of the source document.
func jsonObjectToPairs(text string) (string, bool) {
	if !strings.HasPrefix(text, "{") {
		return "", false
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return "", false
	}

	var pairs []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return "", false
		}
		key, ok := keyTok.(string)
		if !ok {
			return "", false
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return "", false
		}
		pairs = append(pairs, key+"="+renderValue(raw))
	}

	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return "", false
	}
	if dec.More() {
		return "", false
	}
	if len(pairs) == 0 {
		return "", false
	}

	return strings.Join(pairs, "|"), true
}

func renderValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return ""
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	case trimmed[0] == '{' || trimmed[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			return buf.String()
		}
	}
	return string(trimmed)
}
