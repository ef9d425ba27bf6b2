package dataentry

import "strings"

const (
	pairSeparator  = "|"
	valueSeparator = "="
)

type Pair struct {
	Key   string
	Value string
}

// ParsePairs splits key=value|key=value into ordered pairs. Segments without
// a separator or with an empty key are dropped. Values may contain "=".
func ParsePairs(s string) []Pair {
	var pairs []Pair
	for _, segment := range strings.Split(s, pairSeparator) {
		key, value, found := strings.Cut(segment, valueSeparator)
		key = strings.TrimSpace(key)
		if !found || key == "" {
			continue
		}
		pairs = append(pairs, Pair{Key: key, Value: strings.TrimSpace(value)})
	}
	return pairs
}

// FormatPairs is the inverse of ParsePairs. Separator characters inside keys
// and values are replaced so the output always parses back to the same pairs.
func FormatPairs(pairs []Pair) string {
	segments := make([]string, 0, len(pairs))
	for _, p := range pairs {
		key := sanitize(p.Key, true)
		if key == "" {
			continue
		}
		segments = append(segments, key+valueSeparator+sanitize(p.Value, false))
	}
	return strings.Join(segments, pairSeparator)
}

// ToMap keeps the last value for repeated keys.
func ToMap(pairs []Pair) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Value
	}
	return m
}

var (
	keyReplacer   = strings.NewReplacer("|", "/", "=", "-", "\n", " ", "\r", " ")
	valueReplacer = strings.NewReplacer("|", "/", "\n", " ", "\r", " ")
)

func sanitize(s string, isKey bool) string {
	if isKey {
		return strings.TrimSpace(keyReplacer.Replace(s))
	}
	return strings.TrimSpace(valueReplacer.Replace(s))
}
