// Package dataentry recognises user messages that submit structured data
// ("dato: ..." / "datos ...") and handles the key=value|key=value format
// shared with the image extraction output.
package dataentry

import (
	"regexp"
	"sort"
	"strings"
)

// Keywords that open a data entry. Matching is case-insensitive.
var Keywords = []string{"datos", "dato"}

var entryRx = buildMatcher(Keywords)

func buildMatcher(keywords []string) *regexp.Regexp {
	sorted := append([]string(nil), keywords...)
	// longest first so "datos" is not consumed as "dato" + "s"
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, 0, len(sorted))
	for _, k := range sorted {
		quoted = append(quoted, regexp.QuoteMeta(k))
	}
	return regexp.MustCompile(`(?is)^\s*(?:` + strings.Join(quoted, "|") + `)(?:\s*:\s*|\s+)(.*)$`)
}

// Match reports whether text is a data entry. For a data entry it returns the
// trimmed content after the keyword; otherwise text is returned unchanged.
// A keyword with nothing after it is not a data entry.
func Match(text string) (bool, string) {
	m := entryRx.FindStringSubmatch(text)
	if m == nil {
		return false, text
	}
	content := strings.TrimSpace(m[1])
	if content == "" {
		return false, text
	}
	return true, content
}
