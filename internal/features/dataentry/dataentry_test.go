package dataentry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		ok      bool
		content string
	}{
		{"colon", "dato: blood type O+", true, "blood type O+"},
		{"plural space", "datos   nombre=Ana|edad=30", true, "nombre=Ana|edad=30"},
		{"uppercase", "DATOS: x", true, "x"},
		{"mixed case no space after colon", "Dato:valor", true, "valor"},
		{"leading whitespace", "  dato  :  algo  ", true, "algo"},
		{"multiline", "datos:\nlinea1\nlinea2", true, "linea1\nlinea2"},
		{"keyword only", "dato", false, "dato"},
		{"keyword and colon only", "datos:   ", false, "datos:   "},
		{"prefix of a word", "datox 1", false, "datox 1"},
		{"not at start", "mis datos: 1", false, "mis datos: 1"},
		{"plain text", "hello there", false, "hello there"},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, content := Match(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.content, content)
		})
	}
}

func TestMatch_ContentIsTrimmed(t *testing.T) {
	for _, text := range []string{"dato: a ", "datos \t b\n", "DATO:c"} {
		ok, content := Match(text)
		assert.True(t, ok)
		assert.NotEmpty(t, content)
		assert.Equal(t, content, trimmed(content))
	}
}

func trimmed(s string) string {
	for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n') {
		s = s[1:]
	}
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t' || s[len(s)-1] == '\n') {
		s = s[:len(s)-1]
	}
	return s
}

func TestParsePairs(t *testing.T) {
	pairs := ParsePairs(" name = Ana | age=30|broken||=x|url=a=b")
	assert.Equal(t, []Pair{
		{Key: "name", Value: "Ana"},
		{Key: "age", Value: "30"},
		{Key: "url", Value: "a=b"},
	}, pairs)

	assert.Empty(t, ParsePairs(""))
	assert.Empty(t, ParsePairs("no pairs here"))
}

func TestFormatPairs(t *testing.T) {
	assert.Equal(t, "name=Ana|age=30", FormatPairs([]Pair{{"name", "Ana"}, {"age", "30"}}))
	assert.Equal(t, "a/b=x/y", FormatPairs([]Pair{{"a|b", "x|y"}}))
	assert.Equal(t, "k=line one", FormatPairs([]Pair{{"k", "line\none"}, {"", "dropped"}}))

	in := []Pair{{"x-y", "1=2"}, {"note", "a / b"}}
	assert.Equal(t, in, ParsePairs(FormatPairs(in)))
}

func TestToMap(t *testing.T) {
	m := ToMap([]Pair{{"a", "1"}, {"b", "2"}, {"a", "3"}})
	assert.Equal(t, map[string]string{"a": "3", "b": "2"}, m)
}
