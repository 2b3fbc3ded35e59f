package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips markup and decodes amp", "<b>A&amp;B</b>   C", "A&B C"},
		{"collapses whitespace and newlines", "a\n\n  b\t c", "a b c"},
		{"nbsp becomes plain space", "a&nbsp;b", "a b"},
		{"pound sign", "&pound;10,000", "£10,000"},
		{"quotes and apostrophe", "&quot;it&#39;s&quot;", `"it's"`},
		{"dashes", "2024&ndash;2025 &mdash; open", "2024–2025 — open"},
		{"tags replaced without gluing words", "<p>one</p><p>two</p>", "one two"},
		{"encoded markup flattens fully", "&lt;b&gt;bold&lt;/b&gt;", "bold"},
		{"double-encoded lt", "&amp;lt;", "<"},
		{"double-encoded amp", "&amp;amp;", "&"},
		{"empty", "", ""},
		{"whitespace only", "  \n\t ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"<b>A&amp;B</b>   C",
		"plain text already clean",
		"<div><span>nested &nbsp; markup</span></div>",
		"max award &pound;5,000 &ndash; apply by 1 May",
		"a &lt; b and c &gt; d",
		"&lt;b&gt;bold&lt;/b&gt;",
		"&amp;lt;",
		"&amp;amp;",
		"&amp;amp;lt;div&amp;amp;gt;deeply wrapped&amp;amp;lt;/div&amp;amp;gt;",
		"",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcd", 2))
	assert.Equal(t, "", truncate("abcd", 0))
	// never splits a rune
	s := truncate("aé", 2)
	assert.Equal(t, "a", s)
	long := strings.Repeat("x", 5000)
	assert.Len(t, truncate(long, 2000), 2000)
}
