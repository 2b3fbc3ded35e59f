package scraper

import (
	"regexp"
	"strings"
)

var (
	// a tag-like start keeps bare comparisons such as "a < b" intact
	tagRe        = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// entityPairs is the fixed set of named entities the portal is known to
// emit. &amp; decodes last within a pass so nested encodings unwrap one
// layer at a time instead of skipping levels.
var entityPairs = []struct{ name, value string }{
	{"&nbsp;", " "},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&quot;", `"`},
	{"&#39;", "'"},
	{"&ndash;", "–"},
	{"&mdash;", "—"},
	{"&pound;", "£"},
	{"&amp;", "&"},
}

// Sanitize turns a fragment of portal markup into clean single-line text:
// tags stripped, known entities decoded, whitespace runs collapsed, ends
// trimmed. Decoding can reveal new tags ("&lt;b&gt;" decodes to "<b>") and
// new entities ("&amp;lt;" decodes to "&lt;"), so the pass repeats until the
// text stops changing. The result is a fixed point: sanitizing it again
// returns it unchanged.
func Sanitize(text string) string {
	for {
		next := sanitizePass(text)
		if next == text {
			return next
		}
		text = next
	}
}

// sanitizePass never lengthens the text, so the loop in Sanitize
// terminates.
func sanitizePass(text string) string {
	if text == "" {
		return ""
	}
	text = tagRe.ReplaceAllString(text, " ")
	for _, e := range entityPairs {
		text = strings.ReplaceAll(text, e.name, e.value)
	}
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// truncate cuts s to at most max bytes, never splitting a utf-8 rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && s[max]&0xc0 == 0x80 {
		max--
	}
	return s[:max]
}
