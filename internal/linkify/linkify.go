// Package linkify splits message text into plain and URL runs.
package linkify

import (
	"regexp"
	"strings"
)

// urlPattern matches an http(s) scheme followed by a run of non-space characters.
// \p{Z} extends RE2's ASCII-only \s to Unicode separators such as NBSP.
var urlPattern = regexp.MustCompile(`https?://[^\s\p{Z}]+`)

// Segment is a contiguous run of input text classified as URL or plain text
type Segment struct {
	Text  string
	IsURL bool
}

// Split partitions text into segments. Joining the segments' Text reproduces the input
// exactly. Empty input yields no segments.
func Split(text string) []Segment {
	if text == "" {
		return nil
	}

	var segments []Segment
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segments = append(segments, Segment{Text: text[last:loc[0]]})
		}
		segments = append(segments, Segment{Text: text[loc[0]:loc[1]], IsURL: true})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments
}

// Render rebuilds text with every URL segment passed through link
func Render(text string, link func(url string) string) string {
	var b strings.Builder
	for _, seg := range Split(text) {
		if seg.IsURL && link != nil {
			b.WriteString(link(seg.Text))
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}
