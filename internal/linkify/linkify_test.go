package linkify

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Segment
	}{
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "no urls",
			input: "just some words",
			want:  []Segment{{Text: "just some words"}},
		},
		{
			name:  "url in the middle",
			input: "see http://a.com now",
			want: []Segment{
				{Text: "see "},
				{Text: "http://a.com", IsURL: true},
				{Text: " now"},
			},
		},
		{
			name:  "url only",
			input: "https://example.org/path?q=1",
			want:  []Segment{{Text: "https://example.org/path?q=1", IsURL: true}},
		},
		{
			name:  "adjacent urls separated by a newline",
			input: "http://a.com\nhttps://b.com",
			want: []Segment{
				{Text: "http://a.com", IsURL: true},
				{Text: "\n"},
				{Text: "https://b.com", IsURL: true},
			},
		},
		{
			name:  "greedy match keeps trailing punctuation",
			input: "go to https://x.io/a, then",
			want: []Segment{
				{Text: "go to "},
				{Text: "https://x.io/a,", IsURL: true},
				{Text: " then"},
			},
		},
		{
			name:  "scheme without body is plain text",
			input: "http:// nothing",
			want:  []Segment{{Text: "http:// nothing"}},
		},
		{
			name:  "unsupported scheme is plain text",
			input: "ftp://files.example.com",
			want:  []Segment{{Text: "ftp://files.example.com"}},
		},
		{
			name:  "non-breaking space ends a url",
			input: "http://a.com\u00a0next",
			want: []Segment{
				{Text: "http://a.com", IsURL: true},
				{Text: "\u00a0next"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Split(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestSplitIsLossless(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"hello",
		"see http://a.com now",
		"http://a.com",
		"a https://b.c/d e http://f.g h",
		"日本語 https://例え.jp/パス テキスト",
		"trailing http://",
		"\t\thttps://x.y\t\t",
	}

	for _, in := range inputs {
		var b strings.Builder
		for _, seg := range Split(in) {
			assert.NotEmpty(t, seg.Text, "segments are never empty (input %q)", in)
			b.WriteString(seg.Text)
		}
		assert.Equal(t, in, b.String())
	}
}

func TestSplitWithoutURLsYieldsOneSegment(t *testing.T) {
	for _, in := range []string{"a", "hello world", "http:/nope", "   "} {
		got := Split(in)
		if assert.Len(t, got, 1, in) {
			assert.Equal(t, Segment{Text: in}, got[0])
		}
	}
}

func TestRender(t *testing.T) {
	got := Render("see http://a.com now", func(url string) string {
		return "<" + url + ">"
	})
	assert.Equal(t, "see <http://a.com> now", got)

	assert.Equal(t, "plain", Render("plain", nil))
	assert.Equal(t, "", Render("", strings.ToUpper))
}
