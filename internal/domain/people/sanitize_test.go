package people

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Run("returns empty string for empty input", func(t *testing.T) {
		assert.Equal(t, "", Sanitize(""))
	})

	t.Run("passes plain text through", func(t *testing.T) {
		assert.Equal(t, "Jane Smith", Sanitize("Jane Smith"))
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, "Jane", Sanitize("  Jane \t "))
	})

	t.Run("removes script tags and content", func(t *testing.T) {
		out := Sanitize(`Jane<script>alert("xss")</script>Smith`)
		assert.NotContains(t, out, "<")
		assert.NotContains(t, out, ">")
		assert.NotContains(t, out, "alert")
	})

	t.Run("removes html tags", func(t *testing.T) {
		out := Sanitize("<b>Jane</b> <i>Smith</i>")
		assert.Equal(t, "Jane Smith", out)
	})

	t.Run("no angle brackets survive entity escaping", func(t *testing.T) {
		for _, in := range []string{
			"&lt;script&gt;x&lt;/script&gt;",
			"&amp;lt;script&amp;gt;",
			"a &lt; b &gt; c",
		} {
			out := Sanitize(in)
			assert.NotContains(t, out, "<", "input %q", in)
			assert.NotContains(t, out, ">", "input %q", in)
		}
	})

	t.Run("strips control characters but keeps newline and tab", func(t *testing.T) {
		out := Sanitize("line1\nline2\tcol\x00\x07")
		assert.Equal(t, "line1\nline2\tcol", out)
	})

	t.Run("keeps ampersand text intact", func(t *testing.T) {
		assert.Equal(t, "AT&T", Sanitize("AT&T"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		inputs := []string{
			"",
			"Jane Smith",
			"  spaced  ",
			"<script>alert(1)</script>",
			"&amp;lt;b&amp;gt;bold",
			"AT&T \x01 rocks",
			"multi\nline\nnotes",
			`<a href="javascript:x()">link</a>`,
		}
		for _, in := range inputs {
			once := Sanitize(in)
			assert.Equal(t, once, Sanitize(once), "input %q", in)
		}
	})
}

func TestTruncate(t *testing.T) {
	t.Run("leaves short strings alone", func(t *testing.T) {
		assert.Equal(t, "abc", Truncate("abc", 10))
	})

	t.Run("caps at max runes", func(t *testing.T) {
		assert.Equal(t, "abcde", Truncate("abcdefgh", 5))
	})

	t.Run("does not split multibyte characters", func(t *testing.T) {
		s := strings.Repeat("é", 10)
		out := Truncate(s, 4)
		assert.Equal(t, strings.Repeat("é", 4), out)
	})
}
