package extract

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstMatchOrderedRules(t *testing.T) {
	t.Parallel()

	text := `<meta name="twitter:title" content="Second"><title>Third</title>`
	rules := []Rule{
		NewRule(`<meta property="og:title" content="([^"]*)"`, true),
		NewRule(`<meta name="twitter:title" content="([^"]*)"`, true),
		NewRule(`<title>(.*?)</title>`, true),
	}

	got, ok := FirstMatch(text, rules...)
	require.True(t, ok)
	require.Equal(t, "Second", got)
}

func TestFirstMatchSkipsEmptyCaptures(t *testing.T) {
	t.Parallel()

	text := `<title>   </title><h1>Heading</h1>`
	got, ok := FirstMatch(text,
		NewRule(`<title>(.*?)</title>`, true),
		NewRule(`<h1>(.*?)</h1>`, true),
	)
	require.True(t, ok)
	require.Equal(t, "Heading", got)
}

func TestFirstMatchNoMatch(t *testing.T) {
	t.Parallel()

	got, ok := FirstMatch("plain text", NewRule(`<title>(.*?)</title>`, false))
	require.False(t, ok)
	require.Empty(t, got)

	_, ok = FirstMatch("")
	require.False(t, ok)
}

func TestRuleGroupOutOfRange(t *testing.T) {
	t.Parallel()

	rule := Rule{Pattern: regexp.MustCompile(`<b>(.*)</b>`), Group: 3}
	_, ok := rule.Match("<b>x</b>")
	require.False(t, ok)
}

func TestUnwrapCDATA(t *testing.T) {
	t.Parallel()

	rule := NewRule(`(?s)<title>(.*?)</title>`, true)
	got, ok := rule.Match("<title><![CDATA[Tom &amp; Jerry]]></title>")
	require.True(t, ok)
	require.Equal(t, "Tom & Jerry", got)
}

func TestRuleAll(t *testing.T) {
	t.Parallel()

	rule := NewRule(`<li>(.*?)</li>`, false)
	require.Equal(t, []string{"a", "c"}, rule.All("<li>a</li><li> </li><li>c</li>"))
	require.Nil(t, rule.All(""))
}

func TestDecodeEntities(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"a &amp; b", "a & b"},
		{"&lt;p&gt;", "<p>"},
		{"&quot;q&quot; &#39;s&#x27;", `"q" 's'`},
		{"a&#x2F;b&nbsp;c", "a/b c"},
		{"&amp;lt;", "&lt;"},
		{"no entities", "no entities"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, DecodeEntities(tc.in), tc.in)
	}
}

func TestStripHTML(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Hello world again", StripHTML("<p>Hello\n\n  <b>world</b></p>\t again "))
	require.Equal(t, "", StripHTML("<br/><img src=x>"))
}

func TestDecodeBeforeStrip(t *testing.T) {
	t.Parallel()

	require.Equal(t, "&text", StripHTML(DecodeEntities("&amp;&lt;b&gt;text&lt;/b&gt;")))
	require.Equal(t, "&text", Text("&amp;&lt;b&gt;text&lt;/b&gt;"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "héll", Truncate("héllo", 4))
	require.Equal(t, "short", Truncate("short", 300))
	require.Empty(t, Truncate("x", 0))
}
