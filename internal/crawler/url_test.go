package crawler

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://example.com/a", NormalizeURL("https://Example.com/A/"))
	require.Equal(t, "https://example.com/a", NormalizeURL(" https://example.com/a// "))
	require.Equal(t, NormalizeURL("https://x.test/p"), NormalizeURL("HTTPS://X.TEST/P/"))
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		n    int
		want string
	}{
		{base: "https://x.test/studies/", n: 1, want: "https://x.test/studies/"},
		{base: "https://x.test/studies", n: 1, want: "https://x.test/studies"},
		{base: "https://x.test/studies/", n: 2, want: "https://x.test/studies/page/2/"},
		{base: "https://x.test/studies", n: 3, want: "https://x.test/studies/page/3/"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, PageURL(tc.base, tc.n))
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://x.test/studies/")
	require.NoError(t, err)
	require.Equal(t, "https://x.test/studies/a", resolveURL(base, "a"))
	require.Equal(t, "https://x.test/b", resolveURL(base, "/b#frag"))
	require.Equal(t, "http://y.test/c", resolveURL(base, "http://y.test/c"))
	require.Empty(t, resolveURL(base, "javascript:void(0)"))
	require.Empty(t, resolveURL(base, "  "))
}

func TestLastPathSegment(t *testing.T) {
	t.Parallel()

	require.Equal(t, "rose-trial", lastPathSegment("https://x.test/studies/rose-trial/"))
	require.Equal(t, "item", lastPathSegment("https://x.test/item?x=1"))
	require.Empty(t, lastPathSegment("https://x.test/"))
	require.Empty(t, lastPathSegment("%zz"))
}
