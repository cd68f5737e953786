package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionMarkIfNewNormalizes(t *testing.T) {
	t.Parallel()

	s := newSession()
	require.True(t, s.MarkIfNew("https://example.org/Studies/First/"))
	require.False(t, s.MarkIfNew("https://example.org/studies/first"))
	require.True(t, s.MarkIfNew("https://example.org/studies/second"))
	require.False(t, s.MarkIfNew(""))
}

func TestSessionAppendCountsOnlyNew(t *testing.T) {
	t.Parallel()

	s := newSession()
	added := s.Append([]StudyRecord{
		{URL: "https://example.org/a"},
		{URL: "https://example.org/b/"},
		{URL: "https://example.org/A"},
	})
	require.Equal(t, 2, added)
	require.Zero(t, s.Append([]StudyRecord{{URL: "https://example.org/b"}}))

	records := s.Records()
	require.Len(t, records, 2)
	require.Equal(t, "https://example.org/a", records[0].URL)
	require.Equal(t, "https://example.org/b/", records[1].URL)
}

func TestTimerPauserHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	TimerPauser{}.Pause(ctx, 5*time.Second)
	require.Less(t, time.Since(start), time.Second, "pause should exit immediately when context is done")
}

func TestTimerPauserWaits(t *testing.T) {
	t.Parallel()

	start := time.Now()
	TimerPauser{}.Pause(context.Background(), 20*time.Millisecond)
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	TimerPauser{}.Pause(context.Background(), 0)
}
