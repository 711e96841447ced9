package devserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nhle/notifeed/internal/model"
)

func TestGenerateProducesOneToThree(t *testing.T) {
	g := NewGenerator(7)
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		items := g.Generate()
		require.GreaterOrEqual(t, len(items), 1)
		require.LessOrEqual(t, len(items), 3)
		for _, n := range items {
			require.Contains(t, model.Types, n.Type)
			require.NotEmpty(t, n.Title)
			require.NotContains(t, n.Message, "%!")
			require.False(t, n.Read)
			require.False(t, n.CreatedAt.After(now))
		}
	}
}

func TestBackfillSpreadsOverAMonth(t *testing.T) {
	g := NewGenerator(1)
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	items := g.Backfill(25)
	require.Len(t, items, 25)
	for _, n := range items {
		require.False(t, n.CreatedAt.After(now))
		require.True(t, n.CreatedAt.After(now.Add(-31*24*time.Hour)))
	}
}

func TestGeneratorIsDeterministicPerSeed(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	a, b := NewGenerator(99), NewGenerator(99)
	a.now = func() time.Time { return now }
	b.now = func() time.Time { return now }
	require.Equal(t, a.Generate(), b.Generate())
}
