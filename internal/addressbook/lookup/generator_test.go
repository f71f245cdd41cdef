package lookup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedCoords() string { return "0.5" }

func TestGeneratorFind(t *testing.T) {
	ctx := context.Background()

	t.Run("sydney region yields three neighbours", func(t *testing.T) {
		g := NewGenerator(WithCoordinates(fixedCoords))

		got, err := g.Find(ctx, "2133", "2")
		require.NoError(t, err)
		require.Len(t, got, 3)

		assert.Equal(t, []string{"2", "4", "6"}, []string{got[0].HouseNumber, got[1].HouseNumber, got[2].HouseNumber})
		assert.Equal(t, "2 Edward Street", got[0].Street)
		assert.Equal(t, "4 Edward Street", got[1].Street)
		assert.Equal(t, "6 Edward Street", got[2].Street)
		for _, c := range got {
			assert.Equal(t, "Sydney", c.City)
			assert.Equal(t, "2133", c.Postcode)
			assert.Equal(t, "0.5", c.Lat)
			assert.Empty(t, c.ID)
		}
	})

	t.Run("street follows leading house number digit", func(t *testing.T) {
		got, err := NewGenerator().Find(ctx, "3000", "45")
		require.NoError(t, err)
		assert.Equal(t, "Melbourne", got[0].City)
		assert.Equal(t, "45 Docklands Drive", got[0].Street)
		assert.Equal(t, "47 Docklands Drive", got[1].Street)
	})

	t.Run("leading zeros kept on the first candidate", func(t *testing.T) {
		got, err := NewGenerator().Find(ctx, "1000", "007")
		require.NoError(t, err)
		assert.Equal(t, "007", got[0].HouseNumber)
		assert.Equal(t, "9", got[1].HouseNumber)
	})

	t.Run("large house numbers do not wrap", func(t *testing.T) {
		got, err := NewGenerator().Find(ctx, "2133", "9223372036854775807")
		require.NoError(t, err)
		assert.Equal(t, "9223372036854775809", got[1].HouseNumber)
		assert.Equal(t, "9223372036854775811", got[2].HouseNumber)

		got, err = NewGenerator().Find(ctx, "2133", "18446744073709551611")
		require.NoError(t, err)
		assert.Equal(t, "18446744073709551615", got[2].HouseNumber)
	})

	t.Run("neighbours past the uint64 range have no results", func(t *testing.T) {
		_, err := NewGenerator().Find(ctx, "2133", "18446744073709551612")
		assert.ErrorIs(t, err, ErrNoResults)
	})

	t.Run("unmapped region has no results", func(t *testing.T) {
		g := NewGenerator(WithRegions(map[int]string{1: "Brisbane", 2: "Sydney"}))
		_, err := g.Find(ctx, "9999", "999")
		assert.ErrorIs(t, err, ErrNoResults)
	})

	t.Run("leading zero postcode has no region", func(t *testing.T) {
		_, err := NewGenerator().Find(ctx, "0200", "1")
		assert.ErrorIs(t, err, ErrNoResults)
	})

	t.Run("latency honours cancellation", func(t *testing.T) {
		g := NewGenerator(WithLatency(time.Hour))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := g.Find(cctx, "2133", "2")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
