package zonal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator(t *testing.T) {
	t.Parallel()

	t.Run("tracks sum count min max per label", func(t *testing.T) {
		t.Parallel()
		acc := NewAccumulator()
		acc.Add(3, 2)
		acc.Add(3, -1)
		acc.Add(3, 5)
		acc.Add(8, 7)

		p, ok := acc.Partial(3)
		require.True(t, ok)
		assert.Equal(t, Partial{Sum: 6, Count: 3, Min: -1, Max: 5}, p)

		p, ok = acc.Partial(8)
		require.True(t, ok)
		assert.Equal(t, Partial{Sum: 7, Count: 1, Min: 7, Max: 7}, p)
	})

	t.Run("touch registers an empty label", func(t *testing.T) {
		t.Parallel()
		acc := NewAccumulator()
		acc.Touch(4)

		p, ok := acc.Partial(4)
		require.True(t, ok)
		assert.Equal(t, Partial{}, p)
		assert.Equal(t, []int32{4}, acc.Labels())
	})

	t.Run("merge combines disjoint and shared labels", func(t *testing.T) {
		t.Parallel()
		a := NewAccumulator()
		a.Add(1, 2)
		a.Add(2, 10)
		b := NewAccumulator()
		b.Add(1, 4)
		b.Add(3, -6)
		b.Touch(2)

		a.Merge(b)

		p, _ := a.Partial(1)
		assert.Equal(t, Partial{Sum: 6, Count: 2, Min: 2, Max: 4}, p)
		p, _ = a.Partial(2)
		assert.Equal(t, Partial{Sum: 10, Count: 1, Min: 10, Max: 10}, p)
		p, _ = a.Partial(3)
		assert.Equal(t, Partial{Sum: -6, Count: 1, Min: -6, Max: -6}, p)
	})

	t.Run("merge into an empty partial adopts the other side's extrema", func(t *testing.T) {
		t.Parallel()
		a := NewAccumulator()
		a.Touch(1)
		b := NewAccumulator()
		b.Add(1, -2)

		a.Merge(b)
		p, _ := a.Partial(1)
		assert.Equal(t, Partial{Sum: -2, Count: 1, Min: -2, Max: -2}, p)
	})

	t.Run("labels come back sorted", func(t *testing.T) {
		t.Parallel()
		acc := NewAccumulator()
		for _, label := range []int32{9, 0, 200, 3} {
			acc.Touch(label)
		}
		assert.Equal(t, []int32{0, 3, 9, 200}, acc.Labels())
	})

	t.Run("reduce maps empty labels to nodata", func(t *testing.T) {
		t.Parallel()
		acc := NewAccumulator()
		acc.Add(0, 3)
		acc.Add(0, 5)
		acc.Touch(1)

		byLabel := acc.Reduce(Mean, math.NaN())
		assert.Equal(t, 4.0, byLabel[0])
		assert.True(t, math.IsNaN(byLabel[1]))
	})
}

func TestReducers(t *testing.T) {
	t.Parallel()
	p := Partial{Sum: 9, Count: 4, Min: -1, Max: 6}

	assert.Equal(t, 2.25, Mean(p))
	assert.Equal(t, 9.0, Sum(p))
	assert.Equal(t, -1.0, Min(p))
	assert.Equal(t, 6.0, Max(p))
}
