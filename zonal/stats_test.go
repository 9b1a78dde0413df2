package zonal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	t.Parallel()
	gt := [6]float64{100, 10, 0, 200, 0, -10}

	t.Run("one row per label, sorted", func(t *testing.T) {
		t.Parallel()
		values := gridFrom(t, [][]float64{{1, 3}, {5, 7}})
		labels := labelsFrom(t, [][]int32{{9, 9}, {2, 2}})

		stats, err := Stats(values, labels, gt, Options{})
		require.NoError(t, err)
		require.Len(t, stats, 2)

		assert.Equal(t, int32(2), stats[0].Label)
		assert.Equal(t, int64(2), stats[0].Count)
		assert.Equal(t, 6.0, stats[0].Mean)
		assert.Equal(t, 5.0, stats[0].Min)
		assert.Equal(t, 7.0, stats[0].Max)
		assert.Equal(t, 12.0, stats[0].Sum)

		assert.Equal(t, int32(9), stats[1].Label)
		assert.Equal(t, 2.0, stats[1].Mean)
	})

	t.Run("centroid sits at the mean pixel centre", func(t *testing.T) {
		t.Parallel()
		values := gridFrom(t, [][]float64{{1, 3}, {5, 7}})
		labels := labelsFrom(t, [][]int32{{0, 0}, {1, 1}})

		stats, err := Stats(values, labels, gt, Options{})
		require.NoError(t, err)
		require.Len(t, stats, 2)

		// Label 0 covers row 0: mean pixel centre (col 0.5, row 0) + half
		// a pixel, through the geotransform.
		assert.InDelta(t, 110.0, stats[0].CentroidLng, 1e-12)
		assert.InDelta(t, 195.0, stats[0].CentroidLat, 1e-12)
		assert.InDelta(t, 110.0, stats[1].CentroidLng, 1e-12)
		assert.InDelta(t, 185.0, stats[1].CentroidLat, 1e-12)
	})

	t.Run("all-nodata segment keeps its centroid but no values", func(t *testing.T) {
		t.Parallel()
		values := gridFrom(t, [][]float64{{math.NaN(), math.NaN()}, {5, 7}})
		labels := labelsFrom(t, [][]int32{{0, 0}, {1, 1}})

		stats, err := Stats(values, labels, gt, Options{})
		require.NoError(t, err)
		require.Len(t, stats, 2)

		assert.Equal(t, int64(0), stats[0].Count)
		assert.True(t, math.IsNaN(stats[0].Mean))
		assert.InDelta(t, 110.0, stats[0].CentroidLng, 1e-12)
	})

	t.Run("shape mismatch is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := Stats(NewGrid(4, 4), NewLabelMap(4, 5), gt, Options{})
		require.ErrorIs(t, err, ErrShapeMismatch)
	})

	t.Run("negative label is rejected", func(t *testing.T) {
		t.Parallel()
		values := gridFrom(t, [][]float64{{1, 2}})
		labels := labelsFrom(t, [][]int32{{0, -1}})
		_, err := Stats(values, labels, gt, Options{})
		require.ErrorIs(t, err, ErrInvalidLabel)
	})
}

func TestLabelMapFromFloats(t *testing.T) {
	t.Parallel()

	t.Run("accepts integral non-negative values", func(t *testing.T) {
		t.Parallel()
		m, err := LabelMapFromFloats(2, 2, []float64{0, 3, 1000000, 2})
		require.NoError(t, err)
		assert.Equal(t, []int32{0, 3, 1000000, 2}, m.Labels)
	})

	for _, tc := range []struct {
		name string
		bad  float64
	}{
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"fractional", 1.5},
		{"negative", -2},
		{"overflow", float64(math.MaxInt32) + 1},
	} {
		tc := tc
		t.Run(tc.name+" is rejected", func(t *testing.T) {
			t.Parallel()
			_, err := LabelMapFromFloats(2, 1, []float64{0, tc.bad})
			require.ErrorIs(t, err, ErrInvalidLabel)
		})
	}

	t.Run("buffer size must match the shape", func(t *testing.T) {
		t.Parallel()
		_, err := LabelMapFromFloats(2, 2, []float64{0, 1, 2})
		require.ErrorIs(t, err, ErrShapeMismatch)
	})
}
