package zonal

import (
	"fmt"
	"math"
)

// Grid is a single-band raster held in memory, row-major, top-left origin.
// NoData is the sentinel marking missing observations; NaN by default, but
// rasters loaded from disk keep whatever sentinel their band declares.
type Grid struct {
	W, H   int
	Data   []float64
	NoData float64
}

func NewGrid(w, h int) *Grid {
	return &Grid{
		W:      w,
		H:      h,
		Data:   make([]float64, w*h),
		NoData: math.NaN(),
	}
}

func (g *Grid) At(row, col int) float64 {
	return g.Data[row*g.W+col]
}

func (g *Grid) Set(row, col int, v float64) {
	g.Data[row*g.W+col] = v
}

// IsNoData reports whether v matches the grid's sentinel. A NaN sentinel
// never compares equal to itself, so it gets its own check.
func (g *Grid) IsNoData(v float64) bool {
	if math.IsNaN(g.NoData) {
		return math.IsNaN(v)
	}
	return v == g.NoData
}

func (g *Grid) Fill(v float64) {
	for i := range g.Data {
		g.Data[i] = v
	}
}

// LabelMap assigns every pixel of a same-shaped Grid to one segment.
// Labels are non-negative and need not be contiguous or sorted.
type LabelMap struct {
	W, H   int
	Labels []int32
}

func NewLabelMap(w, h int) *LabelMap {
	return &LabelMap{
		W:      w,
		H:      h,
		Labels: make([]int32, w*h),
	}
}

func (m *LabelMap) At(row, col int) int32 {
	return m.Labels[row*m.W+col]
}

// LabelFromFloat converts one value read from an integer-typed band into a
// label. Rejects NaN, infinities, fractional values and negatives.
func LabelFromFloat(v float64) (int32, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < 0 || v > math.MaxInt32 {
		return 0, fmt.Errorf("label %v: %w", v, ErrInvalidLabel)
	}
	return int32(v), nil
}

// LabelMapFromFloats converts a float raster, as read from an integer-typed
// band, into a LabelMap.
func LabelMapFromFloats(w, h int, data []float64) (*LabelMap, error) {
	if len(data) != w*h {
		return nil, fmt.Errorf("label buffer holds %d values for a %dx%d raster: %w",
			len(data), w, h, ErrShapeMismatch)
	}
	m := NewLabelMap(w, h)
	for i, v := range data {
		label, err := LabelFromFloat(v)
		if err != nil {
			return nil, fmt.Errorf("row %d col %d: %w", i/w, i%w, err)
		}
		m.Labels[i] = label
	}
	return m, nil
}

func shapeErr(a, b *Grid) error {
	return fmt.Errorf("grids %dx%d vs %dx%d: %w", a.W, a.H, b.W, b.H, ErrShapeMismatch)
}

func sameShape(g *Grid, m *LabelMap) error {
	if g.W != m.W || g.H != m.H {
		return fmt.Errorf("values %dx%d vs labels %dx%d: %w", g.W, g.H, m.W, m.H, ErrShapeMismatch)
	}
	return nil
}
