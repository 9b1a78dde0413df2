package zonal

import (
	"errors"
	"fmt"
)

// Composite reduces aligned observations of the same scene to their
// pixelwise mean, skipping nodata per pixel. Pixels missing from every input
// stay nodata in the output. The usual caller feeds it one grid per cloud-
// masked acquisition date to approximate a clean single image.
func Composite(grids []*Grid) (*Grid, error) {
	if len(grids) == 0 {
		return nil, errors.New("composite of zero rasters")
	}
	first := grids[0]
	for i, g := range grids[1:] {
		if g.W != first.W || g.H != first.H {
			return nil, fmt.Errorf("raster %d is %dx%d, raster 0 is %dx%d: %w",
				i+1, g.W, g.H, first.W, first.H, ErrShapeMismatch)
		}
	}

	out := NewGrid(first.W, first.H)
	out.NoData = first.NoData
	for i := range out.Data {
		var sum float64
		var n int64
		for _, g := range grids {
			v := g.Data[i]
			if g.IsNoData(v) {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			out.Data[i] = out.NoData
			continue
		}
		out.Data[i] = sum / float64(n)
	}
	return out, nil
}
