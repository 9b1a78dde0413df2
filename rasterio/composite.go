package rasterio

import (
	"context"

	"golang.org/x/sync/errgroup"

	"zonal-tools/zonal"
)

// CompositeFiles loads the same band from every input in parallel and
// reduces them to their pixelwise temporal mean. The georef of the first
// input is carried through; inputs are expected to be aligned scenes of one
// footprint, so shape mismatches fail the composite.
func CompositeFiles(ctx context.Context, paths []string, bandIdx int) (*zonal.Grid, GeoRef, error) {
	grids := make([]*zonal.Grid, len(paths))
	refs := make([]GeoRef, len(paths))

	g, _ := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			var err error
			grids[i], refs[i], err = ReadBand(path, bandIdx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, GeoRef{}, err
	}

	out, err := zonal.Composite(grids)
	if err != nil {
		return nil, GeoRef{}, err
	}
	return out, refs[0], nil
}
