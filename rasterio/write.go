package rasterio

import (
	"errors"
	"fmt"

	"github.com/airbusgeo/godal"

	"zonal-tools/zonal"
)

// Write persists a grid as a single Float64 band under the given georef.
// format is a key of Driver ("GTiff" or "KEA").
func Write(path string, grid *zonal.Grid, ref GeoRef, format string) (err error) {
	godal.RegisterAll()

	drv, err := Driver(format)
	if err != nil {
		return err
	}

	ds, err := godal.Create(drv, path, 1, godal.Float64, grid.W, grid.H)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, ds.Close())
	}()

	if err := applyGeoRef(ds, ref); err != nil {
		return err
	}

	band := &ds.Bands()[0]
	if err := band.Write(0, 0, grid.Data, grid.W, grid.H); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func applyGeoRef(ds *godal.Dataset, ref GeoRef) error {
	if err := ds.SetGeoTransform(ref.Transform); err != nil {
		return err
	}
	if ref.SRSWKT != "" {
		srs, err := godal.NewSpatialRefFromWKT(ref.SRSWKT)
		if err != nil {
			return err
		}
		defer srs.Close()
		if err := ds.SetSpatialRef(srs); err != nil {
			return err
		}
	}
	if ref.HasNoData {
		for _, band := range ds.Bands() {
			if err := band.SetNoData(ref.NoData); err != nil {
				return err
			}
		}
	}
	return nil
}
