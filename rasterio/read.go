// Package rasterio adapts godal datasets to the in-memory grid types:
// reading value and label bands, writing attributed rasters, and a streaming
// block pipeline for rasters that should not be held in memory twice.
package rasterio

import (
	"errors"
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"

	"zonal-tools/zonal"
)

// GeoRef carries everything the output raster needs besides pixel values:
// the six-parameter affine geotransform, the spatial reference as WKT, and
// the nodata sentinel of the source band.
type GeoRef struct {
	Transform [6]float64
	SRSWKT    string
	NoData    float64
	HasNoData bool
}

// ReadBand loads one band (1-based, GDAL convention) whole. Use
// AttributeDataset instead when the raster is large.
func ReadBand(path string, bandIdx int) (*zonal.Grid, GeoRef, error) {
	godal.RegisterAll()

	ds, err := godal.Open(path)
	if err != nil {
		return nil, GeoRef{}, err
	}
	defer func() {
		if cerr := ds.Close(); cerr != nil {
			logrus.Error(cerr)
		}
	}()

	band, err := pickBand(ds, bandIdx)
	if err != nil {
		return nil, GeoRef{}, err
	}
	ref, err := georefOf(ds, band)
	if err != nil {
		return nil, GeoRef{}, err
	}

	struc := band.Structure()
	grid := zonal.NewGrid(struc.SizeX, struc.SizeY)
	if err := band.Read(0, 0, grid.Data, struc.SizeX, struc.SizeY); err != nil {
		return nil, GeoRef{}, fmt.Errorf("reading band %d of %s: %w", bandIdx, path, err)
	}
	if ref.HasNoData {
		grid.NoData = ref.NoData
	}
	return grid, ref, nil
}

// ReadLabels loads a band as a label map, enforcing the non-negative integer
// label domain.
func ReadLabels(path string, bandIdx int) (*zonal.LabelMap, GeoRef, error) {
	grid, ref, err := ReadBand(path, bandIdx)
	if err != nil {
		return nil, GeoRef{}, err
	}
	labels, err := zonal.LabelMapFromFloats(grid.W, grid.H, grid.Data)
	if err != nil {
		return nil, GeoRef{}, fmt.Errorf("%s: %w", path, err)
	}
	return labels, ref, nil
}

func pickBand(ds *godal.Dataset, bandIdx int) (*godal.Band, error) {
	bands := ds.Bands()
	if bandIdx < 1 || bandIdx > len(bands) {
		return nil, fmt.Errorf("band %d requested, dataset has %d", bandIdx, len(bands))
	}
	return &bands[bandIdx-1], nil
}

func georefOf(ds *godal.Dataset, band *godal.Band) (GeoRef, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return GeoRef{}, err
	}
	ref := GeoRef{Transform: gt, NoData: math.NaN()}

	if srs := ds.SpatialRef(); srs != nil {
		wkt, err := srs.WKT()
		if err == nil {
			ref.SRSWKT = wkt
		} else {
			logrus.Warnf("spatial reference not exportable: %v", err)
		}
	}

	if noData, ok := band.NoData(); ok {
		ref.NoData = noData
		ref.HasNoData = true
	} else {
		logrus.Warn("NoData not set")
	}
	return ref, nil
}

var driverNames = map[string]godal.DriverName{
	"GTiff": godal.GTiff,
	"KEA":   godal.DriverName("KEA"),
}

// Driver resolves a format flag to a godal driver name.
func Driver(format string) (godal.DriverName, error) {
	drv, ok := driverNames[format]
	if !ok {
		return "", errors.New("unsupported output format " + format)
	}
	return drv, nil
}
