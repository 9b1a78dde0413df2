// Package statsio persists segment statistic tables. Rows carry the S2 cell
// of the segment centroid so zonal results can be joined to cell-indexed
// datasets.
package statsio

import (
	"fmt"
	"os"

	"github.com/golang/geo/s2"
	"github.com/sirupsen/logrus"

	"zonal-tools/zonal"
)

func centroidCell(s zonal.SegmentStat, s2Lvl int) s2.CellID {
	latLng := s2.LatLngFromDegrees(s.CentroidLat, s.CentroidLng)
	return s2.CellIDFromLatLng(latLng).Parent(s2Lvl)
}

// WriteCSV writes one row per segment. s2Lvl picks the cell level of the
// centroid cell column.
func WriteCSV(stats []zonal.SegmentStat, path string, s2Lvl int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	if _, err := f.WriteString("label,count,mean,min,max,sum,centroid_lng,centroid_lat,s2_id\n"); err != nil {
		return err
	}

	for i, s := range stats {
		if i%10000 == 0 {
			logrus.Infof("Writing segment %d", i)
		}
		row := fmt.Sprintf("%d,%d,%v,%v,%v,%v,%v,%v,%d\n",
			s.Label, s.Count, s.Mean, s.Min, s.Max, s.Sum,
			s.CentroidLng, s.CentroidLat, int64(centroidCell(s, s2Lvl)))
		if _, err := f.WriteString(row); err != nil {
			return err
		}
	}
	if err = f.Sync(); err != nil {
		return err
	}
	return nil
}
