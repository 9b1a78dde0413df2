package zonal

import "fmt"

// SegmentStat is one row of the segment statistic table. Centroid
// coordinates are in the raster's spatial reference, taken at the mean pixel
// centre of the segment over all its pixels, valued or not.
type SegmentStat struct {
	Label       int32
	Count       int64
	Sum         float64
	Mean        float64
	Min         float64
	Max         float64
	CentroidLng float64
	CentroidLat float64
}

type centroidAcc struct {
	rowSum float64
	colSum float64
	pixels int64
}

// Stats builds the segment statistic table for a value raster and its label
// map. gt is the six-parameter geotransform of both rasters. Rows come back
// sorted by label; segments with no valid pixels report Count 0 and carry
// the grid's nodata sentinel in their value columns.
func Stats(values *Grid, labels *LabelMap, gt [6]float64, opts Options) ([]SegmentStat, error) {
	if err := sameShape(values, labels); err != nil {
		return nil, err
	}

	acc := NewAccumulator()
	centroids := make(map[int32]*centroidAcc)
	for row := 0; row < values.H; row++ {
		base := row * values.W
		for col := 0; col < values.W; col++ {
			label := labels.Labels[base+col]
			if label < 0 {
				return nil, fmt.Errorf("label %d at row %d col %d: %w", label, row, col, ErrInvalidLabel)
			}
			c, ok := centroids[label]
			if !ok {
				c = &centroidAcc{}
				centroids[label] = c
			}
			c.rowSum += float64(row)
			c.colSum += float64(col)
			c.pixels++

			v := values.Data[base+col]
			if !opts.KeepNoData && values.IsNoData(v) {
				acc.Touch(label)
				continue
			}
			acc.Add(label, v)
		}
	}

	stats := make([]SegmentStat, 0, len(centroids))
	for _, label := range acc.Labels() {
		p, _ := acc.Partial(label)
		c := centroids[label]

		// Pixel centres sit half a pixel in from the index.
		px := c.colSum/float64(c.pixels) + 0.5
		py := c.rowSum/float64(c.pixels) + 0.5
		lng := gt[0] + px*gt[1] + py*gt[2]
		lat := gt[3] + px*gt[4] + py*gt[5]

		s := SegmentStat{
			Label:       label,
			Count:       p.Count,
			CentroidLng: lng,
			CentroidLat: lat,
		}
		if p.Count == 0 {
			s.Sum, s.Mean, s.Min, s.Max = values.NoData, values.NoData, values.NoData, values.NoData
		} else {
			s.Sum = p.Sum
			s.Mean = p.Sum / float64(p.Count)
			s.Min = p.Min
			s.Max = p.Max
		}
		stats = append(stats, s)
	}
	return stats, nil
}
