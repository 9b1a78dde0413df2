package statsio

import (
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/sirupsen/logrus"

	"zonal-tools/zonal"
)

const rowBufferSize = 1 << 16

type SegmentRow struct {
	Label       int64   `parquet:"label, type=INT64"`
	Count       int64   `parquet:"count, type=INT64"`
	Mean        float64 `parquet:"mean, type=DOUBLE"`
	Min         float64 `parquet:"min, type=DOUBLE"`
	Max         float64 `parquet:"max, type=DOUBLE"`
	Sum         float64 `parquet:"sum, type=DOUBLE"`
	CentroidLng float64 `parquet:"centroid_lng, type=DOUBLE"`
	CentroidLat float64 `parquet:"centroid_lat, type=DOUBLE"`
	S2id        int64   `parquet:"s2_id, type=INT64"`
}

// WriteParquet writes the segment table Snappy-compressed, flushing in
// fixed-size row groups so very large segmentations stay off the heap.
func WriteParquet(stats []zonal.SegmentStat, path string, s2Lvl int) error {
	output, err := os.Create(path)
	if err != nil {
		return err
	}

	schema := parquet.SchemaOf(new(SegmentRow))
	writer := parquet.NewGenericWriter[SegmentRow](output, schema, parquet.Compression(&parquet.Snappy))
	defer func() {
		if err := writer.Close(); err != nil {
			logrus.Error(err)
		}
		if err := output.Close(); err != nil {
			logrus.Error(err)
		}
	}()

	rowBuf := make([]SegmentRow, 0, rowBufferSize)
	for _, s := range stats {
		rowBuf = append(rowBuf, SegmentRow{
			Label:       int64(s.Label),
			Count:       s.Count,
			Mean:        s.Mean,
			Min:         s.Min,
			Max:         s.Max,
			Sum:         s.Sum,
			CentroidLng: s.CentroidLng,
			CentroidLat: s.CentroidLat,
			S2id:        int64(centroidCell(s, s2Lvl)),
		})
		if len(rowBuf) == rowBufferSize {
			if err := flushRows(writer, rowBuf); err != nil {
				return err
			}
			rowBuf = rowBuf[:0]
		}
	}
	if len(rowBuf) > 0 {
		if err := flushRows(writer, rowBuf); err != nil {
			return err
		}
	}
	return nil
}

func flushRows(writer *parquet.GenericWriter[SegmentRow], rows []SegmentRow) error {
	logrus.Infof("Flushing %d segment rows", len(rows))
	if _, err := writer.Write(rows); err != nil {
		return err
	}
	return writer.Flush()
}
