package statsio

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/golang/geo/s2"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zonal-tools/zonal"
)

func sampleStats() []zonal.SegmentStat {
	return []zonal.SegmentStat{
		{Label: 2, Count: 3, Sum: 12, Mean: 4, Min: 1, Max: 7, CentroidLng: 2.0, CentroidLat: 1.0},
		{Label: 9, Count: 1, Sum: 5, Mean: 5, Min: 5, Max: 5, CentroidLng: -3.5, CentroidLat: 48.25},
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "stats.csv")
	require.NoError(t, WriteCSV(sampleStats(), path, 11))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "label,count,mean,min,max,sum,centroid_lng,centroid_lat,s2_id", lines[0])

	wantCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(1.0, 2.0)).Parent(11)
	assert.Equal(t, "2,3,4,1,7,12,2,1,"+strconv.FormatInt(int64(wantCell), 10), lines[1])
}

func TestWriteParquet(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "stats.parquet")
	require.NoError(t, WriteParquet(sampleStats(), path, 11))

	rows, err := parquet.ReadFile[SegmentRow](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(2), rows[0].Label)
	assert.Equal(t, 4.0, rows[0].Mean)
	assert.Equal(t, int64(9), rows[1].Label)

	wantCell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(48.25, -3.5)).Parent(11)
	assert.Equal(t, int64(wantCell), rows[1].S2id)
}
