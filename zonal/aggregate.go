package zonal

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Options tune Aggregate and Stats. The zero value gives the standard
// behavior: mean aggregation, nodata excluded, serial execution.
type Options struct {
	// KeepNoData feeds nodata values into the reduction instead of
	// skipping them. With a NaN sentinel this renders the whole group
	// nodata.
	KeepNoData bool

	// Workers > 1 splits the raster into row shards reduced in parallel.
	Workers int

	// Agg selects the reduction; nil means Mean.
	Agg AggFunc
}

func (o Options) agg() AggFunc {
	if o.Agg == nil {
		return Mean
	}
	return o.Agg
}

// Aggregate computes one aggregate per segment and paints it back over every
// pixel of that segment, returning a raster of the input shape. Pure: the
// same inputs and options always produce the same output. Segments whose
// pixels are all nodata paint nodata, so an entirely-nodata raster yields an
// entirely-nodata result rather than an error.
func Aggregate(values *Grid, labels *LabelMap, opts Options) (*Grid, error) {
	if err := sameShape(values, labels); err != nil {
		return nil, err
	}

	acc, err := accumulate(values, labels, opts)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("accumulated %d segments over %d pixels", len(acc.parts), len(values.Data))

	byLabel := acc.Reduce(opts.agg(), values.NoData)

	out := NewGrid(values.W, values.H)
	out.NoData = values.NoData
	for i, label := range labels.Labels {
		out.Data[i] = byLabel[label]
	}
	return out, nil
}

func accumulate(values *Grid, labels *LabelMap, opts Options) (*Accumulator, error) {
	if opts.Workers > 1 && values.H > 1 {
		return accumulateSharded(values, labels, opts)
	}
	acc := NewAccumulator()
	if err := accumulateRows(values, labels, 0, values.H, opts, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// accumulateRows reduces rows [row0, row1) into acc.
func accumulateRows(values *Grid, labels *LabelMap, row0, row1 int, opts Options, acc *Accumulator) error {
	for row := row0; row < row1; row++ {
		base := row * values.W
		for col := 0; col < values.W; col++ {
			label := labels.Labels[base+col]
			if label < 0 {
				return fmt.Errorf("label %d at row %d col %d: %w", label, row, col, ErrInvalidLabel)
			}
			v := values.Data[base+col]
			if !opts.KeepNoData && values.IsNoData(v) {
				acc.Touch(label)
				continue
			}
			acc.Add(label, v)
		}
	}
	return nil
}

// accumulateSharded splits rows across a worker pool, one accumulator per
// shard, merged in shard order once the pool drains. Shard boundaries depend
// only on height and worker count, so results are reproducible for a fixed
// Options.Workers.
func accumulateSharded(values *Grid, labels *LabelMap, opts Options) (*Accumulator, error) {
	workers := opts.Workers
	if workers > values.H {
		workers = values.H
	}
	shards := make([]*Accumulator, workers)

	var g errgroup.Group
	rowsPer := (values.H + workers - 1) / workers
	for i := 0; i < workers; i++ {
		i := i
		row0 := i * rowsPer
		row1 := row0 + rowsPer
		if row1 > values.H {
			row1 = values.H
		}
		shards[i] = NewAccumulator()
		g.Go(func() error {
			return accumulateRows(values, labels, row0, row1, opts, shards[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	acc := shards[0]
	for _, shard := range shards[1:] {
		acc.Merge(shard)
	}
	return acc, nil
}
