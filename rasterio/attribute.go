package rasterio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"zonal-tools/zonal"
)

// AttributeOptions tune the streaming attribution. Zero value: band 1 of
// both inputs, mean aggregation, nodata excluded, one worker, GTiff output.
type AttributeOptions struct {
	Band       int
	LabelBand  int
	Workers    int
	KeepNoData bool
	Agg        zonal.AggFunc
	Format     string
}

func (o AttributeOptions) normalized() AttributeOptions {
	if o.Band == 0 {
		o.Band = 1
	}
	if o.LabelBand == 0 {
		o.LabelBand = 1
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.Agg == nil {
		o.Agg = zonal.Mean
	}
	if o.Format == "" {
		o.Format = "GTiff"
	}
	return o
}

// bandSource serializes reads of one band. Required for compressed rasters.
type bandSource struct {
	band *godal.Band
	mu   sync.Mutex
}

func (s *bandSource) read(block godal.Block, buf []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.band.Read(block.X0, block.Y0, buf, block.W, block.H)
}

// AttributeDataset attributes a raster to its segments without holding
// either input whole in memory. Pass one walks the value band's blocks with
// a worker pool, accumulating per-segment partials; pass two re-walks the
// blocks serially, painting each segment's aggregate and writing the output
// dataset. The context is checked between blocks, so a cancelled run stops
// at the next block boundary.
func AttributeDataset(ctx context.Context, valuesPath, labelsPath, outPath string, opts AttributeOptions) (err error) {
	godal.RegisterAll()
	opts = opts.normalized()

	valDS, err := godal.Open(valuesPath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, valDS.Close())
	}()
	lblDS, err := godal.Open(labelsPath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, lblDS.Close())
	}()

	valBand, err := pickBand(valDS, opts.Band)
	if err != nil {
		return err
	}
	lblBand, err := pickBand(lblDS, opts.LabelBand)
	if err != nil {
		return err
	}

	vs, ls := valBand.Structure(), lblBand.Structure()
	if vs.SizeX != ls.SizeX || vs.SizeY != ls.SizeY {
		return fmt.Errorf("values %dx%d vs labels %dx%d: %w",
			vs.SizeX, vs.SizeY, ls.SizeX, ls.SizeY, zonal.ErrShapeMismatch)
	}

	ref, err := georefOf(valDS, valBand)
	if err != nil {
		return err
	}
	noData := ref.NoData
	isNoData := func(v float64) bool { return v == noData }
	if math.IsNaN(noData) {
		isNoData = math.IsNaN
	}

	values := &bandSource{band: valBand}
	labels := &bandSource{band: lblBand}

	acc, err := accumulateBlocks(ctx, values, labels, isNoData, opts)
	if err != nil {
		return err
	}
	logrus.Infof("accumulated %d segments from %s", len(acc.Labels()), valuesPath)

	// Empty segments need a representable nodata in the output.
	outRef := ref
	if !outRef.HasNoData {
		outRef.NoData = math.NaN()
		outRef.HasNoData = true
	}
	byLabel := acc.Reduce(opts.Agg, outRef.NoData)

	return paintBlocks(ctx, labels, byLabel, vs, outRef, outPath, opts)
}

func accumulateBlocks(ctx context.Context, values, labels *bandSource, isNoData func(float64) bool, opts AttributeOptions) (*zonal.Accumulator, error) {
	blocks := genBlocks(ctx, values.band)

	shards := make([]*zonal.Accumulator, opts.Workers)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < opts.Workers; i++ {
		i := i
		shards[i] = zonal.NewAccumulator()
		g.Go(func() error {
			return accumulateWorker(ctx, values, labels, blocks, isNoData, opts, shards[i])
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

// genBlocks walks the band's natural block grid into a channel consumed by
// the worker pool.
func genBlocks(ctx context.Context, band *godal.Band) <-chan godal.Block {
	blocks := make(chan godal.Block)
	firstBlock := band.Structure().FirstBlock()
	go func() {
		defer close(blocks)
		for block, ok := firstBlock, true; ok; block, ok = block.Next() {
			select {
			case blocks <- block:
			case <-ctx.Done():
				return
			}
		}
	}()
	return blocks
}

func accumulateWorker(ctx context.Context, values, labels *bandSource, blocks <-chan godal.Block, isNoData func(float64) bool, opts AttributeOptions, acc *zonal.Accumulator) error {
	for block := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		logrus.Debugf("accumulating block at [%v, %v]", block.X0, block.Y0)

		valBuf := make([]float64, block.W*block.H)
		if err := values.read(block, valBuf); err != nil {
			return err
		}
		lblBuf := make([]float64, block.W*block.H)
		if err := labels.read(block, lblBuf); err != nil {
			return err
		}

		for pix := range valBuf {
			label, err := zonal.LabelFromFloat(lblBuf[pix])
			if err != nil {
				return fmt.Errorf("row %d col %d: %w",
					block.Y0+pix/block.W, block.X0+pix%block.W, err)
			}
			v := valBuf[pix]
			if !opts.KeepNoData && isNoData(v) {
				acc.Touch(label)
				continue
			}
			acc.Add(label, v)
		}
	}
	return nil
}

func paintBlocks(ctx context.Context, labels *bandSource, byLabel map[int32]float64, struc godal.BandStructure, ref GeoRef, outPath string, opts AttributeOptions) (err error) {
	drv, err := Driver(opts.Format)
	if err != nil {
		return err
	}
	out, err := godal.Create(drv, outPath, 1, godal.Float64, struc.SizeX, struc.SizeY)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()
	if err := applyGeoRef(out, ref); err != nil {
		return err
	}
	outBand := &out.Bands()[0]

	firstBlock := labels.band.Structure().FirstBlock()
	for block, ok := firstBlock, true; ok; block, ok = block.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		logrus.Debugf("painting block at [%v, %v]", block.X0, block.Y0)

		buf := make([]float64, block.W*block.H)
		if err := labels.read(block, buf); err != nil {
			return err
		}
		for pix, v := range buf {
			label, err := zonal.LabelFromFloat(v)
			if err != nil {
				return err
			}
			buf[pix] = byLabel[label]
		}
		if err := outBand.Write(block.X0, block.Y0, buf, block.W, block.H); err != nil {
			return err
		}
	}
	return nil
}
