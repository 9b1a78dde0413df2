package zonal

import "sort"

// Partial holds the running reduction for one segment. Mean decomposes into
// sum/count, so partials from different shards merge without reordering
// effects.
type Partial struct {
	Sum   float64
	Count int64
	Min   float64
	Max   float64
}

// AggFunc reduces a segment's partial to the value painted over that segment.
// It is never called with Count == 0; empty groups paint nodata instead.
type AggFunc func(Partial) float64

func Mean(p Partial) float64 {
	return p.Sum / float64(p.Count)
}

func Sum(p Partial) float64 {
	return p.Sum
}

func Max(p Partial) float64 {
	return p.Max
}

func Min(p Partial) float64 {
	return p.Min
}

// Accumulator collects per-label partials. Not safe for concurrent use; give
// each worker its own and Merge when the pool drains.
type Accumulator struct {
	parts map[int32]*Partial
}

func NewAccumulator() *Accumulator {
	return &Accumulator{parts: make(map[int32]*Partial)}
}

// Touch registers a label without contributing a value, so segments whose
// pixels are all nodata still exist and paint nodata.
func (a *Accumulator) Touch(label int32) {
	if _, ok := a.parts[label]; !ok {
		a.parts[label] = &Partial{}
	}
}

func (a *Accumulator) Add(label int32, v float64) {
	p, ok := a.parts[label]
	if !ok {
		p = &Partial{}
		a.parts[label] = p
	}
	if p.Count == 0 || v < p.Min {
		p.Min = v
	}
	if p.Count == 0 || v > p.Max {
		p.Max = v
	}
	p.Sum += v
	p.Count++
}

func (a *Accumulator) Merge(other *Accumulator) {
	for label, o := range other.parts {
		p, ok := a.parts[label]
		if !ok {
			cp := *o
			a.parts[label] = &cp
			continue
		}
		if o.Count > 0 {
			if p.Count == 0 || o.Min < p.Min {
				p.Min = o.Min
			}
			if p.Count == 0 || o.Max > p.Max {
				p.Max = o.Max
			}
		}
		p.Sum += o.Sum
		p.Count += o.Count
	}
}

func (a *Accumulator) Partial(label int32) (Partial, bool) {
	p, ok := a.parts[label]
	if !ok {
		return Partial{}, false
	}
	return *p, true
}

// Labels returns every registered label in ascending order.
func (a *Accumulator) Labels() []int32 {
	labels := make([]int32, 0, len(a.parts))
	for label := range a.parts {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
	return labels
}

// Reduce applies fn per label. Labels with no contributing values map to
// noData.
func (a *Accumulator) Reduce(fn AggFunc, noData float64) map[int32]float64 {
	out := make(map[int32]float64, len(a.parts))
	for label, p := range a.parts {
		if p.Count == 0 {
			out[label] = noData
			continue
		}
		out[label] = fn(*p)
	}
	return out
}
