package zonal

// NormalizedDifference computes (a-b)/(a+b) per pixel, the form shared by
// NDVI, NDMI and friends. Nodata in either input propagates, as does a zero
// denominator.
func NormalizedDifference(a, b *Grid) (*Grid, error) {
	if a.W != b.W || a.H != b.H {
		return nil, shapeErr(a, b)
	}

	out := NewGrid(a.W, a.H)
	out.NoData = a.NoData
	for i := range out.Data {
		av, bv := a.Data[i], b.Data[i]
		if a.IsNoData(av) || b.IsNoData(bv) || av+bv == 0 {
			out.Data[i] = out.NoData
			continue
		}
		out.Data[i] = (av - bv) / (av + bv)
	}
	return out, nil
}
