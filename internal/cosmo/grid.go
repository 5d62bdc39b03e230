// Package cosmo computes smoothed matter density variance sigma²(R,z)
// from a tabulated power spectrum P(k,z).
package cosmo

import "fmt"

// PowerSpectrumGrid holds a tabulated matter power spectrum. K is in h/Mpc
// and must be strictly increasing and positive; Z must be strictly
// increasing. P[i][j] is P(K[i], Z[j]) in (Mpc/h)^3.
type PowerSpectrumGrid struct {
	K []float64
	Z []float64
	P [][]float64
}

// InvalidGridError reports a power spectrum grid that violates its axis or
// shape invariants. It is returned before any integration takes place.
type InvalidGridError struct {
	Reason string
}

func (e *InvalidGridError) Error() string {
	return "invalid power spectrum grid: " + e.Reason
}

// InterpolationRangeError reports a requested evaluation point outside the
// native support of the tabulated spectrum.
type InterpolationRangeError struct {
	Axis string // "k" or "z"
	Want float64
	Min  float64
	Max  float64
}

func (e *InterpolationRangeError) Error() string {
	return fmt.Sprintf("%s = %g outside native support [%g, %g]", e.Axis, e.Want, e.Min, e.Max)
}

// Validate checks the grid invariants: at least two samples per axis,
// strictly increasing positive k, strictly increasing z, and a P table whose
// dimensions match the axes.
func (g *PowerSpectrumGrid) Validate() error {
	if len(g.K) < 2 {
		return &InvalidGridError{Reason: fmt.Sprintf("need at least 2 k samples, got %d", len(g.K))}
	}
	if len(g.Z) < 1 {
		return &InvalidGridError{Reason: "empty z axis"}
	}
	if g.K[0] <= 0 {
		return &InvalidGridError{Reason: fmt.Sprintf("k must be positive, got k[0] = %g", g.K[0])}
	}
	for i := 1; i < len(g.K); i++ {
		if g.K[i] <= g.K[i-1] {
			return &InvalidGridError{Reason: fmt.Sprintf("k axis not strictly increasing at index %d", i)}
		}
	}
	for j := 1; j < len(g.Z); j++ {
		if g.Z[j] <= g.Z[j-1] {
			return &InvalidGridError{Reason: fmt.Sprintf("z axis not strictly increasing at index %d", j)}
		}
	}
	if len(g.P) != len(g.K) {
		return &InvalidGridError{Reason: fmt.Sprintf("P has %d rows, want %d (one per k)", len(g.P), len(g.K))}
	}
	for i, row := range g.P {
		if len(row) != len(g.Z) {
			return &InvalidGridError{Reason: fmt.Sprintf("P row %d has %d columns, want %d (one per z)", i, len(row), len(g.Z))}
		}
	}
	return nil
}

// ScaleRedshiftGrid holds the requested output axes: smoothing scales R in
// Mpc/h and redshifts z.
type ScaleRedshiftGrid struct {
	R []float64
	Z []float64
}

// NewScaleRedshiftGrid builds the output axes from inclusive (min, max, step)
// ranges. Both endpoints are included when the range is an exact multiple of
// the step.
func NewScaleRedshiftGrid(rmin, rmax, dr, zmin, zmax, dz float64) (ScaleRedshiftGrid, error) {
	r, err := stepAxis("R", rmin, rmax, dr)
	if err != nil {
		return ScaleRedshiftGrid{}, err
	}
	z, err := stepAxis("z", zmin, zmax, dz)
	if err != nil {
		return ScaleRedshiftGrid{}, err
	}
	return ScaleRedshiftGrid{R: r, Z: z}, nil
}

// stepAxis generates min, min+step, ... up to and including max. The
// comparison carries a half-ulp style slack so that ranges like (0, 2, 0.1)
// include the upper bound despite accumulated rounding.
func stepAxis(name string, min, max, step float64) ([]float64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%s axis: step must be positive, got %g", name, step)
	}
	if max < min {
		return nil, fmt.Errorf("%s axis: max %g below min %g", name, max, min)
	}
	n := int((max-min)/step+1e-9) + 1
	axis := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		axis = append(axis, min+float64(i)*step)
	}
	return axis, nil
}

// VarianceTable is the computed sigma²(R,z) paired with the axes that
// produced it. Sigma2[i][j] corresponds to (R[i], Z[j]). The table is
// created fresh per computation and never mutated afterwards.
type VarianceTable struct {
	R      []float64
	Z      []float64
	Sigma2 [][]float64
}
