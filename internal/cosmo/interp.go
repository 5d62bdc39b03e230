package cosmo

import (
	"math"

	"gonum.org/v1/gonum/interp"
)

// spectrumSlice interpolates P(k) at a single redshift. Positive spectra are
// fitted piecewise-linearly in (ln k, ln P), which is close to exact for the
// roughly power-law shapes seen in practice; slices containing non-positive
// samples fall back to linear interpolation of P against ln k.
type spectrumSlice struct {
	pl     interp.PiecewiseLinear
	loglog bool
	kmin   float64
	kmax   float64
}

// rangeSlack is the relative tolerance applied at the edges of the native k
// range before an evaluation is considered out of support. Quadrature nodes
// land exactly on the domain bounds, so exact-edge evaluations must pass.
const rangeSlack = 1e-9

func newSpectrumSlice(k, p []float64) (*spectrumSlice, error) {
	lnK := make([]float64, len(k))
	for i, kv := range k {
		lnK[i] = math.Log(kv)
	}

	loglog := true
	for _, pv := range p {
		if pv <= 0 {
			loglog = false
			break
		}
	}

	ys := make([]float64, len(p))
	if loglog {
		for i, pv := range p {
			ys[i] = math.Log(pv)
		}
	} else {
		copy(ys, p)
	}

	s := &spectrumSlice{loglog: loglog, kmin: k[0], kmax: k[len(k)-1]}
	if err := s.pl.Fit(lnK, ys); err != nil {
		return nil, &InvalidGridError{Reason: "cannot fit spectrum interpolant: " + err.Error()}
	}
	return s, nil
}

// eval returns P(k). Evaluations outside the native support (beyond a small
// edge tolerance) return an InterpolationRangeError rather than
// extrapolating.
func (s *spectrumSlice) eval(k float64) (float64, error) {
	if k < s.kmin*(1-rangeSlack) || k > s.kmax*(1+rangeSlack) {
		return 0, &InterpolationRangeError{Axis: "k", Want: k, Min: s.kmin, Max: s.kmax}
	}
	// Clamp edge-tolerance evaluations onto the fitted range.
	if k < s.kmin {
		k = s.kmin
	} else if k > s.kmax {
		k = s.kmax
	}
	y := s.pl.Predict(math.Log(k))
	if s.loglog {
		return math.Exp(y), nil
	}
	return y, nil
}

// sliceAt builds the P(k) interpolant at the requested redshift. Redshifts
// between native samples are blended linearly from the bracketing slices;
// redshifts outside the native z axis are an error.
func sliceAt(ps *PowerSpectrumGrid, z float64) (*spectrumSlice, error) {
	zs := ps.Z
	zlo, zhi := zs[0], zs[len(zs)-1]
	if z < zlo-rangeSlack || z > zhi+rangeSlack {
		return nil, &InterpolationRangeError{Axis: "z", Want: z, Min: zlo, Max: zhi}
	}

	// Locate the bracketing native redshift interval.
	j := len(zs) - 2
	for i := 0; i < len(zs)-1; i++ {
		if z <= zs[i+1] {
			j = i
			break
		}
	}
	if len(zs) == 1 {
		p := make([]float64, len(ps.K))
		for i := range ps.K {
			p[i] = ps.P[i][0]
		}
		return newSpectrumSlice(ps.K, p)
	}

	t := (z - zs[j]) / (zs[j+1] - zs[j])
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}

	p := make([]float64, len(ps.K))
	for i := range ps.K {
		p[i] = (1-t)*ps.P[i][j] + t*ps.P[i][j+1]
	}
	return newSpectrumSlice(ps.K, p)
}
