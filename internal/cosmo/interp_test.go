package cosmo

import (
	"errors"
	"math"
	"testing"
)

func logspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Pow(10, lo+(hi-lo)*float64(i)/float64(n-1))
	}
	return out
}

func TestSpectrumSlice_PowerLawExact(t *testing.T) {
	// A pure power law is linear in (ln k, ln P), so log-log piecewise
	// linear interpolation reproduces it exactly between samples.
	k := logspace(-3, 1, 30)
	p := make([]float64, len(k))
	for i, kv := range k {
		p[i] = 5.0 * math.Pow(kv, 0.96)
	}

	s, err := newSpectrumSlice(k, p)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if !s.loglog {
		t.Fatal("positive spectrum should use log-log interpolation")
	}

	for _, kq := range []float64{0.0017, 0.03, 0.42, 7.7} {
		got, err := s.eval(kq)
		if err != nil {
			t.Fatalf("eval(%v): %v", kq, err)
		}
		want := 5.0 * math.Pow(kq, 0.96)
		if rel := math.Abs(got-want) / want; rel > 1e-12 {
			t.Errorf("eval(%v) = %v, want %v (rel %v)", kq, got, want, rel)
		}
	}
}

func TestSpectrumSlice_LinearFallback(t *testing.T) {
	k := []float64{0.1, 0.2, 0.4, 0.8}
	p := []float64{1.0, 0.0, 2.0, 4.0} // zero sample forbids log-log

	s, err := newSpectrumSlice(k, p)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	if s.loglog {
		t.Fatal("non-positive samples must force linear fallback")
	}

	// Halfway in ln k between 0.2 and 0.4 the linear fit gives 1.0.
	kq := math.Exp((math.Log(0.2) + math.Log(0.4)) / 2)
	got, err := s.eval(kq)
	if err != nil {
		t.Fatalf("eval(%v): %v", kq, err)
	}
	if math.Abs(got-1.0) > 1e-12 {
		t.Errorf("eval(%v) = %v, want 1.0", kq, got)
	}
}

func TestSpectrumSlice_RangeError(t *testing.T) {
	k := []float64{0.1, 1.0}
	p := []float64{1.0, 1.0}
	s, err := newSpectrumSlice(k, p)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}

	if _, err := s.eval(0.05); err == nil {
		t.Error("expected range error below support")
	}
	var ire *InterpolationRangeError
	_, err = s.eval(2.0)
	if !errors.As(err, &ire) {
		t.Errorf("expected InterpolationRangeError above support, got %v", err)
	}

	// Exact edges must evaluate cleanly; quadrature nodes land there.
	for _, kq := range []float64{0.1, 1.0} {
		if _, err := s.eval(kq); err != nil {
			t.Errorf("eval(%v) at edge: %v", kq, err)
		}
	}
}

func TestSliceAt_RedshiftBlend(t *testing.T) {
	k := logspace(-2, 1, 20)
	ps := &PowerSpectrumGrid{K: k, Z: []float64{0, 1}, P: make([][]float64, len(k))}
	for i, kv := range k {
		// P halves between z=0 and z=1.
		ps.P[i] = []float64{2 * kv, kv}
	}

	s, err := sliceAt(ps, 0.5)
	if err != nil {
		t.Fatalf("sliceAt: %v", err)
	}
	got, err := s.eval(0.1)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	want := 1.5 * 0.1
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("blended P(0.1, z=0.5) = %v, want %v", got, want)
	}
}

func TestSliceAt_RedshiftOutOfRange(t *testing.T) {
	k := []float64{0.1, 1.0}
	ps := &PowerSpectrumGrid{K: k, Z: []float64{0, 1}, P: [][]float64{{1, 1}, {1, 1}}}

	var ire *InterpolationRangeError
	if _, err := sliceAt(ps, 2.0); !errors.As(err, &ire) {
		t.Errorf("expected InterpolationRangeError for z=2, got %v", err)
	}
	if ire.Axis != "z" {
		t.Errorf("error axis = %q, want z", ire.Axis)
	}
}
