package cosmo

import "math"

// topHatSeriesCutoff is the |x| below which the closed form of the window
// loses precision to cancellation and the Taylor series is used instead.
const topHatSeriesCutoff = 1e-2

// TopHatWindow evaluates the Fourier transform of the real-space spherical
// top-hat filter,
//
//	W(x) = 3 (sin x - x cos x) / x³
//
// with the removable singularity W(0) = 1. Near zero the closed form
// subtracts nearly equal quantities, so a short even Taylor series
// 1 - x²/10 + x⁴/280 is used there; at the cutoff both branches agree to
// better than 1e-12.
func TopHatWindow(x float64) float64 {
	ax := math.Abs(x)
	if ax < topHatSeriesCutoff {
		x2 := x * x
		return 1 - x2/10 + x2*x2/280
	}
	return 3 * (math.Sin(x) - x*math.Cos(x)) / (x * x * x)
}
