package align

import "math"

// The diagonal prior scores source position j of n for target position i of
// m by how far j/n lies from i/m. Positions are 1-based; tension sets how
// sharply probability falls off away from the diagonal.

func diagonalFeature(i, j, m, n int) float64 {
	return -math.Abs(float64(j)/float64(n) - float64(i)/float64(m))
}

func diagonalWeight(i, j, m, n int, tension float64) float64 {
	return math.Exp(diagonalFeature(i, j, m, n) * tension)
}

// diagonalZ sums diagonalWeight over all n source positions.
func diagonalZ(i, m, n int, tension float64) float64 {
	var z float64
	for j := 1; j <= n; j++ {
		z += diagonalWeight(i, j, m, n, tension)
	}

	return z
}

// diagonalDLogZ is the derivative of log diagonalZ with respect to tension,
// the expected feature value under the prior.
func diagonalDLogZ(i, m, n int, tension float64) float64 {
	var z, d float64
	for j := 1; j <= n; j++ {
		w := diagonalWeight(i, j, m, n, tension)
		z += w
		d += diagonalFeature(i, j, m, n) * w
	}

	return d / z
}
