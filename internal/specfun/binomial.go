package specfun

import "fmt"

// BinomialCDF returns P(X <= k) for X ~ Binomial(n, p), via the regularized
// incomplete beta identity P(X <= k) = I_{1-p}(n-k, k+1).
func BinomialCDF(k, n int, p float64) (float64, error) {
	if n < 0 || p < 0 || p > 1 {
		return 0, fmt.Errorf("specfun: BinomialCDF requires n >= 0 and p in [0, 1], got n=%d p=%g", n, p)
	}
	if k < 0 {
		return 0, nil
	}
	if k >= n {
		return 1, nil
	}
	return BetaInc(float64(n-k), float64(k+1), 1-p)
}

// BinomialSF returns P(X > k).
func BinomialSF(k, n int, p float64) (float64, error) {
	cdf, err := BinomialCDF(k, n, p)
	if err != nil {
		return 0, err
	}
	return 1 - cdf, nil
}
