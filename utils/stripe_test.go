package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrossMinorUnits(t *testing.T) {
	assert.Equal(t, int64(10000), GrossMinorUnits(100.00))
	assert.Equal(t, int64(1999), GrossMinorUnits(19.99))
	assert.Equal(t, int64(1), GrossMinorUnits(0.01))
	assert.Equal(t, int64(0), GrossMinorUnits(0))
}

func TestPlatformFeeMinorUnits(t *testing.T) {
	assert.Equal(t, int64(3000), PlatformFeeMinorUnits(100.00))

	// 19.99 * 0.30 = 5.997 -> 600 cents, rounded on its own rather than
	// derived from the rounded gross
	assert.Equal(t, int64(600), PlatformFeeMinorUnits(19.99))

	// 0.01 * 0.30 = 0.003 -> rounds to zero
	assert.Equal(t, int64(0), PlatformFeeMinorUnits(0.01))
}

func TestFeeNeverExceedsGross(t *testing.T) {
	for _, price := range []float64{0.01, 0.05, 9.99, 19.99, 49.50, 100.00, 1234.56} {
		assert.LessOrEqual(t, PlatformFeeMinorUnits(price), GrossMinorUnits(price), "price %v", price)
	}
}
