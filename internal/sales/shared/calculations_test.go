package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineTotal(t *testing.T) {
	assert.Equal(t, 625.0, LineTotal(2, 312.50))
	assert.Equal(t, 0.3, LineTotal(3, 0.1), "binary float artifacts must round away")
	assert.Equal(t, 283.5, LineTotal(1.5, 189.00))
}

func TestSumMoney(t *testing.T) {
	assert.Equal(t, 0.0, SumMoney())
	assert.Equal(t, 0.3, SumMoney(0.1, 0.2))
	assert.Equal(t, 1221.0, SumMoney(937.50, 283.50))
	assert.Equal(t, 600.0, SumMoney(1000, -400))
}

func TestCompareMoney(t *testing.T) {
	assert.Equal(t, 0, CompareMoney(0.1+0.2, 0.3))
	assert.Equal(t, -1, CompareMoney(99.99, 100))
	assert.Equal(t, 1, CompareMoney(100.01, 100))
}
