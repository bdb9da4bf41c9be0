package econ

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCobbDouglasMonotone(t *testing.T) {
	u := CobbDouglas{Alpha: 0.5}
	low := u.U(FromWhole(5, 5))
	high := u.U(FromWhole(10, 5))
	assert.Greater(t, high, low, "more of A with B held fixed must raise utility")
}

func TestLeontiefCapsOnMin(t *testing.T) {
	u := Leontief{RatioA: 1, RatioB: 1}
	assert.Equal(t, 5.0, u.U(FromWhole(5, 10)))
	assert.Equal(t, 5.0, u.U(FromWhole(10, 5)))
}

func TestLinearMRSConstant(t *testing.T) {
	u := Linear{WeightA: 2, WeightB: 1}
	assert.Equal(t, 2.0, u.MRS(FromWhole(1, 1)))
	assert.Equal(t, 2.0, u.MRS(FromWhole(100, 1)))
}

func TestStoneGearySubsistence(t *testing.T) {
	u := StoneGeary{Alpha: 0.5, GammaA: 2, GammaB: 2}
	below := u.U(FromWhole(2, 2))
	above := u.U(FromWhole(5, 5))
	assert.Greater(t, above, below)
}

func TestComputeQuoteSpread(t *testing.T) {
	u := Linear{WeightA: 2, WeightB: 1}
	q := ComputeQuote(u, FromWhole(1, 1), 0.1)
	assert.InDelta(t, 2.2, q.BidAinB, 1e-9)
	assert.InDelta(t, 1.8, q.AskAinB, 1e-9)
}
