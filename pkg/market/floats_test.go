package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	assert.InDelta(t, 2500.5, ParseFloat("2500.5"), 1e-12)
	assert.InDelta(t, -0.025, ParseFloat("-0.025"), 1e-12)
	assert.True(t, math.IsNaN(ParseFloat("")))
	assert.True(t, math.IsNaN(ParseFloat("n/a")))
	assert.True(t, math.IsNaN(ParseFloat("NaN")))
	assert.True(t, math.IsNaN(ParseFloat("+Inf")))
	assert.True(t, math.IsNaN(ParseFloat("-Inf")))
}

func TestFinite(t *testing.T) {
	v := Finite(1.5)
	require.NotNil(t, v)
	assert.InDelta(t, 1.5, *v, 1e-12)

	assert.Nil(t, Finite(math.NaN()))
	assert.Nil(t, Finite(math.Inf(1)))
	assert.Nil(t, Finite(math.Inf(-1)))

	zero := Finite(0)
	require.NotNil(t, zero, "zero is a value, not absent")
	assert.Equal(t, 0.0, *zero)
}

func TestFiniteRound(t *testing.T) {
	v := FiniteRound(2500.4567, 2)
	require.NotNil(t, v)
	assert.Equal(t, 2500.46, *v)

	v = FiniteRound(0.123456789, 4)
	require.NotNil(t, v)
	assert.Equal(t, 0.1235, *v)

	assert.Nil(t, FiniteRound(math.NaN(), 2))
}

func TestValue(t *testing.T) {
	v := 3.5
	assert.Equal(t, 3.5, Value(&v))
	assert.True(t, math.IsNaN(Value(nil)))
}
