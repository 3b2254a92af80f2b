package dimension

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFallbackChains(t *testing.T) {
	full := FromBand(1.0, 2.0, 3.0)

	v, err := Resolve(full, Maximum)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	v, err = Resolve(full, Nominal)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = Resolve(full, Minimum)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)

	onlyMinMax := FromBand(1.0, math.NaN(), 3.0)
	v, err = Resolve(onlyMinMax, Nominal)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v) // (max+min)/2 fallback

	onlyMax := FromBand(math.NaN(), math.NaN(), 5.0)
	v, err = Resolve(onlyMax, Minimum)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v) // min -> nom -> max fallback

	_, err = Resolve(WithTolerance{}, Nominal)
	assert.ErrorIs(t, err, ErrNoValue{})
}

func TestResolveIsIdempotent(t *testing.T) {
	w := Exact(4.2)
	v1, err := Resolve(w, Nominal)
	require.NoError(t, err)
	v2, err := Resolve(Exact(v1), Nominal)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
}

func TestFlattenIsIdempotent(t *testing.T) {
	m := Map{
		"A": FromBand(10, 11, 12),
		"B": Exact(5),
	}
	flat, err := Flatten(m)
	require.NoError(t, err)

	reflattened := Map{}
	for k, v := range flat {
		reflattened[k] = Exact(v)
	}
	flat2, err := Flatten(reflattened)
	require.NoError(t, err)
	assert.Equal(t, flat, flat2)
}

func TestRoundFloatIsIdempotent(t *testing.T) {
	x := 1.0000005000001
	r1 := RoundFloat(x, 6)
	r2 := RoundFloat(r1, 6)
	assert.Equal(t, r1, r2)
}
