package symmetry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func allSymmetries() []Symmetry {
	return []Symmetry{Identity, Rot90, Rot180, Rot270, FlipH, FlipHRot90, FlipHRot180, FlipHRot270}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 9
	for _, s := range allSymmetries() {
		plane := make([]float32, n*n)
		for i := range plane {
			plane[i] = rng.Float32()
		}
		out := ApplyPlane(Inverse(s), ApplyPlane(s, plane, n), n)
		assert.Equal(t, plane, out, "symmetry %s must round-trip", s)
	}
}

func TestPolicyRoundTripKeepsPass(t *testing.T) {
	const n = 9
	policy := make([]float32, n*n+1)
	for i := range policy {
		policy[i] = float32(i)
	}
	for _, s := range allSymmetries() {
		out := ApplyPolicy(Inverse(s), ApplyPolicy(s, policy, n), n)
		assert.Equal(t, policy, out)
		transformed := ApplyPolicy(s, policy, n)
		assert.Equal(t, policy[n*n], transformed[n*n], "pass slot must be invariant under %s", s)
	}
}

func TestArgMaxTieBreak(t *testing.T) {
	a := []float32{1, 5, 5, 2, 5}
	assert.Equal(t, 1, ArgMax(a))
}

func TestArgMaxPanicsOnEmpty(t *testing.T) {
	assert.Panics(t, func() { ArgMax(nil) })
}

func TestMixBitsDeterministic(t *testing.T) {
	a := MixBits(123456789, 1)
	b := MixBits(123456789, 1)
	assert.Equal(t, a, b)
}

func TestMixBitsInRange(t *testing.T) {
	for i := uint64(0); i < 100; i++ {
		s := MixBits(i*7919, 0)
		assert.GreaterOrEqual(t, int(s), 0)
		assert.Less(t, int(s), 8)
	}
}
