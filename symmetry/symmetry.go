// Package symmetry implements the eight dihedral board transforms used for
// inference-time data augmentation (spec §4.G): the features submitted to
// the model and the policy read back are transformed and inverse-transformed
// respectively, so a single trained model sees a canonicalized view.
package symmetry

import "github.com/chewxy/math32"

// Symmetry names one of the eight elements of the dihedral group D4.
type Symmetry int

const (
	Identity Symmetry = iota
	Rot90
	Rot180
	Rot270
	FlipH
	FlipHRot90
	FlipHRot180
	FlipHRot270
	numSymmetries = 8
)

func (s Symmetry) String() string {
	switch s {
	case Identity:
		return "identity"
	case Rot90:
		return "rot90"
	case Rot180:
		return "rot180"
	case Rot270:
		return "rot270"
	case FlipH:
		return "flip-horizontal"
	case FlipHRot90:
		return "flip-horizontal+rot90"
	case FlipHRot180:
		return "flip-horizontal+rot180"
	case FlipHRot270:
		return "flip-horizontal+rot270"
	default:
		return "unknown"
	}
}

// mapPoint returns the (row, col) that point (r, c) on an N×N board maps to
// under s. Each symmetry is expressed as at most one rotation composed with
// an optional horizontal flip, applied flip-first.
func mapPoint(s Symmetry, r, c, n int) (int, int) {
	if s >= FlipH {
		c = n - 1 - c
		s -= FlipH
	}
	switch s {
	case Identity:
		return r, c
	case Rot90:
		return c, n - 1 - r
	case Rot180:
		return n - 1 - r, n - 1 - c
	case Rot270:
		return n - 1 - c, r
	}
	panic("symmetry: unreachable")
}

// Inverse returns the symmetry that undoes s, satisfying
// Apply(Inverse(s), Apply(s, x)) == x.
func Inverse(s Symmetry) Symmetry {
	switch s {
	case Rot90:
		return Rot270
	case Rot270:
		return Rot90
	default:
		return s // identity, rot180 and every flipped symmetry are self-inverse
	}
}

// ApplyPlane returns a new N*N row-major plane with s applied.
func ApplyPlane(s Symmetry, plane []float32, n int) []float32 {
	out := make([]float32, n*n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			nr, nc := mapPoint(s, r, c, n)
			out[nr*n+nc] = plane[r*n+c]
		}
	}
	return out
}

// ApplyPolicy transforms a policy/prior vector of length N²+1 (board cells
// plus the trailing pass slot, which is invariant under every symmetry).
func ApplyPolicy(s Symmetry, policy []float32, n int) []float32 {
	out := make([]float32, len(policy))
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			nr, nc := mapPoint(s, r, c, n)
			out[nr*n+nc] = policy[r*n+c]
		}
	}
	if len(policy) > n*n {
		copy(out[n*n:], policy[n*n:])
	}
	return out
}

// MixBits deterministically selects a symmetry for a given position and
// player perspective, per spec §4.G: "MixBits(stone_hash·LargePrime +
// player_mix) mod 8". The mixing step is a 64-bit avalanche finalizer
// (Murmur3's fmix64) so nearby hashes land in unrelated buckets.
func MixBits(stoneHash uint64, playerMix uint64) Symmetry {
	const largePrime = 0x9E3779B97F4A7C15
	x := stoneHash*largePrime + playerMix
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return Symmetry(x % numSymmetries)
}

// ArgMax returns the index of the largest element, breaking ties by the
// smallest index (spec §8 "ArgMax tie-break"). Panics on an empty slice,
// matching spec §7's precondition-violation policy for an "empty container
// to ArgMax". Mirrors mcts/utils.go's argmax, which also seeds
// its running max from math32.Inf(-1).
func ArgMax(a []float32) int {
	if len(a) == 0 {
		panic("symmetry: ArgMax of empty slice")
	}
	best := 0
	bestVal := math32.Inf(-1)
	for i := range a {
		if a[i] > bestVal {
			bestVal = a[i]
			best = i
		}
	}
	return best
}
