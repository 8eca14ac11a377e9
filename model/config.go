package model

// Config describes a dual-head (policy+value) network's shape, ported from
// dualnet.Config (dualnet/config.go) — same fields, same
// round()-to-power-of-two default for K, but scoped to the Go board domain
// (Width/Height are always equal and equal to the board size N).
type Config struct {
	K            int  `json:"k"`             // number of filters / hidden width
	SharedLayers int  `json:"shared_layers"` // number of shared residual blocks
	FC           int  `json:"fc"`            // fc layer width
	BatchSize    int  `json:"batch_size"`    // batch size
	Width        int  `json:"width"`         // board size
	Height       int  `json:"height"`        // board size
	Features     int  `json:"features"`      // input plane count (17, see encoder.Planes)
	ActionSpace  int  `json:"action_space"`  // N*N + 1
	FwdOnly      bool `json:"fwd_only"`      // inference-only graph, no training ops
}

// DefaultConfig mirrors dual.DefaultConf(m, n, actionSpace), specialized to
// a square N×N board.
func DefaultConfig(n int) Config {
	k := roundToPow2((n * n) / 3)
	return Config{
		K:            k,
		SharedLayers: n,
		FC:           2 * k,
		BatchSize:    256,
		Width:        n,
		Height:       n,
		Features:     17,
		ActionSpace:  n*n + 1,
		FwdOnly:      true,
	}
}

// IsValid matches dual.Config.IsValid's checks, extended with the
// Width==Height constraint this domain always holds.
func (c Config) IsValid() bool {
	return c.K >= 1 &&
		c.ActionSpace >= 3 &&
		c.SharedLayers >= 0 &&
		c.FC > 1 &&
		c.BatchSize >= 1 &&
		c.Features > 0 &&
		c.Width == c.Height &&
		c.ActionSpace == c.Width*c.Height+1
}

func roundToPow2(a int) int {
	n := a - 1
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++

	lt := n / 2
	if (a - lt) < (n - a) {
		return lt
	}
	return n
}
