package mcts

// Config holds every recognized MCTS player option from spec §4.F's table,
// plus CPUCT (the PUCT selection constant used by the node-level scoring in
// spec §4.E) and MaxMoves (the move-limit terminal condition spec §4.E
// mentions but leaves unspecified). Mirrors mcts/tree.go's mcts.Config /
// IsValid() pattern.
type Config struct {
	CPUCT             float32 `json:"c_puct"`
	NumReadouts       int     `json:"num_readouts"`
	VirtualLosses     int     `json:"virtual_losses"`
	InjectNoise       bool    `json:"inject_noise"`
	NoiseMix          float32 `json:"noise_mix"`
	SoftPick          bool    `json:"soft_pick"`
	PolicySoftmaxTemp float32 `json:"policy_softmax_temp"`
	RandomSymmetry    bool    `json:"random_symmetry"`
	ValueInitPenalty  float32 `json:"value_init_penalty"`
	ResignThreshold   float32 `json:"resign_threshold"`
	ResignEnabled     bool    `json:"resign_enabled"`
	Komi              float64 `json:"komi"`
	RandomSeed        uint64  `json:"random_seed"`
	SecondsPerMove    float64 `json:"seconds_per_move"`
	TimeLimit         float64 `json:"time_limit"`
	DecayFactor       float64 `json:"decay_factor"`
	RestrictInBensons bool    `json:"restrict_in_bensons"`
	MaxMoves          int     `json:"max_moves"`

	// DisableResignProbability is the per-game chance that NewPlayer turns
	// resignation off for that game, after which ShouldResign never reports
	// true (SPEC_FULL +7 Supplemented Features); it sits beside
	// ResignEnabled, which it qualifies.
	DisableResignProbability float64 `json:"disable_resign_probability"`
}

// DefaultConfig returns sane defaults for an N×N board, matching the
// values minigo-derived engines commonly ship (spec §7's Supplemented
// Features note these values come from "well-known minigo/AlphaZero-engine
// behavior").
func DefaultConfig(n int) Config {
	return Config{
		CPUCT:             1.0,
		NumReadouts:       800,
		VirtualLosses:     8,
		NoiseMix:          0.25,
		PolicySoftmaxTemp: 1.0,
		ResignThreshold:   -0.9,
		ResignEnabled:     true,
		Komi:              7.5,
		MaxMoves:          2*n*n + 50,
	}
}

// IsValid matches mcts/tree.go's Config.IsValid style: a flat boolean AND of
// sanity bounds, no error detail.
func (c Config) IsValid() bool {
	return c.CPUCT > 0 &&
		c.NumReadouts > 0 &&
		c.VirtualLosses > 0 &&
		c.NoiseMix >= 0 && c.NoiseMix <= 1 &&
		c.PolicySoftmaxTemp > 0 &&
		c.MaxMoves > 0 &&
		c.DisableResignProbability >= 0 && c.DisableResignProbability <= 1
}
