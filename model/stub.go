package model

// Stub is a deterministic Model for tests and demos: it never runs a real
// network. Policy is uniform over legal-looking slots (the caller is
// responsible for masking illegal moves downstream) and value is a fixed
// constant, optionally perturbed by a caller-supplied function so tests can
// script specific value sequences without a real network.
type Stub struct {
	ActionSpace int
	ValueFn     func(in Input) float32
}

// NewStub builds a Stub producing a uniform policy over actionSpace slots
// and a constant value of 0 unless ValueFn is set.
func NewStub(actionSpace int) *Stub {
	return &Stub{ActionSpace: actionSpace}
}

func (s *Stub) Name() string { return "stub" }

func (s *Stub) NewInstance() (Inferer, error) {
	return &stubInferer{s}, nil
}

type stubInferer struct {
	s *Stub
}

func (si *stubInferer) Run(batch []Input) ([]Output, error) {
	out := make([]Output, len(batch))
	uniform := 1 / float32(si.s.ActionSpace)
	for i, in := range batch {
		policy := make([]float32, si.s.ActionSpace)
		for j := range policy {
			policy[j] = uniform
		}
		var value float32
		if si.s.ValueFn != nil {
			value = si.s.ValueFn(in)
		}
		out[i] = Output{Policy: policy, Value: value}
	}
	return out, nil
}

func (si *stubInferer) Close() error { return nil }
