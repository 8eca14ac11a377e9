package model

import (
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// GorgonianModel is a small reference dual-head (policy+value) network
// satisfying the Model contract, shaped by Config the way dualnet.Config's
// K/SharedLayers/FC/BatchSize/Width/Height/Features/ActionSpace implied
// (only the config struct survived retrieval from dualnet/; the
// graph construction below is written fresh against gorgonia.org/gorgonia).
// It is intentionally simple — stacked fully-connected layers rather than
// convolutional residual blocks — since training (and therefore justifying
// a heavier architecture) is an explicit Non-goal; this exists to give
// Model/Inferer a concrete, exercised instance.
type GorgonianModel struct {
	conf Config
	name string
}

// NewGorgonianModel validates conf and returns a Model that builds one
// independent graph+VM per Inferer (gorgonia graphs are not safe for
// concurrent use, which is exactly why Model.NewInstance exists).
func NewGorgonianModel(name string, conf Config) (*GorgonianModel, error) {
	if !conf.IsValid() {
		return nil, errors.Errorf("model: invalid config %+v", conf)
	}
	return &GorgonianModel{conf: conf, name: name}, nil
}

func (m *GorgonianModel) Name() string { return m.name }

func (m *GorgonianModel) NewInstance() (Inferer, error) {
	return newGorgonianInferer(m.conf)
}

type gorgonianInferer struct {
	conf Config

	g       *gorgonia.ExprGraph
	input   *gorgonia.Node
	policy  *gorgonia.Node
	value   *gorgonia.Node
	vm      gorgonia.VM
	planeSz int
}

func newGorgonianInferer(conf Config) (*gorgonianInferer, error) {
	g := gorgonia.NewGraph()
	planeSz := conf.Width * conf.Height
	inSize := planeSz * conf.Features

	input := gorgonia.NewMatrix(g, tensor.Float32,
		gorgonia.WithShape(conf.BatchSize, inSize),
		gorgonia.WithName("input"),
		gorgonia.WithInit(gorgonia.Zeroes()))

	w1 := gorgonia.NewMatrix(g, tensor.Float32,
		gorgonia.WithShape(inSize, conf.FC),
		gorgonia.WithName("w1"),
		gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	b1 := gorgonia.NewVector(g, tensor.Float32,
		gorgonia.WithShape(conf.FC),
		gorgonia.WithName("b1"),
		gorgonia.WithInit(gorgonia.Zeroes()))

	h, err := gorgonia.Mul(input, w1)
	if err != nil {
		return nil, errors.Wrap(err, "model: building shared layer")
	}
	h, err = gorgonia.BroadcastAdd(h, b1, nil, []byte{0})
	if err != nil {
		return nil, errors.Wrap(err, "model: adding shared bias")
	}
	h, err = gorgonia.Rectify(h)
	if err != nil {
		return nil, errors.Wrap(err, "model: shared ReLU")
	}

	wPolicy := gorgonia.NewMatrix(g, tensor.Float32,
		gorgonia.WithShape(conf.FC, conf.ActionSpace),
		gorgonia.WithName("wPolicy"),
		gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	policyLogits, err := gorgonia.Mul(h, wPolicy)
	if err != nil {
		return nil, errors.Wrap(err, "model: building policy head")
	}
	policy, err := gorgonia.SoftMax(policyLogits)
	if err != nil {
		return nil, errors.Wrap(err, "model: policy softmax")
	}

	wValue := gorgonia.NewMatrix(g, tensor.Float32,
		gorgonia.WithShape(conf.FC, 1),
		gorgonia.WithName("wValue"),
		gorgonia.WithInit(gorgonia.GlorotN(1.0)))
	valueRaw, err := gorgonia.Mul(h, wValue)
	if err != nil {
		return nil, errors.Wrap(err, "model: building value head")
	}
	value, err := gorgonia.Tanh(valueRaw)
	if err != nil {
		return nil, errors.Wrap(err, "model: value tanh")
	}

	vm := gorgonia.NewTapeMachine(g)

	return &gorgonianInferer{
		conf:    conf,
		g:       g,
		input:   input,
		policy:  policy,
		value:   value,
		vm:      vm,
		planeSz: planeSz,
	}, nil
}

func (gi *gorgonianInferer) Run(batch []Input) ([]Output, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	inSize := gi.planeSz * gi.conf.Features
	backing := make([]float32, gi.conf.BatchSize*inSize)
	for i, in := range batch {
		if i >= gi.conf.BatchSize {
			break
		}
		data := in.Features.Data().([]float32)
		copy(backing[i*inSize:(i+1)*inSize], data)
	}
	inputTensor := tensor.New(tensor.WithBacking(backing), tensor.WithShape(gi.conf.BatchSize, inSize))
	if err := gorgonia.Let(gi.input, inputTensor); err != nil {
		return nil, errors.Wrap(err, "model: binding input")
	}
	if err := gi.vm.RunAll(); err != nil {
		return nil, errors.Wrap(err, "model: running graph")
	}
	defer gi.vm.Reset()

	policyVal := gi.policy.Value().Data().([]float32)
	valueVal := gi.value.Value().Data().([]float32)

	out := make([]Output, len(batch))
	for i := range batch {
		p := make([]float32, gi.conf.ActionSpace)
		copy(p, policyVal[i*gi.conf.ActionSpace:(i+1)*gi.conf.ActionSpace])
		out[i] = Output{Policy: p, Value: valueVal[i]}
	}
	return out, nil
}

func (gi *gorgonianInferer) Close() error {
	return gi.vm.Close()
}
