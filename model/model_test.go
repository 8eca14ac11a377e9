package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sousei-go/ishi/symmetry"
	"gorgonia.org/tensor"
)

func TestDefaultConfigIsValid(t *testing.T) {
	conf := DefaultConfig(9)
	assert.True(t, conf.IsValid())
	assert.Equal(t, 9*9+1, conf.ActionSpace)
}

func TestStubRunShapes(t *testing.T) {
	actionSpace := 9*9 + 1
	s := NewStub(actionSpace)
	inf, err := s.NewInstance()
	require.NoError(t, err)
	defer inf.Close()

	feat := tensor.New(tensor.WithBacking(make([]float32, 9*9*17)), tensor.WithShape(9, 9, 17))
	batch := []Input{{Features: feat, Symmetry: symmetry.Identity}}
	out, err := inf.Run(batch)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Len(t, out[0].Policy, actionSpace)

	var sum float32
	for _, p := range out[0].Policy {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-4)
}

func TestStubValueFn(t *testing.T) {
	s := NewStub(5)
	s.ValueFn = func(in Input) float32 { return 0.5 }
	inf, _ := s.NewInstance()
	out, err := inf.Run([]Input{{}})
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), out[0].Value)
}

func TestGorgonianModelRejectsInvalidConfig(t *testing.T) {
	_, err := NewGorgonianModel("test", Config{})
	assert.Error(t, err)
}
