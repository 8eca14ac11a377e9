package engine

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/mcts"
	"github.com/sousei-go/ishi/model"
	"github.com/sousei-go/ishi/randutil"
)

func init() {
	board.InitZobrist(11, 5)
}

func testConfig() Config {
	cfg := mcts.DefaultConfig(5)
	cfg.NumReadouts = 8
	cfg.MaxMoves = 20
	return Config{
		Name:      "test",
		BoardSize: 5,
		ModelConf: model.DefaultConfig(5),
		MCTSConf:  cfg,
	}
}

func TestSelfPlayProducesExamples(t *testing.T) {
	conf := testConfig()
	m := model.NewStub(conf.ModelConf.ActionSpace)
	e := New(conf, m, randutil.NewPCG32(1, 1))

	examples, err := e.SelfPlay()
	require.NoError(t, err)
	require.NotEmpty(t, examples)
	for _, ex := range examples {
		assert.Len(t, ex.Policy, conf.ModelConf.ActionSpace)
		assert.Contains(t, []float32{-1, 0, 1}, ex.Value)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	conf := testConfig()
	m := model.NewStub(conf.ModelConf.ActionSpace)
	e := New(conf, m, randutil.NewPCG32(2, 2))

	dir := t.TempDir()
	require.NoError(t, e.SaveCheckpoint(dir))

	loaded, err := LoadCheckpoint(dir, m, randutil.NewPCG32(3, 3))
	require.NoError(t, err)
	assert.Equal(t, conf.Name, loaded.Conf.Name)
	assert.Equal(t, conf.ModelConf.ActionSpace, loaded.Conf.ModelConf.ActionSpace)
	assert.Equal(t, conf.MCTSConf.NumReadouts, loaded.Conf.MCTSConf.NumReadouts)
}

func TestLoadCheckpointMissingDirErrors(t *testing.T) {
	m := model.NewStub(26)
	_, err := LoadCheckpoint(os.TempDir()+"/ishi-does-not-exist", m, randutil.NewPCG32(1, 1))
	assert.Error(t, err)
}
