package engine

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/mcts"
	"github.com/sousei-go/ishi/model"
	"github.com/sousei-go/ishi/randutil"
	"github.com/sousei-go/ishi/sgf"
)

const (
	metaFile = "meta.json"
)

// meta is the on-disk checkpoint shape, matching agogo.go's MetaData
// field-for-field, renamed to this domain's config types.
type meta struct {
	Name      string      `json:"name"`
	ModelName string      `json:"model_name"`
	ModelConf model.Config `json:"model_conf"`
	MCTSConf  mcts.Config `json:"mcts_conf"`
}

// Engine is the top-level self-play orchestrator, renamed from (and
// grounded on) agogo.go's AZ. Training (AZ.LearnAZ /
// dual.Train) is explicitly out of scope here — Engine only drives
// search/self-play and (de)serializes configuration, never weights,
// since nothing in this module ever trains a model (see DESIGN.md).
type Engine struct {
	Conf Config

	model model.Model
	rng   *randutil.PCG32
}

// New builds an Engine bound to m, panicking on an invalid configuration
// exactly as agogo.go's New does on NNConf/MCTSConf.IsValid().
func New(conf Config, m model.Model, rng *randutil.PCG32) *Engine {
	if !conf.ModelConf.IsValid() {
		panic("engine: ModelConf is not valid")
	}
	if !conf.MCTSConf.IsValid() {
		panic("engine: MCTSConf is not valid")
	}
	return &Engine{Conf: conf, model: m, rng: rng}
}

// SelfPlay plays one game of the configured model against itself and
// returns the harvested, augmented training examples, mirroring
// AZ.SelfPlay/Arena.Play(record=true) pairing.
func (e *Engine) SelfPlay() ([]Example, error) {
	examples, _, _, err := e.SelfPlayGame()
	return examples, err
}

// SelfPlayGame is SelfPlay plus the move-by-move transcript and winner,
// for callers (cmd/selfplay) that want to render a real SGF record of the
// game rather than only its training examples.
func (e *Engine) SelfPlayGame() ([]Example, []sgf.Move, board.Color, error) {
	a := NewPlayer("A", e.model, e.Conf.MCTSConf)
	b := NewPlayer("B", e.model, e.Conf.MCTSConf)
	if err := a.SwitchToInference(); err != nil {
		return nil, nil, board.Empty, err
	}
	if err := b.SwitchToInference(); err != nil {
		return nil, nil, board.Empty, err
	}
	defer a.Close()
	defer b.Close()

	arena := NewArena(a, b, e.Conf.BoardSize, e.Conf.MCTSConf.Komi, e.rng)
	examples, moves, winner, err := arena.Play(true)
	if err != nil {
		return nil, nil, board.Empty, err
	}

	if e.Conf.MaxExamples > 0 && len(examples) > e.Conf.MaxExamples {
		e.rng.Shuffle(len(examples), func(i, j int) { examples[i], examples[j] = examples[j], examples[i] })
		examples = examples[:e.Conf.MaxExamples]
	}
	if e.Conf.Augmenter != nil {
		var augmented []Example
		for _, ex := range examples {
			augmented = append(augmented, e.Conf.Augmenter(ex)...)
		}
		examples = augmented
	}
	return examples, moves, winner, nil
}

// SaveCheckpoint writes dirName/meta.json describing this Engine's
// configuration, mirroring AZ.SaveAZ's meta.json half; there is no
// checkpoint.model half here because no model implementation in this
// module holds trained weights to persist (training is out of scope).
func (e *Engine) SaveCheckpoint(dirName string) error {
	if err := os.MkdirAll(dirName, 0755); err != nil {
		return errors.WithStack(err)
	}
	m := meta{Name: e.Conf.Name, ModelName: e.model.Name(), ModelConf: e.Conf.ModelConf, MCTSConf: e.Conf.MCTSConf}
	b, err := json.MarshalIndent(m, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(filepath.Join(dirName, metaFile), b, 0644))
}

// LoadCheckpoint rebuilds an Engine's Config from dirName/meta.json. The
// caller supplies the model.Model to bind, since Model is an interface
// this package cannot reconstruct from a name alone.
func LoadCheckpoint(dirName string, m model.Model, rng *randutil.PCG32) (*Engine, error) {
	b, err := os.ReadFile(filepath.Join(dirName, metaFile))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	var md meta
	if err := json.Unmarshal(b, &md); err != nil {
		return nil, errors.WithStack(err)
	}
	conf := Config{
		Name:      md.Name,
		BoardSize: md.ModelConf.Width,
		ModelConf: md.ModelConf,
		MCTSConf:  md.MCTSConf,
	}
	return New(conf, m, rng), nil
}
