// Package cache implements the optional, advisory inference cache (spec
// §4.H): a bounded map from position key to (policy, value) with capacity
// derived from a byte budget. Admission and eviction are ristretto's own
// cost- and frequency-based policies: entries are not evicted in LRU touch
// order, and a Put is not guaranteed to store its entry.
package cache

import (
	"bytes"
	"log"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/dustin/go-humanize"

	"github.com/sousei-go/ishi/board"
	"github.com/sousei-go/ishi/model"
)

// Key resolves spec §9's Open Question (documented in DESIGN.md): rather
// than folding "the previous move was a pass" into board.Position.StoneHash
// (which spec §3 explicitly defines as excluding ko/side-to-play), the
// extra bit lives here, in the cache key only.
type Key struct {
	StoneHash      uint64
	Ko             board.Coord
	ToPlay         board.Color
	OpponentPassed bool
}

// Entry is the cached (policy, value) pair.
type Entry struct {
	Policy []float32
	Value  float32
}

// InferenceCache is a cost-based bounded cache keyed by Key, backed by
// ristretto: adopted from hailam-chessplay's storage stack per
// SPEC_FULL's Domain Stack table, promoted here to a direct in-memory
// cache rather than that repo's persistent KV use.
type InferenceCache struct {
	c      *ristretto.Cache[Key, Entry]
	buf    bytes.Buffer
	logger *log.Logger
}

// NewInferenceCache builds a cache sized from byteBudget, matching spec
// §4.H's "capacity derived from a byte budget". Average entry cost is
// estimated from actionSpace (one float32 per policy slot plus the value).
func NewInferenceCache(byteBudget int64, actionSpace int) (*InferenceCache, error) {
	avgCost := int64(actionSpace)*4 + 4
	numCounters := (byteBudget / avgCost) * 10
	if numCounters < 100 {
		numCounters = 100
	}
	c, err := ristretto.NewCache(&ristretto.Config[Key, Entry]{
		NumCounters: numCounters,
		MaxCost:     byteBudget,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	ic := &InferenceCache{c: c}
	ic.logger = log.New(&ic.buf, "cache: ", log.LstdFlags)
	ic.logger.Printf("inference cache sized for %s (estimated entry cost %s)",
		humanize.Bytes(uint64(byteBudget)), humanize.Bytes(uint64(avgCost)))
	return ic, nil
}

// Get returns the cached entry for key, if present. A miss always falls
// through to the model (spec §4.H: "cache misses always fall through").
func (ic *InferenceCache) Get(key Key) (Entry, bool) {
	return ic.c.Get(key)
}

// Put stores an inference result, cost-weighted by its policy length.
func (ic *InferenceCache) Put(key Key, e Entry) {
	cost := int64(len(e.Policy))*4 + 4
	ic.c.Set(key, e, cost)
}

// Close releases the underlying cache's background goroutines.
func (ic *InferenceCache) Close() {
	ic.c.Close()
}

// Log returns accumulated breadcrumbs, matching Arena's
// buf/logger/Log convention (spec §7: the core never logs at
// WARN/ERROR on its own; these are opt-in informational lines).
func (ic *InferenceCache) Log() string {
	return ic.buf.String()
}

// FromOutput adapts a model.Output into a cache Entry.
func FromOutput(o model.Output) Entry {
	return Entry{Policy: o.Policy, Value: o.Value}
}
