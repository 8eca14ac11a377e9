package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sousei-go/ishi/board"
)

func TestPutThenGet(t *testing.T) {
	c, err := NewInferenceCache(1<<20, 82)
	require.NoError(t, err)
	defer c.Close()

	key := Key{StoneHash: 42, Ko: board.InvalidCoord, ToPlay: board.Black, OpponentPassed: false}
	entry := Entry{Policy: []float32{0.1, 0.2, 0.7}, Value: 0.25}
	c.Put(key, entry)
	// ristretto's Set is processed asynchronously via an internal buffer;
	// give it a moment to land before asserting visibility.
	time.Sleep(10 * time.Millisecond)

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestMissReturnsFalse(t *testing.T) {
	c, err := NewInferenceCache(1<<20, 82)
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get(Key{StoneHash: 999})
	assert.False(t, ok)
}

func TestDistinctKeysForOpponentPassedBit(t *testing.T) {
	base := Key{StoneHash: 7, Ko: board.InvalidCoord, ToPlay: board.White}
	withPass := base
	withPass.OpponentPassed = true
	assert.NotEqual(t, base, withPass, "the cache key, not StoneHash, must carry the opponent-passed bit")
}

func TestLogIsNonEmpty(t *testing.T) {
	c, err := NewInferenceCache(1<<20, 82)
	require.NoError(t, err)
	defer c.Close()
	assert.Contains(t, c.Log(), "inference cache sized for")
}
