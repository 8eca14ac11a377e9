// Package recordstore persists self-play training examples to disk between
// runs, keyed by content hash, so a separate process can resample them
// later (spec §6's "record sampler" executable). Grounded on
// hailam-chessplay/internal/storage/storage.go (BadgerDB-backed JSON
// blobs behind a small Store wrapper); xxhash replaces that example's
// fixed string keys since records here are content-addressed.
package recordstore

import (
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/sousei-go/ishi/engine"
	"github.com/sousei-go/ishi/randutil"
)

const keyPrefix = "example:"

// Store wraps a BadgerDB directory holding engine.Example records.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database rooted at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.WithMessage(err, "recordstore: open")
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put content-addresses ex by the xxhash of its JSON encoding and stores
// it, so replaying the same self-play game twice is naturally idempotent.
func (s *Store) Put(ex engine.Example) error {
	data, err := json.Marshal(ex)
	if err != nil {
		return errors.WithStack(err)
	}
	key := recordKey(data)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// PutAll stores every example in exs.
func (s *Store) PutAll(exs []engine.Example) error {
	for _, ex := range exs {
		if err := s.Put(ex); err != nil {
			return err
		}
	}
	return nil
}

// Count returns how many distinct examples are stored.
func (s *Store) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Sample draws n examples uniformly at random (without replacement) from
// the store, the resampling step spec §6's record sampler exists for.
func (s *Store) Sample(n int, rng *randutil.PCG32) ([]engine.Example, error) {
	var all []engine.Example
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var ex engine.Example
				if err := json.Unmarshal(val, &ex); err != nil {
					return err
				}
				all = append(all, ex)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	if n > len(all) {
		n = len(all)
	}
	return all[:n], nil
}

func recordKey(data []byte) []byte {
	h := xxhash.Sum64(data)
	return []byte(keyPrefix + strconv.FormatUint(h, 16))
}
