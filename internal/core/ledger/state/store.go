// Package state persists ledger entries in a key-value database and serves
// them to the transaction engine.
package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/LeJamon/goEscrowd/internal/core/ledger/keylet"
	"github.com/LeJamon/goEscrowd/internal/core/tx"
	"github.com/LeJamon/goEscrowd/internal/storage/database"
)

// Store implements tx.LedgerView and tx.BatchWriter over a database.DB.
// Keys are keylet keys and values are serialized entries.
type Store struct {
	db    database.DB
	cache *entryCache
}

// New creates a Store over db with an LRU of cacheEntries entries.
func New(db database.DB, cacheEntries int) (*Store, error) {
	cache, err := newEntryCache(cacheEntries)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// Read returns the entry at k, or nil if there is none.
func (s *Store) Read(k keylet.Keylet) ([]byte, error) {
	if data, ok := s.cache.get(k.Key); ok {
		return data, nil
	}

	data, err := s.db.Read(context.Background(), k.Key[:])
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state entry: %w", err)
	}

	s.cache.put(k.Key, data)
	return data, nil
}

// Exists checks if an entry exists
func (s *Store) Exists(k keylet.Keylet) (bool, error) {
	data, err := s.Read(k)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

// Insert adds a new entry
func (s *Store) Insert(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return tx.ErrEntryExists
	}
	return s.WriteBatch([]tx.Change{{Key: k.Key, Data: data}})
}

// Update modifies an existing entry
func (s *Store) Update(k keylet.Keylet, data []byte) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return tx.ErrEntryNotFound
	}
	return s.WriteBatch([]tx.Change{{Key: k.Key, Data: data}})
}

// Erase removes an entry
func (s *Store) Erase(k keylet.Keylet) error {
	exists, err := s.Exists(k)
	if err != nil {
		return err
	}
	if !exists {
		return tx.ErrEntryNotFound
	}
	return s.WriteBatch([]tx.Change{{Key: k.Key, Delete: true}})
}

// WriteBatch commits changes in a single database batch. The cache is
// only touched once the batch is durable.
func (s *Store) WriteBatch(changes []tx.Change) error {
	ops := make([]database.BatchOperation, 0, len(changes))
	for _, c := range changes {
		key := c.Key
		if c.Delete {
			ops = append(ops, database.BatchOperation{Type: database.BatchDelete, Key: key[:]})
			continue
		}
		ops = append(ops, database.BatchOperation{Type: database.BatchPut, Key: key[:], Value: c.Data})
	}

	if err := s.db.Batch(context.Background(), ops); err != nil {
		// The cache may now disagree with the database for these keys
		for _, c := range changes {
			s.cache.remove(c.Key)
		}
		return fmt.Errorf("writing state batch: %w", err)
	}

	for _, c := range changes {
		if c.Delete {
			s.cache.remove(c.Key)
			continue
		}
		s.cache.put(c.Key, c.Data)
	}
	return nil
}

// ForEach iterates over all state entries in key order
func (s *Store) ForEach(fn func(key [32]byte, data []byte) bool) error {
	it, err := s.db.Iterator(context.Background(), nil, nil)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		var key [32]byte
		if len(it.Key()) != len(key) {
			continue
		}
		copy(key[:], it.Key())
		if !fn(key, it.Value()) {
			break
		}
	}
	return it.Error()
}

// CacheStats reports the read cache's effectiveness
func (s *Store) CacheStats() CacheStats {
	return s.cache.stats()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
