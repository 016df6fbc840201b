// Package cachestore wraps a store.Store with a bounded LRU read cache.
// The spec's core contract only requires a presence probe, fetch, and
// insert; for a disk- or network-backed adapter (boltstore, sqlstore) each
// of those pays real I/O, and find_next_non_descendant_nodes (spec.md
// §4.5) calls Get once per visited node per traversal. This is a
// supplement beyond the minimal spec, motivated by the source project's
// leveldb and rocksdb adapters which have no such cache of their own.
package cachestore

import (
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/merkleforge/merkledag/node"
	"github.com/merkleforge/merkledag/store"
)

// Store decorates another store.Store with a fixed-size LRU cache of
// decoded nodes, keyed by hex-encoded id.
type Store struct {
	inner store.Store
	cache *lru.Cache[string, *node.Node]
}

// New wraps inner with an LRU cache holding up to size entries. Nodes are
// immutable once stored, so the cache never needs invalidation beyond
// ordinary eviction.
func New(inner store.Store, size int) (*Store, error) {
	c, err := lru.New[string, *node.Node](size)
	if err != nil {
		return nil, store.NewStoreFailure("constructing cachestore", err)
	}
	return &Store{inner: inner, cache: c}, nil
}

func key(id []byte) string { return hex.EncodeToString(id) }

// Contains implements store.Store, serving from cache when possible.
func (s *Store) Contains(id []byte) (bool, error) {
	if _, ok := s.cache.Get(key(id)); ok {
		return true, nil
	}
	return s.inner.Contains(id)
}

// Get implements store.Store, populating the cache on a miss.
func (s *Store) Get(id []byte) (*node.Node, error) {
	if n, ok := s.cache.Get(key(id)); ok {
		return n, nil
	}
	n, err := s.inner.Get(id)
	if err != nil || n == nil {
		return n, err
	}
	s.cache.Add(key(id), n)
	return n, nil
}

// Put implements store.Store, writing through to the backing store and
// warming the cache with the just-stored node.
func (s *Store) Put(n *node.Node) error {
	if err := s.inner.Put(n); err != nil {
		return err
	}
	s.cache.Add(key(n.ID()), n)
	return nil
}
