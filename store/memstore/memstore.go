// Package memstore is the simplest possible Store: an in-memory mapping
// from node id to node, the Go analogue of the source project's
// BTreeMap<Vec<u8>, Node> impl.
package memstore

import (
	"encoding/hex"
	"sync"

	"github.com/merkleforge/merkledag/node"
)

// Store is a goroutine-safe in-memory Store implementation.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]*node.Node
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{nodes: make(map[string]*node.Node)}
}

func key(id []byte) string {
	return hex.EncodeToString(id)
}

// Contains implements store.Store.
func (s *Store) Contains(id []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[key(id)]
	return ok, nil
}

// Get implements store.Store.
func (s *Store) Get(id []byte) (*node.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[key(id)]
	if !ok {
		return nil, nil
	}
	return n, nil
}

// Put implements store.Store.
func (s *Store) Put(n *node.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[key(n.ID())] = n
	return nil
}

// Len reports the number of stored nodes, useful for tests asserting
// |nodes| is unchanged across idempotent adds (spec property P4).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// All implements store.Enumerable.
func (s *Store) All() ([]*node.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*node.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	return out, nil
}
