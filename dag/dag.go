// Package dag implements the Merkle DAG: a node set delegated to a Store,
// a root-frontier set the DAG exclusively owns, and the operations that
// enforce the add-node invariants and compare ancestry across the graph.
//
// This is a generalization of the teacher's runtimes/google/vsync dag.go,
// which tracked per-object version history with heads/graft for conflict
// resolution. Here there is one DAG-wide frontier (no per-object
// partitioning, no pruning, no conflict resolver) because identity is
// content-derived rather than assigned by a separate Store layer.
package dag

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/merkleforge/merkledag/hash"
	"github.com/merkleforge/merkledag/node"
	"github.com/merkleforge/merkledag/store"
)

// ErrCorruptDAG is returned when ancestry traversal encounters a
// dependency id that invariant I2 guarantees should be present but isn't.
// It indicates store corruption, not caller error, and is always returned
// rather than panicked across a package boundary.
var ErrCorruptDAG = errors.New("merkledag: corrupt DAG: dependency referenced but not stored")

// NodeCompare is the result of comparing two node ids in a DAG.
type NodeCompare int

const (
	// Equivalent means the two ids are identical.
	Equivalent NodeCompare = iota
	// Before means the left id is an ancestor of the right id.
	Before
	// After means the right id is an ancestor of the left id.
	After
	// Uncomparable means neither id is an ancestor of the other.
	Uncomparable
)

func (c NodeCompare) String() string {
	switch c {
	case Equivalent:
		return "Equivalent"
	case Before:
		return "Before"
	case After:
		return "After"
	default:
		return "Uncomparable"
	}
}

// Merkle is a content-addressed Merkle DAG over a pluggable Store. It
// maintains the current root frontier and enforces that every add
// preserves invariants I1–I4 from the specification.
type Merkle struct {
	mu      sync.Mutex // guards roots; AddNode and Rebuild are its only mutators
	roots   map[string]struct{}
	nodes   store.Store
	factory hash.Factory
	log     *zap.SugaredLogger
}

// Option configures a Merkle DAG at construction time.
type Option func(*Merkle)

// WithLogger attaches a structured logger; without it, log calls are
// discarded.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(m *Merkle) { m.log = l }
}

// New constructs an empty Merkle DAG over the given Store, using factory
// to build a fresh hash.Writer for every add_node call. A Merkle DAG
// instance is tied to whatever algorithm factory produces: comparing ids
// computed by two different factories is meaningless, and this package
// does not guard against it, the same way the source project ties a DAG
// to one HashWriter implementation.
func New(nodes store.Store, factory hash.Factory, opts ...Option) *Merkle {
	m := &Merkle{
		roots:   make(map[string]struct{}),
		nodes:   nodes,
		factory: factory,
		log:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func idKey(id []byte) string { return hex.EncodeToString(id) }

// Rebuild recomputes the root frontier from a full listing of the nodes
// currently in the store, for a Merkle DAG constructed over a
// store.Enumerable-backed Store that outlives a single process (bolt,
// sqlite): the frontier is derived state and is never itself persisted,
// so a freshly-constructed Merkle over a non-empty store has no roots
// until this is called once, before any AddNode. A node is a root iff no
// other node in the listing names it as a dependency.
func (m *Merkle) Rebuild(nodes []*node.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roots := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		roots[idKey(n.ID())] = struct{}{}
	}
	for _, n := range nodes {
		for _, dep := range n.DependencyIDs() {
			delete(roots, idKey(dep))
		}
	}
	m.roots = roots
}

// AddNode builds a candidate node from item and dependencyIDs and adds it
// to the DAG. It is idempotent: re-adding the same (item, dependencyIDs)
// pair is a no-op that returns the same id. Returns store.ErrNoSuchDependents
// if any dependency id is not already present; no partial state is left
// behind in that case.
func (m *Merkle) AddNode(item node.ByteEncoder, dependencyIDs [][]byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidate := node.New(item, dependencyIDs, m.factory)
	id := candidate.ID()

	exists, err := m.nodes.Contains(id)
	if err != nil {
		return nil, err
	}
	if exists {
		m.log.Debugw("add_node: already present, no-op", "id", hex.EncodeToString(id))
		return id, nil
	}

	removals := make([][]byte, 0, len(dependencyIDs))
	for _, dep := range dependencyIDs {
		ok, err := m.nodes.Contains(dep)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, store.ErrNoSuchDependents
		}
		if _, isRoot := m.roots[idKey(dep)]; isRoot {
			removals = append(removals, dep)
		}
	}

	if err := m.nodes.Put(candidate); err != nil {
		// roots is untouched: the removal list above was only scratch
		// state, never applied, so a failed store write leaves the DAG
		// exactly as it was.
		return nil, err
	}

	for _, dep := range removals {
		delete(m.roots, idKey(dep))
	}
	m.roots[idKey(id)] = struct{}{}

	m.log.Debugw("add_node: added", "id", hex.EncodeToString(id), "deps", len(dependencyIDs))
	return id, nil
}

// CheckForNode reports whether id is present in the DAG.
func (m *Merkle) CheckForNode(id []byte) (bool, error) {
	return m.nodes.Contains(id)
}

// GetNodeByID fetches the node stored under id, or nil if absent.
func (m *Merkle) GetNodeByID(id []byte) (*node.Node, error) {
	return m.nodes.Get(id)
}

// GetRoots returns the current root frontier: ids in the DAG that no other
// node depends on. The returned slice is a snapshot copy; mutating it does
// not affect the DAG.
func (m *Merkle) GetRoots() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, 0, len(m.roots))
	for k := range m.roots {
		id, err := hex.DecodeString(k)
		if err != nil {
			// keys are only ever produced by idKey, which always hex-encodes
			continue
		}
		out = append(out, id)
	}
	return out
}

// Compare determines the ancestry relationship between two ids already
// known to (or absent from) the DAG:
//
//	left == right                -> Equivalent
//	left is an ancestor of right  -> Before
//	right is an ancestor of left  -> After
//	neither is an ancestor        -> Uncomparable
func (m *Merkle) Compare(left, right []byte) (NodeCompare, error) {
	if bytes.Equal(left, right) {
		return Equivalent, nil
	}
	before, err := m.searchGraph(right, left)
	if err != nil {
		return Uncomparable, err
	}
	if before {
		return Before, nil
	}
	after, err := m.searchGraph(left, right)
	if err != nil {
		return Uncomparable, err
	}
	if after {
		return After, nil
	}
	return Uncomparable, nil
}

// searchGraph is a DFS from rootID following dependency edges, looking for
// searchID. It short-circuits true on first match, and returns false
// (not an error) if rootID itself is absent from the store — an absent
// starting point simply has no ancestors. A dependency id encountered
// mid-traversal that is absent, however, violates invariant I2 and is
// reported as ErrCorruptDAG; that should never happen.
func (m *Merkle) searchGraph(rootID, searchID []byte) (bool, error) {
	if bytes.Equal(rootID, searchID) {
		return true, nil
	}
	root, err := m.nodes.Get(rootID)
	if err != nil {
		return false, err
	}
	if root == nil {
		return false, nil
	}

	stack := []*node.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range n.DependencyIDs() {
			if bytes.Equal(dep, searchID) {
				return true, nil
			}
			depNode, err := m.nodes.Get(dep)
			if err != nil {
				return false, err
			}
			if depNode == nil {
				m.log.Errorw("invalid DAG state encountered", "missing_dependency", hex.EncodeToString(dep))
				return false, fmt.Errorf("%w: %x", ErrCorruptDAG, dep)
			}
			stack = append(stack, depNode)
		}
	}
	return false, nil
}
