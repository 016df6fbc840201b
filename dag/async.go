package dag

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/merkleforge/merkledag/hash"
	"github.com/merkleforge/merkledag/node"
	"github.com/merkleforge/merkledag/store"
)

// AsyncMerkle is the suspension-aware counterpart to Merkle: every
// operation takes a context.Context and is backed by a store.AsyncStore,
// for callers whose Store implementation suspends on network or disk I/O.
// It enforces the same invariants as Merkle over the same root-frontier
// model; the only difference is the effect shape of each Store call. The
// core defines no cancellation semantics beyond propagating ctx.Err(), per
// spec.md §5.
type AsyncMerkle struct {
	mu      sync.Mutex
	roots   map[string]struct{}
	nodes   store.AsyncStore
	factory hash.Factory
	log     *zap.SugaredLogger
}

// AsyncOption configures an AsyncMerkle DAG at construction time.
type AsyncOption func(*AsyncMerkle)

// WithAsyncLogger attaches a structured logger; without it, log calls are
// discarded.
func WithAsyncLogger(l *zap.SugaredLogger) AsyncOption {
	return func(m *AsyncMerkle) { m.log = l }
}

// NewAsync constructs an empty AsyncMerkle DAG over the given AsyncStore.
func NewAsync(nodes store.AsyncStore, factory hash.Factory, opts ...AsyncOption) *AsyncMerkle {
	m := &AsyncMerkle{
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

// AddNodeCtx is the context-aware form of Merkle.AddNode.
func (m *AsyncMerkle) AddNodeCtx(ctx context.Context, item node.ByteEncoder, dependencyIDs [][]byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	candidate := node.New(item, dependencyIDs, m.factory)
	id := candidate.ID()

	exists, err := m.nodes.Contains(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return id, nil
	}

	removals := make([][]byte, 0, len(dependencyIDs))
	for _, dep := range dependencyIDs {
		ok, err := m.nodes.Contains(ctx, dep)
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

	if err := m.nodes.Put(ctx, candidate); err != nil {
		return nil, err
	}

	for _, dep := range removals {
		delete(m.roots, idKey(dep))
	}
	m.roots[idKey(id)] = struct{}{}
	return id, nil
}

// CheckForNodeCtx is the context-aware form of Merkle.CheckForNode.
func (m *AsyncMerkle) CheckForNodeCtx(ctx context.Context, id []byte) (bool, error) {
	return m.nodes.Contains(ctx, id)
}

// GetNodeByIDCtx is the context-aware form of Merkle.GetNodeByID.
func (m *AsyncMerkle) GetNodeByIDCtx(ctx context.Context, id []byte) (*node.Node, error) {
	return m.nodes.Get(ctx, id)
}

// GetRoots returns a snapshot of the current root frontier.
func (m *AsyncMerkle) GetRoots() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, 0, len(m.roots))
	for k := range m.roots {
		id, err := hex.DecodeString(k)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

// CompareCtx is the context-aware form of Merkle.Compare.
func (m *AsyncMerkle) CompareCtx(ctx context.Context, left, right []byte) (NodeCompare, error) {
	if bytes.Equal(left, right) {
		return Equivalent, nil
	}
	before, err := m.searchGraphCtx(ctx, right, left)
	if err != nil {
		return Uncomparable, err
	}
	if before {
		return Before, nil
	}
	after, err := m.searchGraphCtx(ctx, left, right)
	if err != nil {
		return Uncomparable, err
	}
	if after {
		return After, nil
	}
	return Uncomparable, nil
}

func (m *AsyncMerkle) searchGraphCtx(ctx context.Context, rootID, searchID []byte) (bool, error) {
	if bytes.Equal(rootID, searchID) {
		return true, nil
	}
	root, err := m.nodes.Get(ctx, rootID)
	if err != nil {
		return false, err
	}
	if root == nil {
		return false, nil
	}

	stack := []*node.Node{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range n.DependencyIDs() {
			if bytes.Equal(dep, searchID) {
				return true, nil
			}
			depNode, err := m.nodes.Get(ctx, dep)
			if err != nil {
				return false, err
			}
			if depNode == nil {
				return false, fmt.Errorf("%w: %x", ErrCorruptDAG, dep)
			}
			stack = append(stack, depNode)
		}
	}
	return false, nil
}
