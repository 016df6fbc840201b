package dag

import (
	"container/list"
	"encoding/hex"
	"fmt"

	"github.com/merkleforge/merkledag/node"
)

// FindNextNonDescendantNodes computes the next frontier of nodes in this
// DAG that a replica claiming searchSet as its current roots is missing.
// It walks from this DAG's roots down through dependency edges, stopping
// at the first dependency found in searchSet (that dependency is already
// known to the other side, so the current node is a direct parent of
// something they have) or at a leaf (the other side has nothing on that
// chain at all).
//
// If searchSet is empty, the result is every leaf node — what a fresh
// replica needs first. If searchSet contains ids this DAG has never seen,
// they simply never match and traversal proceeds as though absent.
//
// A node reachable via multiple paths may be visited more than once; the
// result set dedupes by id, so output order is unspecified.
func (m *Merkle) FindNextNonDescendantNodes(searchSet [][]byte) ([]*node.Node, error) {
	search := make(map[string]struct{}, len(searchSet))
	for _, id := range searchSet {
		search[idKey(id)] = struct{}{}
	}

	stack := list.New()
	roots := m.GetRoots()
	rootKeys := make(map[string]struct{}, len(roots))
	for _, id := range roots {
		rootKeys[idKey(id)] = struct{}{}
		stack.PushBack(id)
	}

	hits := make(map[string]struct{})
	for stack.Len() > 0 {
		back := stack.Back()
		stack.Remove(back)
		id := back.Value.([]byte)

		if _, known := search[idKey(id)]; known {
			// The other side already has id and everything beneath it;
			// don't emit it and don't descend into its dependencies.
			continue
		}

		n, err := m.nodes.Get(id)
		if err != nil {
			return nil, err
		}
		if n == nil {
			if _, isRoot := rootKeys[idKey(id)]; isRoot {
				// A root id vanished from the store between GetRoots and Get;
				// nothing to do for it.
				continue
			}
			// A dependency named by a stored node is absent: invariant I2
			// is violated.
			return nil, fmt.Errorf("%w: %x", ErrCorruptDAG, id)
		}

		deps := n.DependencyIDs()
		if len(deps) == 0 {
			// Leaf: the traversal reached the base of a chain without
			// crossing the search set, so the other replica has nothing
			// on this chain. A leaf the other side already shares is still
			// emitted here (intentionally); Store.Put is idempotent by id,
			// so retransmitting it is safe.
			hits[idKey(id)] = struct{}{}
			continue
		}

		for _, dep := range deps {
			if _, known := search[idKey(dep)]; known {
				// The other side already has this dependency, so id is a
				// direct parent of something they know. Emit id and do not
				// descend through dep.
				hits[idKey(id)] = struct{}{}
				continue
			}
			stack.PushBack(dep)
		}
	}

	result := make([]*node.Node, 0, len(hits))
	for k := range hits {
		id, err := hex.DecodeString(k)
		if err != nil {
			continue
		}
		n, err := m.nodes.Get(id)
		if err != nil {
			return nil, err
		}
		if n != nil {
			result = append(result, n)
		}
	}
	return result, nil
}

// Missing is a lazy producer of the frontier of ancestors the other
// replica is missing, one layer at a time, driving a replication sync
// plan. Each call to Next marches current search set upward: the ids of
// the just-yielded batch become the search set for the following call,
// simulating the remote side having ingested them unless the caller
// externally supplies a different set via Advance.
type Missing struct {
	dag    *Merkle
	search [][]byte
}

// NewMissing builds a gap-fill iterator seeded with searchSet, typically
// the other replica's current root ids.
func NewMissing(m *Merkle, searchSet [][]byte) *Missing {
	return &Missing{dag: m, search: searchSet}
}

// Advance replaces the iterator's current search set, for callers driving
// it in lockstep with an actual transfer whose remote side reports back a
// different frontier than what was just sent.
func (it *Missing) Advance(searchSet [][]byte) {
	it.search = searchSet
}

// Next returns the next batch of missing nodes, or (nil, false, nil) when
// the search set has marched upward past every leaf — further queries
// would return empty, terminating the sequence. Each returned batch
// contains only ancestors of the previous search set, and the DAG is
// finite and acyclic, so strictly fewer ancestors remain after each call.
func (it *Missing) Next() ([]*node.Node, bool, error) {
	batch, err := it.dag.FindNextNonDescendantNodes(it.search)
	if err != nil {
		return nil, false, err
	}
	if len(batch) == 0 {
		return nil, false, nil
	}

	next := make([][]byte, len(batch))
	for i, n := range batch {
		next[i] = n.ID()
	}
	it.search = next

	return batch, true, nil
}
