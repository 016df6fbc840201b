package dag

import (
	"encoding/hex"

	"golang.org/x/sync/errgroup"

	"github.com/merkleforge/merkledag/node"
)

// BatchItem is one member of a batch passed to AddBatch.
type BatchItem struct {
	Item          node.ByteEncoder
	DependencyIDs [][]byte
}

// AddBatch ingests a batch of items that do not depend on each other
// within the batch — the caller is responsible for chunking by dependency
// depth, e.g. by sending each layer yielded from a Missing iterator as its
// own batch. Presence checks for all declared dependencies are fanned out
// concurrently; the actual inserts are applied serially under the DAG's
// single write lock to preserve the atomicity AddNode guarantees for each
// item individually.
//
// This is not in the core specification; it exists because a replication
// driver pulling a Missing batch naturally wants to ingest an entire
// yielded layer at once rather than one item at a time.
func (m *Merkle) AddBatch(items []BatchItem) ([][]byte, error) {
	g := new(errgroup.Group)
	for _, item := range items {
		item := item
		for _, dep := range item.DependencyIDs {
			dep := dep
			g.Go(func() error {
				ok, err := m.nodes.Contains(dep)
				if err != nil {
					return err
				}
				if !ok {
					return ErrMissingBatchDependency(dep)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([][]byte, len(items))
	for i, item := range items {
		id, err := m.AddNode(item.Item, item.DependencyIDs)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

// ErrMissingBatchDependency reports which dependency id a batch member
// referenced without it being present anywhere in the store, checked
// before any item in the batch is applied.
type ErrMissingBatchDependency []byte

func (e ErrMissingBatchDependency) Error() string {
	return "merkledag: batch dependency not found: " + hex.EncodeToString(e)
}

// DAGStats are read-only counters over a Merkle DAG.
type DAGStats struct {
	RootCount int
}

// Stats returns current counters, useful for the CLI's status output and
// for tests asserting root-count invariants without reaching into the
// Store directly.
func (m *Merkle) Stats() DAGStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return DAGStats{RootCount: len(m.roots)}
}
