package dag

import (
	"errors"
	"testing"

	"github.com/merkleforge/merkledag/node"
)

func TestAddBatchIngestsLayer(t *testing.T) {
	d := newTestDAG()
	a, _ := d.AddNode(node.Bytes("A"), nil)
	b, _ := d.AddNode(node.Bytes("B"), nil)

	ids, err := d.AddBatch([]BatchItem{
		{Item: node.Bytes("C"), DependencyIDs: [][]byte{a}},
		{Item: node.Bytes("D"), DependencyIDs: [][]byte{b}},
	})
	if err != nil {
		t.Fatalf("add_batch: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %d", len(ids))
	}
	for _, id := range ids {
		ok, err := d.CheckForNode(id)
		if err != nil || !ok {
			t.Fatalf("expected batch member present")
		}
	}
}

func TestAddBatchRejectsMissingDependency(t *testing.T) {
	d := newTestDAG()
	phantom := []byte{0xDE, 0xAD}

	_, err := d.AddBatch([]BatchItem{
		{Item: node.Bytes("C"), DependencyIDs: [][]byte{phantom}},
	})
	var missing ErrMissingBatchDependency
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingBatchDependency, got %v", err)
	}
}
