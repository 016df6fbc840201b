// Package node implements the identity rule for Merkle DAG nodes: an
// immutable record binding a payload to the set of node ids it depends on,
// with two ids derived deterministically from those inputs alone.
package node

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/merkleforge/merkledag/hash"
)

// ByteEncoder is the contract a payload type must satisfy to be hashed:
// a deterministic byte view. Equal payloads must produce equal byte
// sequences, or ids will not converge across replicas.
type ByteEncoder interface {
	Bytes() []byte
}

// Bytes is the simplest ByteEncoder: raw bytes hash as themselves.
type Bytes []byte

// Bytes implements ByteEncoder.
func (b Bytes) Bytes() []byte { return b }

// Node is an immutable, content-addressed record. It is never mutated after
// construction; two Nodes built from equal inputs are equal under Equal and
// carry equal Item and DependencyIDs.
type Node struct {
	item           []byte
	dependencyIDs  [][]byte
	itemID         []byte
	id             []byte
}

// New builds a Node from item and dependencyIDs, computing ItemID and ID
// per the identity rule:
//
//  1. record item's bytes into a fresh Writer; capture ItemID.
//  2. sort dependencyIDs by ascending lexicographic byte order.
//  3. record each sorted dependency id into the same Writer (without
//     resetting it); capture ID.
//
// Sorting makes ID invariant under permutation of dependencyIDs, so two
// replicas that independently add the same content with the same
// dependency set converge on the same id. An empty dependencyIDs set
// makes ID equal to ItemID, since step 3 records no further bytes and
// Digest is idempotent across zero additional input.
func New(item ByteEncoder, dependencyIDs [][]byte, factory hash.Factory) *Node {
	w := factory()
	w.Record(item.Bytes())
	itemID := append([]byte(nil), w.Digest()...)

	sorted := sortedCopy(dependencyIDs)
	for _, d := range sorted {
		w.Record(d)
	}
	id := append([]byte(nil), w.Digest()...)

	return &Node{
		item:          append([]byte(nil), item.Bytes()...),
		dependencyIDs: sorted,
		itemID:        itemID,
		id:            id,
	}
}

// newWithIDs reconstructs a Node whose ID and ItemID are already known,
// used only by the codec after it recomputes both from the decoded inputs.
// It never trusts a caller-supplied id without recomputation; see codec.go.
func newWithIDs(item []byte, dependencyIDs [][]byte, itemID, id []byte) *Node {
	return &Node{
		item:          item,
		dependencyIDs: dependencyIDs,
		itemID:        itemID,
		id:            id,
	}
}

func sortedCopy(ids [][]byte) [][]byte {
	out := make([][]byte, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i], out[j]) < 0
	})
	return out
}

// ID returns the node's full identity: a digest over item bytes followed by
// the sorted dependency ids.
func (n *Node) ID() []byte { return n.id }

// ItemID returns the digest of the item bytes alone. For a leaf node (no
// dependencies) ItemID and ID are equal.
func (n *Node) ItemID() []byte { return n.itemID }

// Item returns the raw payload bytes.
func (n *Node) Item() []byte { return n.item }

// DependencyIDs returns the sorted set of dependency ids this node declares.
// An empty slice means the node is a leaf.
func (n *Node) DependencyIDs() [][]byte { return n.dependencyIDs }

// IsLeaf reports whether the node has no dependencies.
func (n *Node) IsLeaf() bool { return len(n.dependencyIDs) == 0 }

// Equal compares two nodes by id, which is equivalent to comparing their
// constructor inputs under the content-addressing law.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return bytes.Equal(n.id, other.id)
}

// String renders a short, debug-friendly summary: hex id, hex item id, and
// a truncated preview of the item bytes. Not used for hashing or equality.
func (n *Node) String() string {
	preview := n.item
	if len(preview) > 16 {
		preview = preview[:16]
	}
	return fmt.Sprintf("Node{id=%s item_id=%s deps=%d item=%q}",
		hex.EncodeToString(n.id), hex.EncodeToString(n.itemID), len(n.dependencyIDs), preview)
}
