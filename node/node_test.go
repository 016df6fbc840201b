package node

import (
	"bytes"
	"testing"
	"testing/quick"

	"github.com/merkleforge/merkledag/hash"
)

func factory() hash.Factory {
	return hash.NewXXHashWriter
}

// TestLeafIDEqualsItemID covers spec property: for leaf nodes, id == item_id.
func TestLeafIDEqualsItemID(t *testing.T) {
	n := New(Bytes("quax"), nil, factory())
	if !bytes.Equal(n.ID(), n.ItemID()) {
		t.Fatalf("leaf node id %x != item id %x", n.ID(), n.ItemID())
	}
}

// TestConstructionDeterministic is property P1: two independent
// constructions from the same inputs produce equal id and item id.
func TestConstructionDeterministic(t *testing.T) {
	deps := [][]byte{{1, 2, 3}, {9, 9}}
	a := New(Bytes("payload"), deps, factory())
	b := New(Bytes("payload"), deps, factory())
	if !bytes.Equal(a.ID(), b.ID()) {
		t.Fatalf("ids differ: %x vs %x", a.ID(), b.ID())
	}
	if !bytes.Equal(a.ItemID(), b.ItemID()) {
		t.Fatalf("item ids differ: %x vs %x", a.ItemID(), b.ItemID())
	}
}

// TestPermutationInvariant is property P2: permuting the dependency set
// does not change the resulting id.
func TestPermutationInvariant(t *testing.T) {
	d1 := [][]byte{{1}, {2}, {3}}
	d2 := [][]byte{{3}, {1}, {2}}
	d3 := [][]byte{{2}, {3}, {1}}

	a := New(Bytes("foo"), d1, factory())
	b := New(Bytes("foo"), d2, factory())
	c := New(Bytes("foo"), d3, factory())

	if !bytes.Equal(a.ID(), b.ID()) || !bytes.Equal(b.ID(), c.ID()) {
		t.Fatalf("permutation changed id: %x, %x, %x", a.ID(), b.ID(), c.ID())
	}
}

// TestQuickConstructionDeterministic reruns P1 via testing/quick across
// randomized payloads and dependency sets, the stdlib analogue of the
// source project's proptest.rs coverage.
func TestQuickConstructionDeterministic(t *testing.T) {
	f := func(item []byte, deps [][]byte) bool {
		a := New(Bytes(item), deps, factory())
		b := New(Bytes(item), deps, factory())
		return bytes.Equal(a.ID(), b.ID()) && bytes.Equal(a.ItemID(), b.ItemID())
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestEqualByID(t *testing.T) {
	a := New(Bytes("x"), nil, factory())
	b := New(Bytes("x"), nil, factory())
	c := New(Bytes("y"), nil, factory())
	if !a.Equal(b) {
		t.Fatalf("expected equal nodes")
	}
	if a.Equal(c) {
		t.Fatalf("expected distinct nodes")
	}
}

func TestIsLeaf(t *testing.T) {
	leaf := New(Bytes("l"), nil, factory())
	if !leaf.IsLeaf() {
		t.Fatalf("expected leaf")
	}
	parent := New(Bytes("p"), [][]byte{leaf.ID()}, factory())
	if parent.IsLeaf() {
		t.Fatalf("expected non-leaf")
	}
}

func TestString(t *testing.T) {
	n := New(Bytes("hello"), nil, factory())
	s := n.String()
	if s == "" {
		t.Fatalf("expected non-empty string")
	}
}
