package dag

import (
	"bytes"
	"errors"
	"testing"

	"github.com/merkleforge/merkledag/hash"
	"github.com/merkleforge/merkledag/node"
	"github.com/merkleforge/merkledag/store"
	"github.com/merkleforge/merkledag/store/memstore"
)

func newTestDAG() *Merkle {
	return New(memstore.New(), hash.NewXXHashWriter)
}

func idsEqual(a, b []byte) bool { return bytes.Equal(a, b) }

func containsID(ids [][]byte, target []byte) bool {
	for _, id := range ids {
		if idsEqual(id, target) {
			return true
		}
	}
	return false
}

// Scenario 1: leaf.
func TestLeaf(t *testing.T) {
	d := newTestDAG()
	id, err := d.AddNode(node.Bytes("quax"), nil)
	if err != nil {
		t.Fatalf("add_node: %v", err)
	}
	roots := d.GetRoots()
	if len(roots) != 1 || !idsEqual(roots[0], id) {
		t.Fatalf("expected roots={%x}, got %v", id, roots)
	}
	n, err := d.GetNodeByID(id)
	if err != nil || n == nil {
		t.Fatalf("get_node_by_id: %v, %v", n, err)
	}
	if !bytes.Equal(n.Item(), []byte("quax")) {
		t.Fatalf("expected item quax, got %q", n.Item())
	}
}

// Scenario 2: root replacement.
func TestRootReplacement(t *testing.T) {
	d := newTestDAG()
	q, err := d.AddNode(node.Bytes("quax"), nil)
	if err != nil {
		t.Fatalf("add quax: %v", err)
	}
	u, err := d.AddNode(node.Bytes("quux"), [][]byte{q})
	if err != nil {
		t.Fatalf("add quux: %v", err)
	}
	roots := d.GetRoots()
	if len(roots) != 1 || !idsEqual(roots[0], u) {
		t.Fatalf("expected roots={%x}, got %v", u, roots)
	}
	if containsID(roots, q) {
		t.Fatalf("expected quax's id to have left the root frontier")
	}
	n, err := d.GetNodeByID(u)
	if err != nil || n == nil {
		t.Fatalf("get_node_by_id: %v, %v", n, err)
	}
	if len(n.DependencyIDs()) != 1 || !idsEqual(n.DependencyIDs()[0], q) {
		t.Fatalf("expected quux to depend on quax's id")
	}
}

// Scenario 3: missing dependency.
func TestMissingDependency(t *testing.T) {
	missing := node.New(node.Bytes("missing"), nil, hash.NewXXHashWriter)

	d := newTestDAG()
	_, err := d.AddNode(node.Bytes("foo"), [][]byte{missing.ID()})
	if !errors.Is(err, store.ErrNoSuchDependents) {
		t.Fatalf("expected ErrNoSuchDependents, got %v", err)
	}
	if len(d.GetRoots()) != 0 {
		t.Fatalf("expected no roots after failed add")
	}
}

// Scenario 4: idempotence under dependency-order churn.
func TestIdempotenceUnderDependencyOrderChurn(t *testing.T) {
	d := newTestDAG()
	a, _ := d.AddNode(node.Bytes("A"), nil)
	b, _ := d.AddNode(node.Bytes("B"), nil)
	c, _ := d.AddNode(node.Bytes("C"), nil)

	orders := [][][]byte{
		{a, b, c},
		{c, a, b},
		{b, c, a},
	}

	var firstID []byte
	var nodeCount, rootCount int
	for i, order := range orders {
		id, err := d.AddNode(node.Bytes("foo"), order)
		if err != nil {
			t.Fatalf("add order %d: %v", i, err)
		}
		if i == 0 {
			firstID = id
			nodeCount = memstoreLen(t, d)
			rootCount = len(d.GetRoots())
			continue
		}
		if !idsEqual(id, firstID) {
			t.Fatalf("order %d produced different id: %x vs %x", i, id, firstID)
		}
		if got := memstoreLen(t, d); got != nodeCount {
			t.Fatalf("order %d changed node count: %d vs %d", i, got, nodeCount)
		}
		if got := len(d.GetRoots()); got != rootCount {
			t.Fatalf("order %d changed root count: %d vs %d", i, got, rootCount)
		}
	}
}

func memstoreLen(t *testing.T, d *Merkle) int {
	t.Helper()
	ms, ok := d.nodes.(*memstore.Store)
	if !ok {
		t.Fatalf("expected memstore-backed DAG")
	}
	return ms.Len()
}

// Scenario 5: ancestry chain.
func TestAncestryChain(t *testing.T) {
	d := newTestDAG()
	a, _ := d.AddNode(node.Bytes("A"), nil)
	b, _ := d.AddNode(node.Bytes("B"), [][]byte{a})
	c, _ := d.AddNode(node.Bytes("C"), [][]byte{b})

	cases := []struct {
		left, right []byte
		want        NodeCompare
	}{
		{a, b, Before},
		{a, c, Before},
		{b, a, After},
		{a, a, Equivalent},
	}
	for _, tc := range cases {
		got, err := d.Compare(tc.left, tc.right)
		if err != nil {
			t.Fatalf("compare: %v", err)
		}
		if got != tc.want {
			t.Fatalf("compare(%x,%x) = %v, want %v", tc.left, tc.right, got, tc.want)
		}
	}
}

// Property P6: any two distinct roots are Uncomparable.
func TestDistinctRootsUncomparable(t *testing.T) {
	d := newTestDAG()
	a, _ := d.AddNode(node.Bytes("A"), nil)
	b, _ := d.AddNode(node.Bytes("B"), nil)

	got, err := d.Compare(a, b)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if got != Uncomparable {
		t.Fatalf("expected Uncomparable, got %v", got)
	}
}

// Property P7: for every non-root n, some root r has Compare(r, n) == After.
func TestNonRootHasAncestorRoot(t *testing.T) {
	d := newTestDAG()
	a, _ := d.AddNode(node.Bytes("A"), nil)
	_, _ = d.AddNode(node.Bytes("B"), [][]byte{a})

	found := false
	for _, r := range d.GetRoots() {
		cmp, err := d.Compare(r, a)
		if err != nil {
			t.Fatalf("compare: %v", err)
		}
		if cmp == After {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected some root r with Compare(r, a) == After")
	}
}

// Property P3: roots ⊆ nodes, and no root id appears in any dependency set.
func TestRootsInvariant(t *testing.T) {
	d := newTestDAG()
	a, _ := d.AddNode(node.Bytes("A"), nil)
	_, _ = d.AddNode(node.Bytes("B"), [][]byte{a})
	c, _ := d.AddNode(node.Bytes("C"), nil)

	for _, r := range d.GetRoots() {
		ok, err := d.CheckForNode(r)
		if err != nil || !ok {
			t.Fatalf("root %x not present in nodes", r)
		}
	}
	// a is no longer a root since b depends on it.
	if containsID(d.GetRoots(), a) {
		t.Fatalf("expected a to have left the roots")
	}
	if !containsID(d.GetRoots(), c) {
		t.Fatalf("expected c (no dependents) to remain a root")
	}
}

func TestCheckForNode(t *testing.T) {
	d := newTestDAG()
	a, _ := d.AddNode(node.Bytes("A"), nil)
	ok, err := d.CheckForNode(a)
	if err != nil || !ok {
		t.Fatalf("expected present")
	}
	ok, err = d.CheckForNode([]byte{0, 0, 0})
	if err != nil || ok {
		t.Fatalf("expected absent")
	}
}

func TestStats(t *testing.T) {
	d := newTestDAG()
	a, _ := d.AddNode(node.Bytes("A"), nil)
	_, _ = d.AddNode(node.Bytes("B"), [][]byte{a})
	if got := d.Stats().RootCount; got != 1 {
		t.Fatalf("expected 1 root, got %d", got)
	}
}

// Rebuild must reproduce the frontier a sequence of AddNode calls would
// have produced, as if the DAG had been reopened against an already
// populated store.
func TestRebuildMatchesIncrementalFrontier(t *testing.T) {
	st := memstore.New()
	live := New(st, hash.NewXXHashWriter)

	a, _ := live.AddNode(node.Bytes("A"), nil)
	b, _ := live.AddNode(node.Bytes("B"), nil)
	c, _ := live.AddNode(node.Bytes("C"), [][]byte{a, b})

	all, err := st.All()
	if err != nil {
		t.Fatalf("all: %v", err)
	}

	reopened := New(st, hash.NewXXHashWriter)
	reopened.Rebuild(all)

	roots := reopened.GetRoots()
	if len(roots) != 1 || !idsEqual(roots[0], c) {
		t.Fatalf("expected sole root %x, got %x", c, roots)
	}
	if containsID(roots, a) || containsID(roots, b) {
		t.Fatalf("rebuilt frontier should not contain consumed dependencies")
	}
}

var _ store.Enumerable = (*memstore.Store)(nil)
