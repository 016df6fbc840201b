// Package store defines the persistence contract the Merkle DAG delegates
// to, and the error kinds that cross its boundary. Concrete adapters live
// in sibling packages (memstore, boltstore, sqlstore, cachestore).
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/merkleforge/merkledag/node"
)

// ErrNoSuchDependents is returned by a DAG's add operation when called
// with a dependency id the store does not contain. It carries no payload
// and is safe to compare with errors.Is.
var ErrNoSuchDependents = errors.New("merkledag: no such dependents")

// StoreFailure wraps a backend-specific fault from a presence, fetch, or
// insert operation. The description is free-form; callers needing backend
// detail should use errors.Unwrap.
type StoreFailure struct {
	Description string
	Err         error
}

func (e *StoreFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("merkledag: store failure: %s: %v", e.Description, e.Err)
	}
	return fmt.Sprintf("merkledag: store failure: %s", e.Description)
}

func (e *StoreFailure) Unwrap() error { return e.Err }

// NewStoreFailure builds a StoreFailure wrapping a lower-level error.
func NewStoreFailure(description string, err error) error {
	return &StoreFailure{Description: description, Err: err}
}

// Store is keyed persistence of Nodes by id: a presence probe, a fetch,
// and an insert. The DAG calls Contains before Put to guarantee it never
// calls Put twice for the same id, so implementations need not treat a
// duplicate insert specially beyond being a safe no-op.
//
// Implementations MUST be deterministic about presence: calling Put(n)
// followed by Contains(n.ID()) must return true.
type Store interface {
	// Contains reports whether id is present.
	Contains(id []byte) (bool, error)
	// Get fetches the node stored under id. A missing id is not an error;
	// it is reported by returning a nil *node.Node with a nil error.
	Get(id []byte) (*node.Node, error)
	// Put inserts n under n.ID(). Overwriting an identical key with an
	// identical node is a no-op.
	Put(n *node.Node) error
}

// AsyncStore is the suspension-aware counterpart to Store: every operation
// takes a context.Context and may block on network or disk I/O. The DAG
// package's *Ctx methods (AddNodeCtx, GetNodeByIDCtx, CompareCtx, ...)
// are written against this interface so a caller backed by a remote store
// can cancel or time out a call; the core itself defines no cancellation
// semantics beyond propagating ctx.Err().
type AsyncStore interface {
	Contains(ctx context.Context, id []byte) (bool, error)
	Get(ctx context.Context, id []byte) (*node.Node, error)
	Put(ctx context.Context, n *node.Node) error
}

// Enumerable is an optional capability a Store may implement to support
// rebuilding a Merkle DAG's root frontier after a process restart, since
// the frontier itself is never persisted (spec.md treats it as derived
// state). Store implementations backed by a full table scan (boltstore,
// sqlstore) implement it; memstore does too, for test convenience.
type Enumerable interface {
	// All returns every node currently in the store, in no particular
	// order. Callers needing a consistent order should sort by id.
	All() ([]*node.Node, error)
}

// SyncAdapter adapts a synchronous Store to the AsyncStore interface by
// ignoring ctx except for an up-front cancellation check, for callers that
// want to use the *Ctx DAG methods against an in-memory or otherwise
// non-blocking backend.
type SyncAdapter struct {
	Store Store
}

var _ AsyncStore = (*SyncAdapter)(nil)

func (a *SyncAdapter) Contains(ctx context.Context, id []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return a.Store.Contains(id)
}

func (a *SyncAdapter) Get(ctx context.Context, id []byte) (*node.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.Store.Get(id)
}

func (a *SyncAdapter) Put(ctx context.Context, n *node.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.Store.Put(n)
}
