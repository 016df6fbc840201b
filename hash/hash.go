// Package hash defines the streaming digest contract that the Merkle DAG
// uses to compute node identity, plus a default implementation.
//
// A Writer is deliberately narrower than hash.Hash: it only needs to record
// bytes and report the current digest. That keeps the DAG package agnostic
// to which concrete algorithm backs it, the way the source project kept its
// DAG generic over a HashWriter trait.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Writer is a stateful, streaming digest. Record incorporates bytes into
// the running state; Digest reports the current value without consuming
// or resetting it — calling Digest twice in a row with no intervening
// Record returns the same bytes, and calling it again after more Record
// calls returns an updated value.
//
// A Writer freshly returned by its Factory must represent the empty-input
// digest.
type Writer interface {
	Record(b []byte)
	Digest() []byte
}

// Factory builds a fresh Writer in its empty-input state. dag.New takes a
// Factory rather than a bare Writer so that every add_node call gets an
// independent digest computation.
type Factory func() Writer

// XXHashWriter is the default Writer, backed by xxhash's 64-bit streaming
// hasher. It produces an 8-byte little-endian digest, which keeps ids
// cheap to compare and, per spec, trivially inspectable in tests.
type XXHashWriter struct {
	h *xxhash.Digest
}

var _ Writer = (*XXHashWriter)(nil)

// NewXXHashWriter returns a Writer in its empty-input state.
func NewXXHashWriter() Writer {
	return &XXHashWriter{h: xxhash.New()}
}

// Record incorporates b into the running digest. xxhash.Digest.Write never
// returns an error, so we don't propagate one.
func (w *XXHashWriter) Record(b []byte) {
	_, _ = w.h.Write(b)
}

// Digest returns the current 8-byte digest without resetting the writer.
func (w *XXHashWriter) Digest() []byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], w.h.Sum64())
	return out[:]
}
