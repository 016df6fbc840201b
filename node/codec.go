package node

import (
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/merkleforge/merkledag/hash"
)

// wireNode is the only shape that ever reaches disk or the wire: item bytes
// and the raw dependency ids. ID and ItemID are derived fields and must
// never be part of this struct — see Codec.Decode.
type wireNode struct {
	Item          []byte   `codec:"item"`
	DependencyIDs [][]byte `codec:"dependency_ids"`
}

// Codec serializes and deserializes Nodes as CBOR, persisting only the two
// constructor inputs. It is tied to a hash.Factory because Decode must
// re-run the identity rule rather than trust bytes read from storage: a
// tampered record whose inputs no longer hash to a claimed id is silently
// normalized to its true id.
type Codec struct {
	factory hash.Factory
	handle  *codec.CborHandle
}

// NewCodec builds a Codec that recomputes ids using factory on Decode.
func NewCodec(factory hash.Factory) *Codec {
	h := &codec.CborHandle{}
	return &Codec{factory: factory, handle: h}
}

// Encode writes only n.Item and n.DependencyIDs as CBOR. The derived
// ID/ItemID fields are never emitted.
func (c *Codec) Encode(n *Node) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, c.handle)
	w := wireNode{Item: n.item, DependencyIDs: n.dependencyIDs}
	if err := enc.Encode(w); err != nil {
		return nil, fmt.Errorf("node: encode: %w", err)
	}
	return buf, nil
}

// Decode reads item bytes and dependency ids from CBOR and reconstructs a
// Node by re-invoking the identity rule, so ID and ItemID are always a
// function of content, never of whatever bytes happened to be on disk.
func (c *Codec) Decode(buf []byte) (*Node, error) {
	var w wireNode
	dec := codec.NewDecoderBytes(buf, c.handle)
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("node: decode: %w", err)
	}
	rebuilt := New(Bytes(w.Item), w.DependencyIDs, c.factory)
	return newWithIDs(rebuilt.item, rebuilt.dependencyIDs, rebuilt.itemID, rebuilt.id), nil
}
