// Package boltstore implements a store.Store backed by a single bbolt
// file, the Go analogue of the source project's rocksdb and leveldb
// adapters: one embedded engine, one bucket, node id as key.
package boltstore

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	bolt "go.etcd.io/bbolt"

	"github.com/merkleforge/merkledag/hash"
	"github.com/merkleforge/merkledag/node"
	"github.com/merkleforge/merkledag/store"
)

var bucketNodes = []byte("content_store")

// Store implements store.Store on top of a bbolt database file.
type Store struct {
	db    *bolt.DB
	lock  *flock.Flock
	codec *node.Codec
}

// Open opens (creating if necessary) a bbolt-backed store at path. An
// advisory file lock is taken alongside the database file so that only one
// OS process at a time treats itself as the writer, per the single-writer
// discipline the DAG layer assumes (spec §5): callers within this process
// still need their own exclusion around Merkle.AddNode.
func Open(path string, factory hash.Factory) (*Store, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, store.NewStoreFailure("acquiring boltstore lock", err)
	}
	if !locked {
		return nil, store.NewStoreFailure(fmt.Sprintf("boltstore %s already locked by another process", path), nil)
	}

	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		_ = lock.Unlock()
		return nil, store.NewStoreFailure("opening bolt database", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketNodes)
		return err
	})
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, store.NewStoreFailure("creating content_store bucket", err)
	}

	return &Store{db: db, lock: lock, codec: node.NewCodec(factory)}, nil
}

// Close releases the database file and the advisory lock.
func (s *Store) Close() error {
	dbErr := s.db.Close()
	lockErr := s.lock.Unlock()
	if dbErr != nil {
		return dbErr
	}
	return lockErr
}

// Contains implements store.Store.
func (s *Store) Contains(id []byte) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketNodes).Get(id) != nil
		return nil
	})
	if err != nil {
		return false, store.NewStoreFailure("boltstore contains", err)
	}
	return found, nil
}

// Get implements store.Store.
func (s *Store) Get(id []byte) (*node.Node, error) {
	var buf []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketNodes).Get(id)
		if v == nil {
			return nil
		}
		buf = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, store.NewStoreFailure("boltstore get", err)
	}
	if buf == nil {
		return nil, nil
	}
	n, err := s.codec.Decode(buf)
	if err != nil {
		return nil, store.NewStoreFailure(fmt.Sprintf("invalid serialization for %x", id), err)
	}
	return n, nil
}

// Put implements store.Store.
func (s *Store) Put(n *node.Node) error {
	buf, err := s.codec.Encode(n)
	if err != nil {
		return store.NewStoreFailure("boltstore encode", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).Put(n.ID(), buf)
	})
	if err != nil {
		return store.NewStoreFailure("boltstore put", err)
	}
	return nil
}

// Path returns the on-disk path the store reports itself to be backed by,
// mostly useful for the merkledagctl CLI's status output.
func (s *Store) Path() string {
	return filepath.Clean(s.db.Path())
}

// All implements store.Enumerable via a full bucket scan.
func (s *Store) All() ([]*node.Node, error) {
	var out []*node.Node
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).ForEach(func(_, v []byte) error {
			n, err := s.codec.Decode(v)
			if err != nil {
				return err
			}
			out = append(out, n)
			return nil
		})
	})
	if err != nil {
		return nil, store.NewStoreFailure("boltstore scan", err)
	}
	return out, nil
}
