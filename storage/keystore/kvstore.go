package keystore

import (
	"bytes"
	"fmt"

	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/SeppPenner/needham-schroeder/storage/kv"
)

var keyPrefix = []byte("ns/key/")

// KVStore is a protocol.KeyStore persisted in a kv.DB. Each identity is
// stored under keyPrefix followed by its 16 raw bytes.
type KVStore struct {
	db kv.DB
}

var _ protocol.KeyStore = (*KVStore)(nil)

// NewKVStore returns a KVStore backed by db. The caller keeps ownership
// of db and closes it.
func NewKVStore(db kv.DB) *KVStore {
	return &KVStore{db: db}
}

func dbKey(id protocol.Identity) []byte {
	k := make([]byte, 0, len(keyPrefix)+protocol.IdentitySize)
	k = append(k, keyPrefix...)
	return append(k, id[:]...)
}

// GetKey returns the key stored for id, or protocol.ErrUnknownID.
func (s *KVStore) GetKey(id protocol.Identity) (protocol.Key, error) {
	v, err := s.db.Get(dbKey(id))
	if err == s.db.ErrNotFound() {
		return protocol.Key{}, protocol.ErrUnknownID
	}
	if err != nil {
		return protocol.Key{}, fmt.Errorf("keystore: get %q: %w", id.String(), err)
	}
	if len(v) != protocol.KeySize {
		return protocol.Key{}, kv.ErrBadValueLength
	}
	return protocol.Key(v), nil
}

// StoreKey sets the key for id, replacing any previous one.
func (s *KVStore) StoreKey(id protocol.Identity, k protocol.Key) error {
	if err := s.db.Put(dbKey(id), k[:]); err != nil {
		return fmt.Errorf("keystore: put %q: %w", id.String(), err)
	}
	return nil
}

// StoreKeys sets all keys in keys in a single atomic write.
func (s *KVStore) StoreKeys(keys map[protocol.Identity]protocol.Key) error {
	b := s.db.NewBatch()
	for id, k := range keys {
		b.Put(dbKey(id), append([]byte(nil), k[:]...))
	}
	if err := s.db.Write(b); err != nil {
		return fmt.Errorf("keystore: batch put: %w", err)
	}
	return nil
}

// Delete removes id. Deleting an absent identity is not an error.
func (s *KVStore) Delete(id protocol.Identity) error {
	if err := s.db.Delete(dbKey(id)); err != nil && err != s.db.ErrNotFound() {
		return fmt.Errorf("keystore: delete %q: %w", id.String(), err)
	}
	return nil
}

// Identities returns the stored identities in the order of the underlying
// database, which for leveldb is lexicographic on the raw identity.
func (s *KVStore) Identities() ([]protocol.Identity, error) {
	iter := s.db.NewPrefixIterator(keyPrefix)
	defer iter.Release()

	var ids []protocol.Identity
	for ok := iter.First(); ok; ok = iter.Next() {
		raw := bytes.TrimPrefix(iter.Key(), keyPrefix)
		if len(raw) != protocol.IdentitySize {
			return nil, kv.ErrBadValueLength
		}
		ids = append(ids, protocol.Identity(raw))
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return ids, nil
}
