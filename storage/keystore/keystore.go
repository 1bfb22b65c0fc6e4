// Package keystore provides the identity directories used by the three
// roles: the key server's table of long-term keys, and the stores in which
// daemons and clients keep their own long-term key and the session keys
// they negotiate.
//
// MemStore keeps everything in memory. KVStore persists the keys in a
// kv.DB, one entry per identity under the prefix "ns/key/".
package keystore

import (
	"sort"
	"sync"

	"github.com/SeppPenner/needham-schroeder/protocol"
)

// MemStore is an in-memory protocol.KeyStore.
type MemStore struct {
	mu   sync.RWMutex
	keys map[protocol.Identity]protocol.Key
}

var _ protocol.KeyStore = (*MemStore)(nil)

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{keys: make(map[protocol.Identity]protocol.Key)}
}

// GetKey returns the key stored for id, or protocol.ErrUnknownID.
func (s *MemStore) GetKey(id protocol.Identity) (protocol.Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.keys[id]
	if !ok {
		return protocol.Key{}, protocol.ErrUnknownID
	}
	return k, nil
}

// StoreKey sets the key for id, replacing any previous one.
func (s *MemStore) StoreKey(id protocol.Identity, k protocol.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[id] = k
	return nil
}

// Delete removes id. Deleting an absent identity is not an error.
func (s *MemStore) Delete(id protocol.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, id)
	return nil
}

// Identities returns the stored identities in lexicographic order.
func (s *MemStore) Identities() ([]protocol.Identity, error) {
	s.mu.RLock()
	ids := make([]protocol.Identity, 0, len(s.keys))
	for id := range s.keys {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids, nil
}
