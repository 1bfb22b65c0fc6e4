package application

import (
	"github.com/SeppPenner/needham-schroeder/crypto"
	"github.com/SeppPenner/needham-schroeder/protocol"
	"github.com/SeppPenner/needham-schroeder/storage/keystore"
	"github.com/SeppPenner/needham-schroeder/storage/kv"
	"github.com/SeppPenner/needham-schroeder/storage/kv/leveldbkv"
	"github.com/SeppPenner/needham-schroeder/utils"
)

// A KeyStore is the key store of an executable, either in memory or
// backed by a leveldb database which Close releases.
type KeyStore struct {
	protocol.KeyStore
	db kv.DB
}

// OpenKeyStore opens the leveldb key store at path, resolved against the
// config file. An empty path gives an in-memory store.
func OpenKeyStore(path, file string) (*KeyStore, error) {
	if path == "" {
		return &KeyStore{KeyStore: keystore.NewMemStore()}, nil
	}
	db, err := leveldbkv.OpenDB(utils.ResolvePath(path, file))
	if err != nil {
		return nil, err
	}
	return &KeyStore{KeyStore: keystore.NewKVStore(db), db: db}, nil
}

// Close releases the database, if any.
func (ks *KeyStore) Close() error {
	if ks.db == nil {
		return nil
	}
	return ks.db.Close()
}

type loggedStore struct {
	protocol.KeyStore
	logger *Logger
}

// LogStoredKeys wraps store so that every stored key is logged with the
// identity it belongs to. Keys only appear as fingerprints.
func LogStoredKeys(store protocol.KeyStore, logger *Logger) protocol.KeyStore {
	return &loggedStore{KeyStore: store, logger: logger}
}

func (s *loggedStore) StoreKey(id protocol.Identity, k protocol.Key) error {
	if err := s.KeyStore.StoreKey(id, k); err != nil {
		s.logger.Error(err.Error(), "identity", id.String())
		return err
	}
	s.logger.Info("Stored session key",
		"identity", id.String(),
		"fingerprint", crypto.Fingerprint(k[:]))
	return nil
}
